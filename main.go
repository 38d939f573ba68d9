package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"notegate/config"
	"notegate/debug"
	"notegate/driver"
	"notegate/hw"
	"notegate/midi"
	"notegate/port"
	"notegate/scheduler"
	"notegate/theme"
	"notegate/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (.json or .yaml); default ~/.config/notegate/config.json")
	debugLog := flag.Bool("debug", false, "write debug log")
	headless := flag.Bool("headless", false, "run without the terminal UI")
	writeDefault := flag.Bool("init", false, "write the default config and exit")
	flag.Parse()

	if *writeDefault {
		if err := initConfig(*configPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath, *debugLog, *headless); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func initConfig(path string) error {
	cfg := config.DefaultConfig()
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveFile(path)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func run(configPath string, debugLog, headless bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Debug || debugLog {
		if err := debug.Enable(cfg.DebugLog); err != nil {
			return errors.Wrap(err, "enable debug log")
		}
		defer debug.Disable()
	}

	var out *midi.Output
	if cfg.Output.Type == config.OutputMIDI {
		outPort, err := midi.FindOut(cfg.Output.Port)
		if err != nil {
			return err
		}
		if out, err = midi.OpenOutput(outPort); err != nil {
			return err
		}
	}

	clock := scheduler.SystemClock(time.Now())
	manager := scheduler.NewManager(buildChannels(cfg, out), cfg.NoteBytes(), clock)
	loop := driver.New(manager, clock, time.Duration(cfg.TickMillis)*time.Millisecond)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go loop.Run(ctx)

	var deviceMgr *midi.DeviceManager
	inputName := string(cfg.Input.Type)

	switch cfg.Input.Type {
	case config.InputSerial:
		s, err := port.OpenSerial(cfg.Input.Port, cfg.Input.Baud)
		if err != nil {
			return err
		}
		defer s.Close()
		inputName = s.Name()
		go func() {
			if err := s.Pump(ctx, loop.Input()); err != nil {
				debug.Log("serial", "%v", err)
			}
		}()

	case config.InputMIDI:
		deviceMgr = midi.NewDeviceManager(cfg.Input.Port, loop.Input())
		inputName = cfg.Input.Port
		go deviceMgr.Run(ctx)
	}

	debug.Log("main", "running: %d channels, input %s, output %s", len(cfg.Channels), inputName, cfg.Output.Type)

	if headless {
		fmt.Printf("notegate listening on %s (Ctrl+C to stop)\n", inputName)
		<-ctx.Done()
		return nil
	}

	th, err := loadTheme(cfg)
	if err != nil {
		return err
	}

	m := tui.NewModel(loop, manager, deviceMgr, cfg, th, inputName)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// buildChannels creates a route per configured channel. Without a MIDI
// output the routes are simulated.
func buildChannels(cfg *config.Config, out *midi.Output) []scheduler.Channel {
	channels := make([]scheduler.Channel, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		var route scheduler.Route
		if out != nil {
			route = scheduler.Route{
				PWM:  out.Duty(cfg.Output.MIDIChannel, ch.MIDICC),
				Gate: out.Gate(cfg.Output.MIDIChannel, ch.MIDIKey),
			}
		} else {
			route = scheduler.Route{Gate: hw.NewSimPin(ch.GatePin)}
			if ch.PWM != "" {
				route.PWM = hw.NewSimPWM(ch.PWM)
			}
		}
		channels = append(channels, scheduler.Channel{ID: ch.Channel, Route: route})
	}
	return channels
}

func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	if cfg.UI.Palette == "" {
		return theme.New(theme.Plasma()), nil
	}
	palette, err := theme.LoadGPL(cfg.UI.Palette)
	if err != nil {
		return nil, err
	}
	return theme.New(palette), nil
}
