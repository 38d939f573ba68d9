package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"notegate/midi"
	"notegate/port"
	"notegate/protocol"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "detect":
		detectSerial()
	case "note":
		err = sendNote(os.Args[2:])
	case "gate":
		err = sendGate(os.Args[2:])
	case "generate":
		err = generate(os.Args[2:])
	case "poll":
		pollDevices()
	default:
		usage()
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Gate Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                          - List all MIDI ports")
	fmt.Println("  detect                        - Find a serial board")
	fmt.Println("  note <ch> <note> [target]     - Send a note frame")
	fmt.Println("  gate <ch> <ms> [target]       - Send a gate frame")
	fmt.Println("  generate <ch> [ms] [target]   - Random pentatonic notes every ms")
	fmt.Println("  poll                          - Poll for MIDI port changes")
	fmt.Println("")
	fmt.Println("target is a serial device path or midi:<port name>; default is the first serial board")
}

// sender writes frames to a board
type sender interface {
	SendFrame(frame []byte) error
	Close() error
}

type serialSender struct {
	s *port.Serial
}

func (ss serialSender) SendFrame(frame []byte) error {
	_, err := ss.s.Write(frame)
	return err
}

func (ss serialSender) Close() error {
	return ss.s.Close()
}

type midiSender struct {
	*midi.Output
}

func (midiSender) Close() error { return nil }

func openTarget(target string) (sender, error) {
	if name, ok := strings.CutPrefix(target, "midi:"); ok {
		outPort, err := midi.FindOut(name)
		if err != nil {
			return nil, err
		}
		out, err := midi.OpenOutput(outPort)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Using MIDI output: %s\n", out.ID())
		return midiSender{out}, nil
	}

	s, err := port.OpenSerial(target, port.DefaultBaud)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Using serial: %s\n", s.Name())
	// boards reset when the port opens
	time.Sleep(2 * time.Second)
	return serialSender{s}, nil
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func parseUint(s string, max int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > max {
		return 0, errors.Errorf("%q is not a number in 0-%d", s, max)
	}
	return v, nil
}

func sendNote(args []string) error {
	if len(args) < 2 {
		usage()
		return nil
	}
	ch, err := parseUint(args[0], 15)
	if err != nil {
		return err
	}
	note, err := parseUint(args[1], 127)
	if err != nil {
		return err
	}

	s, err := openTarget(argOr(args, 2, ""))
	if err != nil {
		return err
	}
	defer s.Close()

	frame := protocol.EncodeNote(uint8(ch), uint8(note))
	fmt.Printf("Sending: % X\n", frame)
	return s.SendFrame(frame)
}

func sendGate(args []string) error {
	if len(args) < 2 {
		usage()
		return nil
	}
	ch, err := parseUint(args[0], 15)
	if err != nil {
		return err
	}
	ms, err := parseUint(args[1], protocol.MaxGateLength)
	if err != nil {
		return err
	}

	s, err := openTarget(argOr(args, 2, ""))
	if err != nil {
		return err
	}
	defer s.Close()

	frame := protocol.EncodeGate(uint8(ch), uint16(ms))
	fmt.Printf("Sending: % X\n", frame)
	return s.SendFrame(frame)
}

// minor pentatonic over two octaves
var scale = []uint8{
	12, 15, 17, 19, 22,
	24, 27, 29, 31, 34,
}

// nextFrames picks a random scale note and a gate between interval/8 and interval/2
func nextFrames(r *rand.Rand, ch uint8, interval int) []byte {
	lo, hi := interval/8, interval/2
	gate := lo
	if hi > lo {
		gate += r.Intn(hi - lo)
	}
	note := scale[r.Intn(len(scale))]
	return append(protocol.EncodeNote(ch, note), protocol.EncodeGate(ch, uint16(gate))...)
}

func generate(args []string) error {
	if len(args) < 1 {
		usage()
		return nil
	}
	ch, err := parseUint(args[0], 15)
	if err != nil {
		return err
	}
	interval, err := parseUint(argOr(args, 1, "1000"), protocol.MaxGateLength)
	if err != nil {
		return err
	}
	if interval == 0 {
		return errors.New("interval must be above 0")
	}

	s, err := openTarget(argOr(args, 2, ""))
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println("Generating... Ctrl+C to exit.")
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		frames := nextFrames(r, uint8(ch), interval)
		// note and gate go as separate frames so MIDI targets get whole messages
		if err := s.SendFrame(frames[:2]); err != nil {
			return err
		}
		if err := s.SendFrame(frames[2:]); err != nil {
			return err
		}
		fmt.Printf("  % X\n", frames)
		time.Sleep(time.Duration(interval) * time.Millisecond)
	}
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, err := midi.Ports()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}

	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func detectSerial() {
	fmt.Println("Looking for a serial board...")
	if name := port.Find("/dev"); name != "" {
		fmt.Printf("Found: %s\n", name)
	} else {
		fmt.Println("No serial board found")
	}
}

func pollDevices() {
	fmt.Println("Polling for MIDI port changes every 2 seconds...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	last := ""
	for {
		ins, outs, err := midi.Ports()
		if err != nil {
			fmt.Printf("[%s] %v\n", time.Now().Format("15:04:05"), err)
			time.Sleep(2 * time.Second)
			continue
		}

		var names []string
		for _, p := range ins {
			names = append(names, "in:"+p.String())
		}
		for _, p := range outs {
			names = append(names, "out:"+p.String())
		}

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			for _, n := range names {
				fmt.Printf("  %s\n", n)
			}
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
