// Command dxpkctl records UI interaction traces into DXPK archives and
// replays them back against a device, grounded on cmd/sql-tapd's
// flag-set-with-Usage shape.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/connglli/dxpk/device"
	"github.com/connglli/dxpk/dxpk"
	"github.com/connglli/dxpk/replay"
	"github.com/connglli/dxpk/trace"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "record":
		err = runRecord(os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `dxpkctl — record and replay DXPK UI interaction traces

Usage:
  dxpkctl record -device-file=<path> <trace-file|-> <out.dxpk>
  dxpkctl replay -driver=px|pt|wdg|res -driver-file=<path> <in.dxpk>
`)
}

// runRecord drives trace.Parser over a log-tail stand-in (a file, or "-"
// for stdin) into a dxpk.Packer, flushing to out.dxpk either at EOF or on
// SIGINT (§5 cancellation: interrupt flushes in-progress state and exits 0).
func runRecord(args []string) error {
	fs := flag.NewFlagSet("dxpkctl record", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dxpkctl record -device-file=<path> <trace-file|-> <out.dxpk>\n")
		fs.PrintDefaults()
	}
	deviceFile := fs.String("device-file", "", "JSON file describing the recording device (required)")
	_ = fs.Parse(args)

	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(1)
	}
	if *deviceFile == "" {
		fs.Usage()
		os.Exit(1)
	}
	traceFile := fs.Arg(0)
	outFile := fs.Arg(1)

	df, err := os.Open(*deviceFile)
	if err != nil {
		return fmt.Errorf("dxpkctl: open device-file: %w", err)
	}
	defer df.Close()
	fix, err := loadFixture(df)
	if err != nil {
		return err
	}
	recorded := fix.Device.toInfo()

	var in io.ReadCloser
	if traceFile == "-" {
		in = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(traceFile)
		if err != nil {
			return fmt.Errorf("dxpkctl: open trace file: %w", err)
		}
		in = f
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	packer := dxpk.NewPacker(recorded)
	parser := trace.NewParser(recorded, packer, packer.NewView)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 1<<20)
		for sc.Scan() {
			lines <- sc.Text()
		}
		scanErr <- sc.Err()
	}()

	interrupted := false
readLoop:
	for {
		select {
		case <-ctx.Done():
			interrupted = true
			log.Printf("dxpkctl: record: interrupted, flushing %d event(s) to %s", packer.Len(), outFile)
			break readLoop
		case line, ok := <-lines:
			if !ok {
				break readLoop
			}
			if err := parser.Feed(line); err != nil {
				return fmt.Errorf("dxpkctl: record: %w", err)
			}
		}
	}

	if !interrupted {
		if err := <-scanErr; err != nil {
			return fmt.Errorf("dxpkctl: record: reading trace: %w", err)
		}
	}

	if err := packer.DumpFile(outFile); err != nil {
		return fmt.Errorf("dxpkctl: record: flush: %w", err)
	}
	log.Printf("dxpkctl: record: wrote %d event(s), %d pooled view(s) to %s",
		packer.Len(), packer.PoolSize(), outFile)
	return nil
}

// runReplay loads in.dxpk and drives replay.Scheduler against a
// fixture-backed fake device using the selected strategy.
func runReplay(args []string) error {
	fs := flag.NewFlagSet("dxpkctl replay", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dxpkctl replay -driver=px|pt|wdg|res -driver-file=<path> <in.dxpk>\n")
		fs.PrintDefaults()
	}
	driver := fs.String("driver", "px", "replay strategy: px, pt, wdg, or res")
	driverFile := fs.String("driver-file", "", "JSON fixture describing the replay device and canned responses (required)")
	k := fs.Int("k", 3, "res: lookahead window")
	timeSensitive := fs.Bool("time-sensitive", true, "sleep between events at the recorded pace")
	_ = fs.Parse(args)

	if fs.NArg() != 1 || *driverFile == "" {
		fs.Usage()
		os.Exit(1)
	}
	archivePath := fs.Arg(0)

	packer, err := dxpk.LoadFile(archivePath)
	if err != nil {
		return fmt.Errorf("dxpkctl: replay: load %s: %w", archivePath, err)
	}
	seq, err := packer.Sequence()
	if err != nil {
		return fmt.Errorf("dxpkctl: replay: unpack sequence: %w", err)
	}
	recorded := packer.Device()

	df, err := os.Open(*driverFile)
	if err != nil {
		return fmt.Errorf("dxpkctl: replay: open driver-file: %w", err)
	}
	defer df.Close()
	fix, err := loadFixture(df)
	if err != nil {
		return err
	}
	replayDev := fix.Device.toInfo()
	in := newFixtureInput(fix)

	strategy, err := buildStrategy(*driver, in, recorded, replayDev, *k)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := replay.NewScheduler()
	sched.TimeSensitive = *timeSensitive

	log.Printf("dxpkctl: replay: %d event(s) via %s against %s", seq.Len(), strategy.Name(), *driverFile)
	if err := sched.Run(ctx, seq, strategy); err != nil {
		return fmt.Errorf("dxpkctl: replay: %w", err)
	}
	log.Printf("dxpkctl: replay: done (%d tap(s), %d swipe(s), %d key(s))",
		len(in.taps), len(in.swipes), len(in.keys))
	return nil
}

func buildStrategy(name string, in device.Input, recorded, replayDev device.Info, k int) (replay.Strategy, error) {
	switch name {
	case "px":
		return replay.NewPx(in, recorded, replayDev), nil
	case "pt":
		return replay.NewPt(in, recorded, replayDev), nil
	case "wdg":
		return replay.NewWdg(in, replayDev), nil
	case "res":
		return replay.NewRes(in, replayDev, k), nil
	}
	return nil, fmt.Errorf("dxpkctl: replay: unknown driver %q (want px, pt, wdg, or res)", name)
}
