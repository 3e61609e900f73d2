package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/connglli/dxpk/dxpk"
)

func main() {
	fs := flag.NewFlagSet("dxpk-inspect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "dxpk-inspect — browse a .dxpk archive\n\nUsage:\n  dxpk-inspect <in.dxpk>\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	packer, err := dxpk.LoadFile(path)
	if err != nil {
		log.Fatalf("dxpk-inspect: load %s: %v", path, err)
	}
	dev, app, pool, seq, err := packer.Snapshot()
	if err != nil {
		log.Fatalf("dxpk-inspect: snapshot: %v", err)
	}

	m := New(path, dev, app, len(pool), seq.All())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("dxpk-inspect: %v", err)
	}
}
