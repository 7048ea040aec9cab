// Command monitor is a terminal step-debugger over the CPU core and
// the static analyzer: step one instruction at a time, inspect
// registers and memory, and run the JSR-enumeration analyzer against
// whatever is currently loaded.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bdwalton/gones6502/internal/bus"
	"github.com/bdwalton/gones6502/internal/cartridge"
	"github.com/bdwalton/gones6502/internal/cpu"
	"github.com/bdwalton/gones6502/internal/inesfile"
	"github.com/bdwalton/gones6502/internal/ppu"
)

var romFile = flag.String("nes_rom", "", "Path to NES ROM to load for inspection.")

func main() {
	flag.Parse()

	rom, err := inesfile.Load(*romFile)
	if err != nil {
		log.Fatalf("invalid ROM: %v", err)
	}

	mapper, err := cartridge.New(rom)
	if err != nil {
		log.Fatalf("couldn't construct mapper: %v", err)
	}

	p := ppu.New(mapper)
	b := bus.New(mapper, p)
	c := cpu.New(b)

	m := model{cpu: c, bus: b}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		log.Fatal(err)
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		fmt.Fprintln(os.Stderr, "stopped on error:", fm.err)
		os.Exit(1)
	}
}
