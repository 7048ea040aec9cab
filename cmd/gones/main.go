package main

import (
	"flag"
	"log"

	"github.com/bdwalton/gones6502/internal/bus"
	"github.com/bdwalton/gones6502/internal/cartridge"
	"github.com/bdwalton/gones6502/internal/cpu"
	"github.com/bdwalton/gones6502/internal/inesfile"
	"github.com/bdwalton/gones6502/internal/pipeline"
	"github.com/bdwalton/gones6502/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

var romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")

func main() {
	flag.Parse()

	rom, err := inesfile.Load(*romFile)
	if err != nil {
		log.Fatalf("invalid ROM: %v", err)
	}

	m, err := cartridge.New(rom)
	if err != nil {
		log.Fatalf("couldn't construct mapper: %v", err)
	}

	p := ppu.New(m)
	b := bus.New(m, p)
	c := cpu.New(b)

	machine := &pipeline.Machine{CPU: c, Bus: b, PPU: p}

	ebiten.SetWindowSize(ppu.Width*2, ppu.Height*2)
	ebiten.SetWindowTitle("gones")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(newGame(machine)); err != nil {
		log.Fatal(err)
	}
}
