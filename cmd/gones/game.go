package main

import (
	"github.com/bdwalton/gones6502/internal/pipeline"
	"github.com/bdwalton/gones6502/internal/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

// keys maps controller bit position to the ebiten key polled for it;
// order matches the bit layout in internal/controller.
var keys = []ebiten.Key{
	ebiten.KeyA,     // A
	ebiten.KeyS,     // B
	ebiten.KeySpace, // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
}

// game adapts a pipeline.Machine to the ebiten.Game interface: key
// polling happens in Update, one frame of emulation happens in Draw,
// since ebiten drives both at the same 60Hz cadence and the core has
// no internal clock of its own.
type game struct {
	machine *pipeline.Machine
	fb      *ppu.FrameBuffer
	img     *ebiten.Image
}

func newGame(m *pipeline.Machine) *game {
	return &game{
		machine: m,
		fb:      ppu.NewFrameBuffer(),
		img:     ebiten.NewImage(ppu.Width, ppu.Height),
	}
}

func (g *game) pollButtons() uint8 {
	var mask uint8
	for i, k := range keys {
		if ebiten.IsKeyPressed(k) {
			mask |= 1 << i
		}
	}
	return mask
}

func (g *game) Update() error {
	mask := g.pollButtons()
	g.machine.Bus.Pad1.SetButtons(mask)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.fb.Reset()
	if _, err := g.machine.RunFrame(g.fb); err != nil {
		return
	}

	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			g.img.Set(x, y, nesPalette[g.fb.At(x, y)&0x3F])
		}
	}
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.Width, ppu.Height
}
