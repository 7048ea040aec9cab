package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdwalton/gones6502/internal/bus"
	"github.com/bdwalton/gones6502/internal/cartridge"
	"github.com/bdwalton/gones6502/internal/cpu"
	"github.com/bdwalton/gones6502/internal/inesfile"
	"github.com/bdwalton/gones6502/internal/ppu"
)

func newNOPMachine(t *testing.T) *Machine {
	t.Helper()
	prg := make([]byte, 16*1024)
	for i := range prg {
		prg[i] = 0xEA // NOP
	}
	// reset vector (mirrored at the top of the 16K bank) points at 0x8000
	prg[len(prg)-4] = 0x00
	prg[len(prg)-3] = 0x80

	rom := &inesfile.ROM{MapperNum: 0, PRG: prg, CHR: make([]byte, 8*1024)}
	m, err := cartridge.New(rom)
	require.NoError(t, err)

	p := ppu.New(m)
	b := bus.New(m, p)
	c := cpu.New(b)

	return &Machine{CPU: c, Bus: b, PPU: p}
}

func TestRunFrameConsumesCyclesAndDoesNotError(t *testing.T) {
	m := newNOPMachine(t)
	fb := ppu.NewFrameBuffer()

	cycles, err := m.RunFrame(fb)
	require.NoError(t, err)
	assert.Greater(t, cycles, 0)
}

func TestRunFrameSetsAndClearsVblank(t *testing.T) {
	m := newNOPMachine(t)
	fb := ppu.NewFrameBuffer()

	_, err := m.RunFrame(fb)
	require.NoError(t, err)
	// AfterVblank runs at the end of RunFrame, so vblank should be clear
	// by the time control returns to the caller.
	status := m.PPU.ReadReg(ppu.RegSTATUS)
	assert.Zero(t, status&0x80)
}

func TestRunFrameChargesPreRenderPostRenderAndVblankScanlines(t *testing.T) {
	m := newNOPMachine(t)
	fb := ppu.NewFrameBuffer()

	cycles, err := m.RunFrame(fb)
	require.NoError(t, err)

	// 1 pre-render + 240 visible + 1 post-render scanline budgets of 113
	// cycles, plus one 20-scanline vblank budget. NOPs cost 2 cycles, so
	// each odd budget overshoots by 1, and the overshoot is absorbed
	// rather than carried into the next budget.
	roundUpEven := func(n int) int { return n + n%2 }
	want := (1+visibleScanlines+1)*roundUpEven(cpuCyclesPerScanline) +
		roundUpEven(vblankScanlines*cpuCyclesPerScanline)
	assert.Equal(t, want, cycles)
}
