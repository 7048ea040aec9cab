// Package pipeline drives the scanline-interleaved cooperation
// between CPU and PPU: one frame is 262 scanlines, each scanline
// advances the CPU by a fixed cycle budget before the PPU rasterizes
// it, with sprite-0 hit mid-frame re-budgeting and NMI injection at
// vblank, per spec.md §4.7.
package pipeline

import (
	"github.com/bdwalton/gones6502/internal/bus"
	"github.com/bdwalton/gones6502/internal/cpu"
	"github.com/bdwalton/gones6502/internal/ppu"
)

const (
	scanlinesPerFrame    = 262
	visibleScanlines     = 240
	cpuCyclesPerScanline = 113 // ~341 PPU dots / 3
)

// Runner is the minimal CPU-driving surface the pipeline needs,
// allowing a substitute driver (e.g. a single-step debugger) to stand
// in for *cpu.CPU.
type Runner interface {
	RunForCycles(b cpu.Bus, budget int) (int, error)
	TriggerNMI(b cpu.Bus)
}

// Machine bundles the wired CPU, PPU and Bus that make up one NES
// instance, as constructed by the caller (cmd/gones or tests).
type Machine struct {
	CPU  Runner
	Bus  *bus.Bus
	PPU  *ppu.PPU
}

// vblankScanlines is the canonical NTSC vblank window: 262 total
// scanlines minus 240 visible, one pre-render and one post-render.
const vblankScanlines = scanlinesPerFrame - visibleScanlines - 2

// RunFrame advances the machine by exactly one frame (262 scanlines),
// rendering into sink, and returns the actual CPU cycles consumed.
func (m *Machine) RunFrame(sink ppu.Sink) (int, error) {
	m.PPU.SetSink(sink)
	totalCycles := 0

	// pre-render scanline: CPU runs before sprite rendering starts.
	n, err := m.runCPU(cpuCyclesPerScanline)
	totalCycles += n
	if err != nil {
		return totalCycles, err
	}

	m.PPU.RenderSprites()
	m.PPU.CaptureSprite0()

	for scanline := 0; scanline < visibleScanlines; scanline++ {
		n, err := m.runCPU(cpuCyclesPerScanline)
		totalCycles += n
		if err != nil {
			return totalCycles, err
		}

		if hit := m.PPU.RenderBackgroundScanline(scanline); hit != nil {
			m.PPU.SetSprite0Hit()

			// Games expect the CPU to have advanced past the hit
			// before the next mid-frame status poll: charge it the
			// remaining pixels on this scanline, converted from PPU
			// dots to CPU cycles (1 CPU cycle == 3 PPU dots).
			remaining := ppu.Width - hit.X
			n, err := m.runCPU(remaining / 3)
			totalCycles += n
			if err != nil {
				return totalCycles, err
			}
		}
	}

	// post-render scanline: PPU idle, CPU keeps running
	n, err = m.runCPU(cpuCyclesPerScanline)
	totalCycles += n
	if err != nil {
		return totalCycles, err
	}

	m.PPU.BeforeVblank()
	if m.PPU.NMIEnabled() {
		m.CPU.TriggerNMI(m.Bus)
	}

	n, err = m.runCPU(vblankScanlines * cpuCyclesPerScanline)
	totalCycles += n
	if err != nil {
		return totalCycles, err
	}

	m.PPU.AfterVblank()

	return totalCycles, nil
}

// runCPU folds any OAM-DMA stall cycles accumulated by the bus into
// the requested budget before handing it to the CPU runner.
func (m *Machine) runCPU(budget int) (int, error) {
	budget += m.Bus.TakeDMACycles()
	return m.CPU.RunForCycles(m.Bus, budget)
}
