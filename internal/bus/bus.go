// Package bus wires the CPU's 16-bit address space together: work
// RAM and its mirrors, the PPU register window, the APU/IO stub, the
// controller ports, and cartridge space. It implements cpu.Bus.
package bus

import (
	"github.com/bdwalton/gones6502/internal/cartridge"
	"github.com/bdwalton/gones6502/internal/controller"
	"github.com/bdwalton/gones6502/internal/ppu"
)

const (
	ramSize   = 2048
	ramMirror = 0x0800
	dmaCycles = 513
)

// Bus owns every device on the CPU's address bus and routes reads and
// writes to them. It satisfies cpu.Bus.
type Bus struct {
	ram  [ramSize]byte
	PPU  *ppu.PPU
	Mapper cartridge.Mapper

	Pad1, Pad2 controller.Controller

	pendingDMACycles int
}

// New wires a bus around an already-constructed mapper and PPU.
func New(m cartridge.Mapper, p *ppu.PPU) *Bus {
	return &Bus{Mapper: m, PPU: p}
}

// Read services a CPU read at addr.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr%ramMirror]
	case addr < 0x4000:
		reg := 0x2000 + (addr % 8)
		return b.PPU.ReadReg(reg)
	case addr == 0x4016:
		return b.Pad1.Read()
	case addr == 0x4017:
		return b.Pad2.Read()
	case addr < 0x4020:
		// APU and remaining IO registers are not modeled; reads
		// return open-bus zero.
		return 0
	default:
		return b.Mapper.CpuRead(addr)
	}
}

// ReadReadOnly matches Read for RAM and cartridge space but never
// mutates device state: the PPU, APU and IO register window
// (0x2000-0x401F) reads as 0, so no register side effect fires. The
// static analyzer uses this to walk code without disturbing machine
// state.
func (b *Bus) ReadReadOnly(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr%ramMirror]
	case addr < 0x4020:
		return 0
	default:
		return b.Mapper.CpuReadReadOnly(addr)
	}
}

// Write services a CPU write at addr.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr%ramMirror] = val
	case addr < 0x4000:
		reg := 0x2000 + (addr % 8)
		b.PPU.WriteReg(reg, val)
	case addr == 0x4014:
		b.oamDMA(val)
	case addr == 0x4016:
		b.Pad1.Write(val)
		b.Pad2.Write(val)
	case addr < 0x4020:
		// APU registers accepted and ignored.
	default:
		b.Mapper.CpuWrite(addr, val)
	}
}

// oamDMA copies page (val << 8) into OAM via the PPU's OAMDATA port,
// exactly as the real 0x4014 DMA does, and queues the CPU-stall cycle
// cost for the pipeline to account for.
func (b *Bus) oamDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteReg(ppu.RegOAMDATA, b.Read(base+uint16(i)))
	}
	b.pendingDMACycles += dmaCycles
}

// TakeDMACycles returns and clears the number of CPU cycles consumed
// by OAM DMA transfers since the last call, so the pipeline can fold
// them into its per-scanline CPU budget.
func (b *Bus) TakeDMACycles() int {
	n := b.pendingDMACycles
	b.pendingDMACycles = 0
	return n
}
