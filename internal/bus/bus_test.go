package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdwalton/gones6502/internal/cartridge"
	"github.com/bdwalton/gones6502/internal/controller"
	"github.com/bdwalton/gones6502/internal/inesfile"
	"github.com/bdwalton/gones6502/internal/ppu"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	rom := &inesfile.ROM{MapperNum: 0, PRG: make([]byte, 16*1024), CHR: make([]byte, 8*1024)}
	m, err := cartridge.New(rom)
	require.NoError(t, err)
	p := ppu.New(m)
	return New(m, p)
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0000, 0x42)
	assert.Equal(t, uint8(0x42), b.Read(0x0800))
	assert.Equal(t, uint8(0x42), b.Read(0x1800))
}

func TestPPURegisterMirroring(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x2000, 0x80) // CTRL via base address
	b.Write(0x2008, 0x00) // mirror of 0x2000, 8 bytes up
	assert.True(t, b.PPU.NMIEnabled() == false)
}

func TestControllerPortRouting(t *testing.T) {
	b := newTestBus(t)
	b.Pad1.SetButtons(controller.A)
	b.Write(0x4016, 1)
	assert.Equal(t, uint8(1), b.Read(0x4016))
}

func TestOAMDMAQueuesStallCycles(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0200, 0x11)
	b.Write(0x4014, 0x02) // DMA from page 0x02xx
	assert.Equal(t, dmaCycles, b.TakeDMACycles())
	assert.Equal(t, 0, b.TakeDMACycles())
}

func TestCartridgeSpaceRouting(t *testing.T) {
	b := newTestBus(t)
	assert.Equal(t, uint8(0), b.Read(0x8000))
	b.Write(0x6000, 0x99)
	assert.Equal(t, uint8(0x99), b.Read(0x6000))
}
