package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bdwalton/gones6502/internal/cartridge"
)

type stubMapper struct {
	chr       [0x2000]byte
	mirroring uint8
}

func (m *stubMapper) CpuRead(addr uint16) uint8         { return 0 }
func (m *stubMapper) CpuReadReadOnly(addr uint16) uint8 { return 0 }
func (m *stubMapper) CpuWrite(addr uint16, val uint8)   {}
func (m *stubMapper) PpuRead(addr uint16) uint8         { return m.chr[addr] }
func (m *stubMapper) PpuWrite(addr uint16, val uint8)   { m.chr[addr] = val }
func (m *stubMapper) Mirroring() uint8                  { return m.mirroring }
func (m *stubMapper) PersistentState() []byte           { return nil }
func (m *stubMapper) LoadPersistentState([]byte) error  { return nil }

var _ cartridge.Mapper = (*stubMapper)(nil)

func TestMirrorOffsetHorizontal(t *testing.T) {
	assert.Equal(t, uint16(0x000), mirrorOffset(cartridge.MirrorHorizontal, 0x000))
	assert.Equal(t, uint16(0x000), mirrorOffset(cartridge.MirrorHorizontal, 0x400))
	assert.Equal(t, uint16(0x400), mirrorOffset(cartridge.MirrorHorizontal, 0x800))
	assert.Equal(t, uint16(0x400), mirrorOffset(cartridge.MirrorHorizontal, 0xC00))
}

func TestMirrorOffsetVertical(t *testing.T) {
	assert.Equal(t, uint16(0x000), mirrorOffset(cartridge.MirrorVertical, 0x000))
	assert.Equal(t, uint16(0x400), mirrorOffset(cartridge.MirrorVertical, 0x400))
	assert.Equal(t, uint16(0x000), mirrorOffset(cartridge.MirrorVertical, 0x800))
	assert.Equal(t, uint16(0x400), mirrorOffset(cartridge.MirrorVertical, 0xC00))
}

func TestPaletteIndexBackdropMirror(t *testing.T) {
	assert.Equal(t, uint16(0x00), paletteIndex(0x3F10))
	assert.Equal(t, uint16(0x04), paletteIndex(0x3F14))
	assert.Equal(t, uint16(0x01), paletteIndex(0x3F01))
}

func TestWriteReadCTRLAndSTATUS(t *testing.T) {
	m := &stubMapper{}
	p := New(m)

	p.WriteReg(RegCTRL, 0x80)
	assert.True(t, p.NMIEnabled())

	p.status |= statusVBlank
	got := p.ReadReg(RegSTATUS)
	assert.NotZero(t, got&statusVBlank)
	assert.Zero(t, p.status&statusVBlank) // read clears vblank
}

func TestScrollRegisterTwoWriteLatch(t *testing.T) {
	m := &stubMapper{}
	p := New(m)

	p.WriteReg(RegSCROLL, 0x10) // X
	p.WriteReg(RegSCROLL, 0x20) // Y
	assert.False(t, p.wLatch)
}

func TestOAMDATAAutoIncrementsAddr(t *testing.T) {
	m := &stubMapper{}
	p := New(m)

	p.WriteReg(RegOAMADDR, 0x05)
	p.WriteReg(RegOAMDATA, 0x99)
	assert.Equal(t, uint8(0x06), p.oamAddr)
	assert.Equal(t, uint8(0x99), p.oam[5])
}

func TestFrameBufferDepthOrdering(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetUniversalBackground(0, 0, 1)
	fb.SetSpriteBack(0, 0, 2)
	fb.SetBackground(0, 0, 3)
	fb.SetSpriteFront(0, 0, 4)
	assert.Equal(t, uint8(4), fb.At(0, 0))

	fb.Reset()
	fb.SetSpriteFront(1, 1, 9)
	fb.SetUniversalBackground(1, 1, 1) // lower depth, must not overwrite
	assert.Equal(t, uint8(9), fb.At(1, 1))
}
