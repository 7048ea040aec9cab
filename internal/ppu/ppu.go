// Package ppu implements the NES picture-processing unit at scanline
// granularity: registers, VRAM/OAM state, background and sprite
// rasterization, and sprite-0 hit detection. A pixel-accurate PPU is
// explicitly out of scope (spec Non-goals); scanline granularity with
// correct sprite-0 hit is the target.
package ppu

import "github.com/bdwalton/gones6502/internal/cartridge"

const (
	VRAMSize    = 2048
	OAMSize     = 256
	PaletteSize = 32

	Width  = 256
	Height = 240
)

// CPU-visible register addresses (0x2000-0x2007; the bus folds the
// mirrors of this window onto them).
const (
	RegCTRL   = 0x2000
	RegMASK   = 0x2001
	RegSTATUS = 0x2002
	RegOAMADDR = 0x2003
	RegOAMDATA = 0x2004
	RegSCROLL = 0x2005
	RegADDR   = 0x2006
	RegDATA   = 0x2007
)

// CTRL bit flags.
const (
	ctrlNametableMask  = 0x03
	ctrlVRAMIncrement  = 1 << 2
	ctrlSpritePattern  = 1 << 3
	ctrlBGPattern      = 1 << 4
	ctrlSpriteSize     = 1 << 5
	ctrlNMIEnable      = 1 << 7
)

// MASK bit flags.
const (
	maskShowBackground = 1 << 3
	maskShowSprites    = 1 << 4
)

// STATUS bit flags.
const (
	statusSpriteOverflow = 1 << 5
	statusSprite0Hit      = 1 << 6
	statusVBlank          = 1 << 7
)

// Sprite0Hit is returned by RenderBackgroundScanline when an opaque
// sprite-0 pixel coincides with an opaque background pixel on that
// scanline.
type Sprite0Hit struct {
	Scanline int
	X        int
}

type sprite0Data struct {
	y, tile, attr, x uint8
	valid            bool
}

// PPU is the full NES PPU: registers, VRAM (nametables + palette),
// OAM, and the scanline rasterizer.
type PPU struct {
	mapper cartridge.Mapper

	ctrl, mask, status uint8
	oamAddr            uint8

	v, t   uint16 // current/temp VRAM address (loopy registers); 15 bits used
	x      uint8  // fine X scroll, 3 bits
	wLatch bool   // first/second write toggle

	readBuffer uint8

	nametable [VRAMSize]byte
	palette   [PaletteSize]byte
	oam       [OAMSize]byte

	sprite0 sprite0Data

	currentSink Sink
}

// New returns a PPU wired to m for CHR and nametable-mirroring access.
func New(m cartridge.Mapper) *PPU {
	return &PPU{mapper: m}
}

// NMIEnabled reports whether CTRL's vblank-NMI-enable bit is set.
func (p *PPU) NMIEnabled() bool {
	return p.ctrl&ctrlNMIEnable != 0
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBackground|maskShowSprites) != 0
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&ctrlVRAMIncrement != 0 {
		return 32
	}
	return 1
}

// BeforeVblank sets the vblank status flag; called by the pipeline
// after the post-render scanline, at the start of the vblank window.
func (p *PPU) BeforeVblank() {
	p.status |= statusVBlank
}

// SetSprite0Hit sets the sprite-0-hit status flag. The pipeline calls
// this when RenderBackgroundScanline reports a hit.
func (p *PPU) SetSprite0Hit() {
	p.status |= statusSprite0Hit
}

// AfterVblank clears the vblank and sprite-0-hit flags, called by the
// pipeline once the vblank CPU budget has run.
func (p *PPU) AfterVblank() {
	p.status &^= statusVBlank | statusSprite0Hit
}

// CaptureSprite0 snapshots OAM[0:4] for use across the background
// scanline loop's hit detection. The pipeline calls this once per
// frame, before the visible scanlines, per spec.md §4.7.
func (p *PPU) CaptureSprite0() {
	p.sprite0 = sprite0Data{
		y:     p.oam[0],
		tile:  p.oam[1],
		attr:  p.oam[2],
		x:     p.oam[3],
		valid: true,
	}
}

// ScrollX/ScrollY expose the current scroll position (coarse + fine),
// for debug sinks that want to record per-scanline scroll per
// spec.md §4.7 step 4.
func (p *PPU) ScrollX() int {
	coarse := int(p.t & 0x1F)
	return coarse*8 + int(p.x)
}

func (p *PPU) ScrollY() int {
	coarse := int((p.t >> 5) & 0x1F)
	fine := int((p.t >> 12) & 0x07)
	return coarse*8 + fine
}

func (p *PPU) baseNametable() int {
	return int(p.ctrl & ctrlNametableMask)
}

// mirrorOffset maps a 12-bit virtual nametable offset (within
// 0x000-0xFFF, i.e. relative to 0x2000 and folded into the first 4
// KiB mirror) to an 11-bit physical offset into the 2 KiB nametable
// RAM, per the cartridge's mirroring mode.
func mirrorOffset(mode uint8, virtualOffset uint16) uint16 {
	quadrant := virtualOffset / 0x400
	within := virtualOffset % 0x400

	var physical uint16
	switch mode {
	case cartridge.MirrorHorizontal:
		// top two regions (0,1) together, bottom two (2,3) together
		if quadrant < 2 {
			physical = 0
		} else {
			physical = 1
		}
	case cartridge.MirrorVertical:
		// left column (0,2) together, right column (1,3) together
		if quadrant == 0 || quadrant == 2 {
			physical = 0
		} else {
			physical = 1
		}
	case cartridge.MirrorSingleUpper:
		physical = 1
	default: // MirrorSingleLower
		physical = 0
	}
	return physical*0x400 + within
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.mapper.PpuRead(addr)
	case addr < 0x3F00:
		virt := (addr - 0x2000) % 0x1000
		return p.nametable[mirrorOffset(p.mapper.Mirroring(), virt)]
	default:
		return p.palette[paletteIndex(addr)]
	}
}

func (p *PPU) writeVRAM(addr uint16, val uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.mapper.PpuWrite(addr, val)
	case addr < 0x3F00:
		virt := (addr - 0x2000) % 0x1000
		p.nametable[mirrorOffset(p.mapper.Mirroring(), virt)] = val
	default:
		p.palette[paletteIndex(addr)] = val
	}
}

// paletteIndex folds the 32-byte palette RAM's documented mirrors:
// the backdrop-color slots at 0x10/0x14/0x18/0x1C alias 0x00/0x04/0x08/0x0C.
func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10
	}
	return idx
}
