package ppu

// RenderSprites draws the full sprite layer for the current frame into
// the installed sink, front and back priority slots separately. The
// pipeline calls this once per frame, before the visible scanline
// loop, since sprites are not re-evaluated scanline by scanline at
// this granularity.
func (p *PPU) RenderSprites() {
	if p.mask&maskShowSprites == 0 || p.currentSink == nil {
		return
	}
	out := p.currentSink

	tall := p.ctrl&ctrlSpriteSize != 0
	height := 8
	if tall {
		height = 16
	}

	for i := 0; i < OAMSize; i += 4 {
		y := int(p.oam[i]) + 1
		tile := p.oam[i+1]
		attr := p.oam[i+2]
		x := int(p.oam[i+3])

		if y >= Height {
			continue
		}

		palGroup := attr & 0x03
		front := attr&0x20 == 0
		flipH := attr&0x40 != 0
		flipV := attr&0x80 != 0

		for row := 0; row < height; row++ {
			py := y + row
			if py >= Height {
				continue
			}
			srcRow := row
			if flipV {
				srcRow = height - 1 - row
			}

			patternTable, patternTile := p.spritePatternAddr(tile, tall, srcRow)
			lo, hi := p.fetchPatternRow(patternTable, patternTile, srcRow%8)

			for col := 0; col < 8; col++ {
				px := x + col
				if px >= Width {
					continue
				}
				srcCol := col
				if flipH {
					srcCol = 7 - col
				}
				bit := uint(7 - srcCol)
				colorBits := ((lo>>bit)&1)<<0 | ((hi>>bit)&1)<<1
				if colorBits == 0 {
					continue
				}
				idx := p.readVRAM(0x3F10 + uint16(palGroup)*4 + uint16(colorBits))
				if front {
					out.SetSpriteFront(px, py, idx&0x3F)
				} else {
					out.SetSpriteBack(px, py, idx&0x3F)
				}
			}
		}
	}
}

// spritePatternAddr resolves which pattern table and tile index to
// fetch for a sprite row, handling the 8x16 mode's tile-number/bank
// encoding (bit 0 of the tile index selects the pattern table, and the
// sprite covers tile N and tile N+1 stacked).
func (p *PPU) spritePatternAddr(tile uint8, tall bool, row int) (table uint16, resolvedTile uint8) {
	if !tall {
		table = 0
		if p.ctrl&ctrlSpritePattern != 0 {
			table = 0x1000
		}
		return table, tile
	}

	table = uint16(tile&0x01) * 0x1000
	base := tile &^ 0x01
	if row >= 8 {
		base++
	}
	return table, base
}

func (p *PPU) fetchPatternRow(table uint16, tile uint8, row int) (lo, hi uint8) {
	addr := table + uint16(tile)*16 + uint16(row)
	lo = p.mapper.PpuRead(addr)
	hi = p.mapper.PpuRead(addr + 8)
	return lo, hi
}

// RenderBackgroundScanline draws one visible scanline of the
// background layer into the installed sink, using the virtual 512x480 four-nametable
// coordinate space addressed by CTRL's base-nametable bits and the
// current scroll position. It reports a Sprite0Hit if sprite 0's
// opaque pixel coincides with an opaque background pixel anywhere on
// this scanline, per the capture taken by CaptureSprite0.
func (p *PPU) RenderBackgroundScanline(scanline int) *Sprite0Hit {
	universal := p.readVRAM(0x3F00) & 0x3F

	var hit *Sprite0Hit

	for x := 0; x < Width; x++ {
		vx := x + p.ScrollX()
		vy := scanline + p.ScrollY()

		colWrap := (vx / Width) & 1
		rowWrap := (vy / Height) & 1
		quadrant := (p.baseNametable() ^ (colWrap | (rowWrap << 1))) & 0x3

		tx := (vx % Width) / 8
		ty := (vy % Height) / 8
		fineX := vx % 8
		fineY := vy % 8

		ntBase := uint16(quadrant) * 0x400
		tileAddr := ntBase + uint16(ty)*32 + uint16(tx)
		tileIdx := p.readVRAM(0x2000 + tileAddr)

		attrAddr := ntBase + 0x3C0 + uint16(ty/4)*8 + uint16(tx/4)
		attrByte := p.readVRAM(0x2000 + attrAddr)
		shift := uint((ty%4)/2*4 + (tx%4)/2*2)
		palGroup := (attrByte >> shift) & 0x03

		patternTable := uint16(0)
		if p.ctrl&ctrlBGPattern != 0 {
			patternTable = 0x1000
		}
		lo, hi := p.fetchPatternRow(patternTable, tileIdx, fineY)
		bit := uint(7 - fineX)
		colorBits := ((lo>>bit)&1)<<0 | ((hi>>bit)&1)<<1

		bgOpaque := colorBits != 0
		if p.mask&maskShowBackground == 0 {
			bgOpaque = false
		}

		if p.currentSink != nil {
			if bgOpaque {
				idx := p.readVRAM(0x3F00 + uint16(palGroup)*4 + uint16(colorBits))
				p.currentSink.SetBackground(x, scanline, idx&0x3F)
			} else {
				p.currentSink.SetUniversalBackground(x, scanline, universal)
			}
		}

		if hit == nil && bgOpaque && p.spriteZeroOpaquePixel(scanline, x) {
			hit = &Sprite0Hit{Scanline: scanline, X: x}
		}
	}

	return hit
}

// SetSink installs the sink the scanline loop writes into. The
// pipeline sets it once at the start of a frame.
func (p *PPU) SetSink(s Sink) {
	p.currentSink = s
}

// spriteZeroOpaquePixel reports whether the captured sprite 0 covers
// (x, scanline) with a non-transparent pixel, accounting for the
// stored Y-1 convention, H/V flip, and 8x8-only patterns (sprite 0
// hit detection is not extended to 8x16 mode).
func (p *PPU) spriteZeroOpaquePixel(scanline, x int) bool {
	if !p.sprite0.valid || p.mask&maskShowSprites == 0 {
		return false
	}

	top := int(p.sprite0.y) + 1
	row := scanline - top
	if row < 0 || row >= 8 {
		return false
	}

	left := int(p.sprite0.x)
	col := x - left
	if col < 0 || col >= 8 {
		return false
	}

	flipH := p.sprite0.attr&0x40 != 0
	flipV := p.sprite0.attr&0x80 != 0

	srcRow := row
	if flipV {
		srcRow = 7 - row
	}
	srcCol := col
	if flipH {
		srcCol = 7 - col
	}

	table := uint16(0)
	if p.ctrl&ctrlSpritePattern != 0 {
		table = 0x1000
	}
	lo, hi := p.fetchPatternRow(table, p.sprite0.tile, srcRow)
	bit := uint(7 - srcCol)
	colorBits := ((lo>>bit)&1)<<0 | ((hi>>bit)&1)<<1
	return colorBits != 0
}
