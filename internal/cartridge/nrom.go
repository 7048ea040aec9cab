package cartridge

import (
	"log"

	"github.com/bdwalton/gones6502/internal/inesfile"
)

const (
	prgRamSize = 8 * 1024
	chrRamSize = 8 * 1024
)

// nrom implements mapper 0: static PRG/CHR banks, fixed mirroring, no
// bank switching. 16 KiB PRG images are mirrored into both halves of
// 0x8000-0xFFFF; CHR may be RAM if the cartridge carries none.
type nrom struct {
	prg       []byte
	chr       []byte
	chrIsRAM  bool
	prgRAM    [prgRamSize]byte
	mirroring uint8
}

func newNROM(rom *inesfile.ROM) (*nrom, error) {
	if len(rom.PRG) != 16*1024 && len(rom.PRG) != 32*1024 {
		return nil, ErrUnexpectedPrgRomSize
	}

	n := &nrom{prg: rom.PRG}
	switch rom.Mirroring {
	case inesfile.MirrorVertical:
		n.mirroring = MirrorVertical
	default:
		n.mirroring = MirrorHorizontal
	}

	if len(rom.CHR) == 0 {
		n.chr = make([]byte, chrRamSize)
		n.chrIsRAM = true
	} else {
		if len(rom.CHR) != 8*1024 {
			return nil, ErrUnexpectedChrRomSize
		}
		n.chr = rom.CHR
	}

	return n, nil
}

func (n *nrom) prgOffset(addr uint16) int {
	off := int(addr - 0x8000)
	if len(n.prg) == 16*1024 {
		off %= 16 * 1024
	}
	return off
}

func (n *nrom) CpuRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return n.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		return n.prg[n.prgOffset(addr)]
	default:
		return 0
	}
}

func (n *nrom) CpuReadReadOnly(addr uint16) uint8 {
	return n.CpuRead(addr)
}

func (n *nrom) CpuWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		n.prgRAM[addr-0x6000] = val
	case addr >= 0x8000:
		log.Printf("cartridge: ignored write 0x%02x to NROM PRG ROM at 0x%04x", val, addr)
	}
}

func (n *nrom) PpuRead(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return n.chr[addr]
	default:
		return 0
	}
}

func (n *nrom) PpuWrite(addr uint16, val uint8) {
	if addr < 0x2000 && n.chrIsRAM {
		n.chr[addr] = val
		return
	}
	if addr < 0x2000 {
		log.Printf("cartridge: ignored write 0x%02x to NROM CHR ROM at 0x%04x", val, addr)
	}
}

func (n *nrom) Mirroring() uint8 { return n.mirroring }

func (n *nrom) PersistentState() []byte {
	out := make([]byte, prgRamSize)
	copy(out, n.prgRAM[:])
	return out
}

func (n *nrom) LoadPersistentState(data []byte) error {
	if len(data) != prgRamSize {
		return ErrInvalidPersistentState
	}
	copy(n.prgRAM[:], data)
	return nil
}
