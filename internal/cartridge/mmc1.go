package cartridge

import (
	"log"

	"github.com/bdwalton/gones6502/internal/inesfile"
)

const (
	mmc1PrgBankSize = 16 * 1024
	mmc1ChrBankSize = 4 * 1024
)

// mmc1 implements mapper 1: a serial 5-bit shift register programs
// four internal registers (control, chr0, chr1, prg) that select
// mirroring, PRG/CHR bank mode, and the current bank indices.
type mmc1 struct {
	prg        []byte
	chr        []byte
	chrIsRAM   bool
	prgRAM     [8 * 1024]byte
	hasBattery bool

	shift      uint8
	shiftCount uint8

	control uint8 // 5 bits: mirroring(0-1), PRG mode(2-3), CHR mode(4)
	chr0    uint8
	chr1    uint8
	prgReg  uint8
}

func newMMC1(rom *inesfile.ROM) (*mmc1, error) {
	if len(rom.PRG) == 0 || len(rom.PRG)%mmc1PrgBankSize != 0 {
		return nil, ErrUnexpectedPrgRomSize
	}

	m := &mmc1{
		prg:        rom.PRG,
		hasBattery: rom.HasBattery,
		control:    0x0C, // reset state: PRG mode "fix upper, switch lower"
	}

	if len(rom.CHR) == 0 {
		m.chr = make([]byte, 8*1024)
		m.chrIsRAM = true
	} else {
		if len(rom.CHR)%mmc1ChrBankSize != 0 {
			return nil, ErrUnexpectedChrRomSize
		}
		m.chr = rom.CHR
	}

	return m, nil
}

func (m *mmc1) numPrgBanks() int { return len(m.prg) / mmc1PrgBankSize }
func (m *mmc1) numChrBanks() int {
	if len(m.chr) == 0 {
		return 1
	}
	return len(m.chr) / mmc1ChrBankSize
}

func (m *mmc1) CpuRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		bank, offset := m.prgBank(addr)
		return m.prg[bank*mmc1PrgBankSize+offset]
	default:
		return 0
	}
}

func (m *mmc1) CpuReadReadOnly(addr uint16) uint8 {
	return m.CpuRead(addr)
}

// prgBank returns which 16 KiB PRG bank addr falls in and its offset
// within that bank, per the current PRG bank mode.
func (m *mmc1) prgBank(addr uint16) (bank, offset int) {
	mode := (m.control >> 2) & 0x3
	low := addr < 0xC000
	if low {
		offset = int(addr - 0x8000)
	} else {
		offset = int(addr - 0xC000)
	}

	switch mode {
	case 0, 1: // switch both: 32 KiB window, prgReg with its low bit cleared selects the pair
		base := int(m.prgReg&0x0F) &^ 1
		if low {
			bank = base
		} else {
			bank = base | 1
		}
	case 2: // fix lower to bank 0, switch upper via prgReg
		if low {
			bank = 0
		} else {
			bank = int(m.prgReg & 0x0F)
		}
	case 3: // fix upper to the last bank, switch lower via prgReg
		if low {
			bank = int(m.prgReg & 0x0F)
		} else {
			bank = m.numPrgBanks() - 1
		}
	}
	if bank >= m.numPrgBanks() {
		bank %= m.numPrgBanks()
	}
	return bank, offset
}

func (m *mmc1) CpuWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAM[addr-0x6000] = val
	case addr >= 0x8000:
		m.shiftWrite(addr, val)
	}
}

// shiftWrite feeds one bit of val into the serial shift register. A
// write with bit 7 set resets the register and forces PRG-bank mode
// to "fix upper, switch lower", discarding any partial shift.
func (m *mmc1) shiftWrite(addr uint16, val uint8) {
	if val&0x80 != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (val & 0x01) << m.shiftCount
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	m.commit(addr, m.shift)
	m.shift = 0
	m.shiftCount = 0
}

// commit writes the reconstructed 5-bit value to the register
// selected by bits 13-14 of the triggering address.
func (m *mmc1) commit(addr uint16, value uint8) {
	switch (addr >> 13) & 0x03 {
	case 0:
		m.control = value
	case 1:
		m.chr0 = value
	case 2:
		m.chr1 = value
	case 3:
		m.prgReg = value
	}
}

func (m *mmc1) chrBank(addr uint16) (bank, offset int) {
	eightKMode := m.control&0x10 == 0
	low := addr < 0x1000
	if low {
		offset = int(addr)
	} else {
		offset = int(addr - 0x1000)
	}

	if eightKMode {
		// A single 8 KiB bank switch: low bit of chr0 is forced
		// to 0 for the low 4 KiB half and 1 for the high half.
		base := m.chr0 &^ 1
		if low {
			bank = int(base)
		} else {
			bank = int(base | 1)
		}
	} else {
		// Two independently switched 4 KiB banks. CHR1 controls
		// the upper half directly - this is the corrected form
		// of a bug in some reference implementations that wrote
		// chr1 into the chr0 bank instead.
		if low {
			bank = int(m.chr0)
		} else {
			bank = int(m.chr1)
		}
	}

	n := m.numChrBanks()
	if n > 0 {
		bank %= n
	}
	return bank, offset
}

func (m *mmc1) PpuRead(addr uint16) uint8 {
	if addr >= 0x2000 {
		return 0
	}
	bank, offset := m.chrBank(addr)
	return m.chr[bank*mmc1ChrBankSize+offset]
}

func (m *mmc1) PpuWrite(addr uint16, val uint8) {
	if addr >= 0x2000 {
		return
	}
	if !m.chrIsRAM {
		log.Printf("cartridge: ignored write 0x%02x to MMC1 CHR ROM at 0x%04x", val, addr)
		return
	}
	bank, offset := m.chrBank(addr)
	m.chr[bank*mmc1ChrBankSize+offset] = val
}

func (m *mmc1) Mirroring() uint8 {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleLower
	case 1:
		return MirrorSingleUpper
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) PersistentState() []byte {
	if !m.hasBattery {
		return nil
	}
	out := make([]byte, len(m.prgRAM))
	copy(out, m.prgRAM[:])
	return out
}

func (m *mmc1) LoadPersistentState(data []byte) error {
	if !m.hasBattery || len(data) != len(m.prgRAM) {
		return ErrInvalidPersistentState
	}
	copy(m.prgRAM[:], data)
	return nil
}
