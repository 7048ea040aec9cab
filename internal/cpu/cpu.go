// Package cpu implements a cycle-accounted MOS 6502 core: registers,
// the addressing-mode engine, the full documented and undocumented
// instruction set, and interrupt entry.
// https://www.nesdev.org/obelisk-6502-guide/registers.html
package cpu

import (
	"errors"
	"fmt"
	"log"

	"github.com/bdwalton/gones6502/internal/status"
)

// Interrupt and reset vectors, all in CPU address space.
const (
	VectorNMI   = 0xFFFA
	VectorReset = 0xFFFC
	VectorIRQ   = 0xFFFE
	VectorBRK   = VectorIRQ
)

const stackPage = 0x0100

// Bus is everything the CPU needs from the rest of the machine. The
// bus owns RAM, the PPU, the mapper and the controller; the CPU only
// ever talks to the bus.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// ErrUnknownOpcode is returned by Step/RunForCycles when the byte at
// PC does not decode to any known opcode.
var ErrUnknownOpcode = errors.New("unknown opcode")

// CPU holds all 6502 register state. It contains no memory of its
// own; every read/write goes through the Bus given at construction.
type CPU struct {
	PC uint16
	SP uint8
	A  uint8
	X  uint8
	Y  uint8
	P  status.Register
}

// New returns a CPU reset against b (PC loaded from the reset
// vector).
func New(b Bus) *CPU {
	c := &CPU{SP: 0xFD}
	c.Reset(b)
	return c
}

// Reset loads PC from the reset vector, sets SP to the conventional
// 0xFD power-on value, and loads the status register with only the
// interrupt-disable flag set.
func (c *CPU) Reset(b Bus) {
	c.SP = 0xFD
	c.P.Load(status.InterruptDisable)
	c.PC = c.read16(b, VectorReset)
}

// StackAddr returns the current top-of-stack address (page 1).
func (c *CPU) StackAddr() uint16 {
	return stackPage | uint16(c.SP)
}

func (c *CPU) push(b Bus, v uint8) {
	b.Write(c.StackAddr(), v)
	c.SP--
}

func (c *CPU) pop(b Bus) uint8 {
	c.SP++
	return b.Read(c.StackAddr())
}

func (c *CPU) push16(b Bus, v uint16) {
	c.push(b, uint8(v>>8))
	c.push(b, uint8(v))
}

func (c *CPU) pop16(b Bus) uint16 {
	lo := uint16(c.pop(b))
	hi := uint16(c.pop(b))
	return hi<<8 | lo
}

func (c *CPU) read16(b Bus, addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return hi<<8 | lo
}

// TriggerNMI pushes PC and status (B/expansion set in the pushed
// copy) and loads PC from the NMI vector. It is invoked by the frame
// pipeline, outside of Step, and is not charged to any instruction.
func (c *CPU) TriggerNMI(b Bus) {
	c.push16(b, c.PC)
	c.push(b, c.P.PushByte())
	c.P.SetInterruptDisable()
	c.PC = c.read16(b, VectorNMI)
}

// TriggerIRQ is the maskable counterpart to TriggerNMI: it does nothing
// while the interrupt-disable flag is set. Nothing in the NES core
// raises IRQ (the APU stub does not generate one).
func (c *CPU) TriggerIRQ(b Bus) {
	if c.P.InterruptDisabled() {
		return
	}
	c.push16(b, c.PC)
	c.push(b, c.P.PushByte())
	c.P.SetInterruptDisable()
	c.PC = c.read16(b, VectorIRQ)
}

// controlFlowMnemonics are the instructions responsible for setting PC
// themselves. Step must not auto-advance PC after executing one of
// these, even when the new PC happens to equal the instruction's own
// address — the canonical 6502 "spin" idiom (e.g. `loop: JMP loop`)
// relies on exactly that.
var controlFlowMnemonics = map[string]bool{
	"JMP": true, "JSR": true, "RTS": true, "RTI": true, "BRK": true,
	"BCC": true, "BCS": true, "BEQ": true, "BNE": true,
	"BMI": true, "BPL": true, "BVC": true, "BVS": true,
}

// Step fetches, decodes and executes one instruction, advancing PC
// and returning the number of cycles it cost.
func (c *CPU) Step(b Bus) (int, error) {
	opcode := b.Read(c.PC)
	ins, ok := decodeTable[opcode]
	if !ok {
		return 0, fmt.Errorf("%w: 0x%02x at 0x%04x", ErrUnknownOpcode, opcode, c.PC)
	}

	extra := ins.exec(c, b, ins.mode)

	// Branch/jump/call/return/interrupt instructions move PC
	// themselves; everything else advances past the opcode and
	// its operand bytes.
	if !controlFlowMnemonics[ins.mnemonic] {
		c.PC += 1 + operandBytes(ins.mode)
	}

	cycles := int(ins.cycles) + extra
	return cycles, nil
}

// RunForCycles steps the CPU until at least budget cycles have been
// consumed, absorbing any overshoot from the final instruction. It
// returns the actual number of cycles consumed, which may exceed
// budget.
func (c *CPU) RunForCycles(b Bus, budget int) (int, error) {
	consumed := 0
	for consumed < budget {
		n, err := c.Step(b)
		if err != nil {
			return consumed, err
		}
		consumed += n
	}
	return consumed, nil
}

func warnDecimalMode() {
	log.Printf("cpu: decimal mode flag set but arithmetic ignores it (NES never uses BCD)")
}
