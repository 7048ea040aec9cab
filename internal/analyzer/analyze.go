package analyzer

import (
	"sort"

	"github.com/bdwalton/gones6502/internal/cpu"
)

// Analyze scans every 16-bit address of mem for JSR instructions,
// normalizes each target through mm, and traces the control flow of
// every discovered function entry.
func Analyze(mem Memory, mm MemoryMap) *Analysis {
	a := &Analysis{
		traces:   map[uint16][]Step{},
		byCaller: map[uint16]map[uint16]bool{},
		byCallee: map[uint16]map[uint16]bool{},
	}

	entries := map[uint16]bool{}
	for addr := 0; addr <= 0xFFFF; addr++ {
		if mem.Read(uint16(addr)) != opJSR {
			continue
		}
		target, ok := mm.NormalizeFunctionCall(uint16(addr), mem)
		if !ok {
			continue
		}
		entries[target] = true
	}

	for entry := range entries {
		a.traceFunction(mem, mm, entry)
	}

	return a
}

const opJSR = 0x20

// traceFunction performs the worklist traversal for one function
// entry, per spec.md §4.8.
func (a *Analysis) traceFunction(mem Memory, mm MemoryMap, entry uint16) {
	if _, done := a.traces[entry]; done {
		return
	}

	stepsByAddr := map[uint16]Step{}
	visited := map[uint16]bool{}
	worklist := []uint16{entry}

	a.traces[entry] = nil // mark in-progress to break recursive self-calls

	for len(worklist) > 0 {
		n := len(worklist) - 1
		addr := worklist[n]
		worklist = worklist[:n]

		if visited[addr] {
			continue
		}
		visited[addr] = true

		opcode := mem.Read(addr)
		mnemonic, mode, ok := cpu.Mnemonic(opcode)
		if !ok {
			stepsByAddr[addr] = Step{Addr: addr, Kind: StepInvalidOpcode}
			continue
		}

		next := addr + 1 + cpu.OperandBytes(mode)

		switch mnemonic {
		case "JMP":
			if mode == cpu.Absolute {
				target := read16(mem, addr+1)
				stepsByAddr[addr] = Step{Addr: addr, Kind: StepInstruction, Mnemonic: mnemonic, Mode: mode}
				worklist = append(worklist, target)
				continue
			}
			// Indirect: cannot trace further statically.
			stepsByAddr[addr] = Step{Addr: addr, Kind: StepIndirectJumpTerminator, Mnemonic: mnemonic, Mode: mode}
			continue

		case "RTS", "RTI":
			stepsByAddr[addr] = Step{Addr: addr, Kind: StepInstruction, Mnemonic: mnemonic, Mode: mode}
			continue

		case "JSR":
			step := Step{Addr: addr, Kind: StepInstruction, Mnemonic: mnemonic, Mode: mode}
			if callee, ok := mm.NormalizeFunctionCall(addr, mem); ok {
				step.Callee = callee
				step.HasCallee = true
				a.addEdge(entry, callee)
				a.traceFunction(mem, mm, callee)
			}
			stepsByAddr[addr] = step
			worklist = append(worklist, next)
			continue
		}

		if isBranch(mnemonic) {
			target := read16Relative(mem, addr)
			stepsByAddr[addr] = Step{Addr: addr, Kind: StepInstruction, Mnemonic: mnemonic, Mode: mode}
			worklist = append(worklist, next, target)
			continue
		}

		stepsByAddr[addr] = Step{Addr: addr, Kind: StepInstruction, Mnemonic: mnemonic, Mode: mode}
		worklist = append(worklist, next)
	}

	steps := make([]Step, 0, len(stepsByAddr))
	for _, s := range stepsByAddr {
		steps = append(steps, s)
	}
	sortSteps(steps)
	a.traces[entry] = steps
}

func (a *Analysis) addEdge(caller, callee uint16) {
	if a.byCaller[caller] == nil {
		a.byCaller[caller] = map[uint16]bool{}
	}
	a.byCaller[caller][callee] = true

	if a.byCallee[callee] == nil {
		a.byCallee[callee] = map[uint16]bool{}
	}
	a.byCallee[callee][caller] = true
}

func isBranch(mnemonic string) bool {
	switch mnemonic {
	case "BCC", "BCS", "BEQ", "BNE", "BMI", "BPL", "BVC", "BVS":
		return true
	}
	return false
}

func read16(mem Memory, addr uint16) uint16 {
	lo := uint16(mem.Read(addr))
	hi := uint16(mem.Read(addr + 1))
	return hi<<8 | lo
}

// read16Relative computes a branch's target address from the signed
// offset operand following addr, matching cpu's Relative addressing.
func read16Relative(mem Memory, addr uint16) uint16 {
	offset := int8(mem.Read(addr + 1))
	next := addr + 2
	return uint16(int32(next) + int32(offset))
}

func sortSteps(steps []Step) {
	sort.Slice(steps, func(i, j int) bool { return steps[i].Addr < steps[j].Addr })
}
