package yl

import "fmt"

// Instruction is one decoded bytecode instruction, the unit
// `-dump` prints (via go-spew in cmd/yl) to inspect what a compile
// produced without needing a debugger.
type Instruction struct {
	Offset  int
	Line    int
	Op      OpCode
	Operand string
}

// Disassemble decodes every instruction in the chunk in order. It
// mirrors the operand-width comments in opcodes.go exactly: each case
// here reads precisely the bytes that the compiler's emit* calls wrote
// for that opcode.
func (c *Chunk) Disassemble(name string) []Instruction {
	var out []Instruction
	offset := 0
	for offset < len(c.code) {
		op := OpCode(c.code[offset])
		start := offset
		line := c.Line(offset)
		offset++
		operand := ""
		switch op {
		case OpConstant:
			idx := c.ReadU16(offset)
			operand = fmt.Sprintf("#%d (%v)", idx, c.constants[idx])
			offset += 2
		case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall,
			OpFormatString, OpBuildRange:
			operand = fmt.Sprintf("%d", c.code[offset])
			offset++
		case OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty, OpSetProperty, OpGetSuper,
			OpDeclareClass, OpMethod, OpStaticMethod, OpField, OpStaticField, OpStartImport:
			idx := c.ReadU16(offset)
			operand = fmt.Sprintf("#%d (%v)", idx, c.constants[idx])
			offset += 2
		case OpBuildVec, OpBuildTuple, OpBuildMap:
			idx := c.ReadU16(offset)
			operand = fmt.Sprintf("%d", idx)
			offset += 2
		case OpJump, OpJumpIfFalse, OpLoop, OpJumpFinally:
			idx := c.ReadU16(offset)
			operand = fmt.Sprintf("->%d", idx)
			offset += 2
		case OpInvoke, OpSuperInvoke:
			idx := c.ReadU16(offset)
			argCount := c.code[offset+2]
			operand = fmt.Sprintf("#%d (%v) argc=%d", idx, c.constants[idx], argCount)
			offset += 3
		case OpClosure:
			idx := c.ReadU16(offset)
			offset += 2
			fn, ok := c.constants[idx].AsObject().(*ObjFunction)
			operand = fmt.Sprintf("#%d", idx)
			if ok {
				for i := 0; i < fn.UpvalueCnt; i++ {
					offset += 2
				}
			}
		case OpPushExcHandler:
			catchPC := c.ReadU16(offset)
			afterPC := c.ReadU16(offset + 2)
			operand = fmt.Sprintf("catch=%d after=%d", catchPC, afterPC)
			offset += 4
		}
		out = append(out, Instruction{Offset: start, Line: line, Op: op, Operand: operand})
	}
	return out
}
