package yl

// OpCode is one bytecode instruction (§4.5). Operands are encoded
// inline in the Chunk's code stream immediately following the opcode
// byte: a "short" operand (local or upvalue slot, argument count) is
// one byte, a "wide" operand (constant index, jump offset) is two
// bytes, little endian (encoding/binary.LittleEndian order).
type OpCode byte

const (
	OpConstant  OpCode = iota // wide: constant pool index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpDup

	OpGetLocal  // short: slot
	OpSetLocal  // short: slot
	OpGetUpvalue // short: slot
	OpSetUpvalue // short: slot
	OpGetGlobal // wide: name constant index
	OpDefineGlobal
	OpSetGlobal

	OpGetProperty  // wide: name constant index
	OpSetProperty
	OpGetSuper
	OpGetIndex
	OpSetIndex

	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShiftLeft
	OpShiftRight
	OpNot
	OpNegate

	OpFormatString // short: fragment count, interleaved on the stack
	OpBuildRange   // short: 1 if inclusive
	OpBuildVec     // wide: element count
	OpBuildTuple   // wide: element count
	OpBuildMap     // wide: entry count

	OpJump        // wide: forward offset
	OpJumpIfFalse // wide: forward offset
	OpLoop        // wide: backward offset

	OpCall       // short: arg count
	OpInvoke     // wide: name constant index; short: arg count
	OpSuperInvoke // wide: name constant index; short: arg count
	OpClosure    // wide: function constant index; then per-upvalue (short isLocal, short index)
	OpCloseUpvalue
	OpReturn

	OpDeclareClass // wide: name constant index
	OpDefineClass
	OpInherit
	OpMethod       // wide: name constant index
	OpStaticMethod // wide: name constant index
	OpField        // wide: name constant index; pops a default value
	OpStaticField  // wide: name constant index; pops an initial value
	OpIterNext

	OpPushExcHandler // wide: catch pc; wide: after pc
	OpPopExcHandler
	OpThrow
	OpJumpFinally   // wide: finally target pc
	OpFinallyReturn

	OpStartImport // wide: path constant index
	OpFinishImport

	OpGetClass // replace top of stack with class_of(top)
)

// opcodeNames backs OpCode.String, which names each opcode in the
// Instructions that Disassemble (debug.go) returns.
var opcodeNames = map[OpCode]string{
	OpConstant: "CONSTANT", OpNil: "NIL", OpTrue: "TRUE", OpFalse: "FALSE",
	OpPop: "POP", OpDup: "DUP",
	OpGetLocal: "GET_LOCAL", OpSetLocal: "SET_LOCAL",
	OpGetUpvalue: "GET_UPVALUE", OpSetUpvalue: "SET_UPVALUE",
	OpGetGlobal: "GET_GLOBAL", OpDefineGlobal: "DEFINE_GLOBAL", OpSetGlobal: "SET_GLOBAL",
	OpGetProperty: "GET_PROPERTY", OpSetProperty: "SET_PROPERTY", OpGetSuper: "GET_SUPER",
	OpGetIndex: "GET_INDEX", OpSetIndex: "SET_INDEX",
	OpEqual: "EQUAL", OpNotEqual: "NOT_EQUAL", OpGreater: "GREATER", OpGreaterEqual: "GREATER_EQUAL",
	OpLess: "LESS", OpLessEqual: "LESS_EQUAL", OpAdd: "ADD", OpSubtract: "SUBTRACT",
	OpMultiply: "MULTIPLY", OpDivide: "DIVIDE", OpModulo: "MODULO",
	OpBitAnd: "BIT_AND", OpBitOr: "BIT_OR", OpBitXor: "BIT_XOR", OpBitNot: "BIT_NOT",
	OpShiftLeft: "SHL", OpShiftRight: "SHR", OpNot: "NOT", OpNegate: "NEGATE",
	OpFormatString: "FORMAT_STRING", OpBuildRange: "BUILD_RANGE", OpBuildVec: "BUILD_VEC",
	OpBuildTuple: "BUILD_TUPLE", OpBuildMap: "BUILD_MAP",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpLoop: "LOOP",
	OpCall: "CALL", OpInvoke: "INVOKE", OpSuperInvoke: "SUPER_INVOKE",
	OpClosure: "CLOSURE", OpCloseUpvalue: "CLOSE_UPVALUE", OpReturn: "RETURN",
	OpDeclareClass: "DECLARE_CLASS", OpDefineClass: "DEFINE_CLASS", OpInherit: "INHERIT",
	OpMethod: "METHOD", OpStaticMethod: "STATIC_METHOD", OpField: "FIELD", OpStaticField: "STATIC_FIELD", OpIterNext: "ITER_NEXT",
	OpPushExcHandler: "PUSH_EXC_HANDLER", OpPopExcHandler: "POP_EXC_HANDLER",
	OpThrow: "THROW", OpJumpFinally: "JUMP_FINALLY", OpFinallyReturn: "FINALLY_RETURN",
	OpStartImport: "START_IMPORT", OpFinishImport: "FINISH_IMPORT",
	OpGetClass: "GET_CLASS",
}

func (op OpCode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "UNKNOWN"
}
