package bytecode

import "encoding/binary"

// The invoke* family and the opcodes whose operand length is not fixed.
const (
	opIinc            = 0x84
	opTableswitch     = 0xAA
	opLookupswitch    = 0xAB
	opInvokevirtual   = 0xB6
	opInvokespecial   = 0xB7
	opInvokestatic    = 0xB8
	opInvokeinterface = 0xB9
	opInvokedynamic   = 0xBA
	opWide            = 0xC4
)

// operandLen[op] is the fixed operand byte count following the opcode, or
// -1 for tableswitch/lookupswitch/wide (computed at the call site) and for
// undefined opcodes.
var operandLen = buildOperandTable()

func buildOperandTable() [256]int {
	var t [256]int
	for i := range t {
		t[i] = -1
	}
	// nop .. dconst_1
	for op := 0x00; op <= 0x0F; op++ {
		t[op] = 0
	}
	t[0x10] = 1 // bipush
	t[0x11] = 2 // sipush
	t[0x12] = 1 // ldc
	t[0x13] = 2 // ldc_w
	t[0x14] = 2 // ldc2_w
	for op := 0x15; op <= 0x19; op++ { // iload .. aload
		t[op] = 1
	}
	for op := 0x1A; op <= 0x35; op++ { // *load_<n>, *aload
		t[op] = 0
	}
	for op := 0x36; op <= 0x3A; op++ { // istore .. astore
		t[op] = 1
	}
	for op := 0x3B; op <= 0x56; op++ { // *store_<n>, *astore
		t[op] = 0
	}
	for op := 0x57; op <= 0x83; op++ { // stack ops, arithmetic, logic
		t[op] = 0
	}
	t[opIinc] = 2
	for op := 0x85; op <= 0x98; op++ { // conversions, comparisons
		t[op] = 0
	}
	for op := 0x99; op <= 0xA8; op++ { // if*, goto, jsr
		t[op] = 2
	}
	t[0xA9] = 1 // ret
	// 0xAA tableswitch, 0xAB lookupswitch stay -1
	for op := 0xAC; op <= 0xB1; op++ { // *return
		t[op] = 0
	}
	t[0xB2] = 2 // getstatic
	t[0xB3] = 2 // putstatic
	t[0xB4] = 2 // getfield
	t[0xB5] = 2 // putfield
	t[opInvokevirtual] = 2
	t[opInvokespecial] = 2
	t[opInvokestatic] = 2
	t[opInvokeinterface] = 4 // index u2, count u1, zero u1
	t[opInvokedynamic] = 4   // index u2, two zero bytes
	t[0xBB] = 2              // new
	t[0xBC] = 1              // newarray
	t[0xBD] = 2              // anewarray
	t[0xBE] = 0              // arraylength
	t[0xBF] = 0              // athrow
	t[0xC0] = 2              // checkcast
	t[0xC1] = 2              // instanceof
	t[0xC2] = 0              // monitorenter
	t[0xC3] = 0              // monitorexit
	// 0xC4 wide stays -1
	t[0xC5] = 3 // multianewarray
	t[0xC6] = 2 // ifnull
	t[0xC7] = 2 // ifnonnull
	t[0xC8] = 4 // goto_w
	t[0xC9] = 4 // jsr_w
	return t
}

// scanInstructions walks the bytecode array, recording each invoke*
// constant-pool target. A stream that ends mid-instruction marks the
// method truncated and keeps what was decoded so far.
func scanInstructions(code []byte, cp *ConstantPool, m *Method) {
	pc := 0
	for pc < len(code) {
		op := code[pc]

		switch op {
		case opInvokevirtual, opInvokespecial, opInvokestatic, opInvokeinterface:
			if pc+2 >= len(code) {
				m.Truncated = true
				return
			}
			index := binary.BigEndian.Uint16(code[pc+1:])
			if ref, ok := cp.ResolveMethodRef(index); ok {
				m.Calls = append(m.Calls, ref)
			}
		case opInvokedynamic:
			// Lambda/bootstrap dispatch: the callee lives behind a
			// BootstrapMethods indirection this decoder does not follow.
			m.SkippedDynamic++
		}

		advance, ok := instructionLength(code, pc)
		if !ok {
			m.Truncated = true
			return
		}
		pc += advance
	}
}

// instructionLength returns the full byte length of the instruction at pc,
// including the opcode. Returns false when the stream is truncated or the
// opcode undefined.
func instructionLength(code []byte, pc int) (int, bool) {
	op := code[pc]

	switch op {
	case opTableswitch:
		return tableswitchLength(code, pc)
	case opLookupswitch:
		return lookupswitchLength(code, pc)
	case opWide:
		return wideLength(code, pc)
	}

	n := operandLen[op]
	if n < 0 {
		return 0, false
	}
	if pc+1+n > len(code) {
		return 0, false
	}
	return 1 + n, true
}

// tableswitchLength computes the padded length: 0–3 alignment bytes, then
// default, low, high (u4 each), then (high-low+1) jump offsets.
func tableswitchLength(code []byte, pc int) (int, bool) {
	base := pc + 1 + padding(pc)
	if base+12 > len(code) {
		return 0, false
	}
	low := int32(binary.BigEndian.Uint32(code[base+4:]))
	high := int32(binary.BigEndian.Uint32(code[base+8:]))
	if high < low {
		return 0, false
	}
	entries := int(high) - int(low) + 1
	end := base + 12 + 4*entries
	if end > len(code) {
		return 0, false
	}
	return end - pc, true
}

// lookupswitchLength computes the padded length: alignment, default (u4),
// npairs (u4), then npairs match/offset pairs (8 bytes each).
func lookupswitchLength(code []byte, pc int) (int, bool) {
	base := pc + 1 + padding(pc)
	if base+8 > len(code) {
		return 0, false
	}
	npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
	if npairs < 0 {
		return 0, false
	}
	end := base + 8 + 8*int(npairs)
	if end > len(code) {
		return 0, false
	}
	return end - pc, true
}

// wideLength handles the prefix opcode that widens the next instruction's
// local-variable operand: wide iinc takes a u2 index and u2 constant, every
// other widened form takes a u2 index.
func wideLength(code []byte, pc int) (int, bool) {
	if pc+1 >= len(code) {
		return 0, false
	}
	if code[pc+1] == opIinc {
		if pc+6 > len(code) {
			return 0, false
		}
		return 6, true
	}
	if pc+4 > len(code) {
		return 0, false
	}
	return 4, true
}

// padding returns the number of alignment bytes after a switch opcode at pc
// so the following u4 fields start on a 4-byte boundary relative to the
// start of the code array.
func padding(pc int) int {
	return (4 - (pc+1)%4) % 4
}
