package disassembler

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/fxamacker/cbor"
)

// EvmInstruction is one decoded instruction. Address is the byte offset in the
// bytecode; the index into the instruction list is what the engine calls pc.
type EvmInstruction struct {
	Address  int
	Opcode   string
	Argument string
}

func opcodeName(b byte) string {
	op := vm.OpCode(b)
	name := op.String()
	if strings.HasPrefix(name, "opcode ") {
		return "INVALID"
	}
	return name
}

func pushSize(b byte) int {
	op := vm.OpCode(b)
	if op >= vm.PUSH1 && op <= vm.PUSH32 {
		return int(op-vm.PUSH1) + 1
	}
	return 0
}

// disassemble decodes bytecode with a linear sweep. A truncated push at the
// end of the code keeps the bytes that are present.
func disassemble(bytecode []byte) []*EvmInstruction {
	ret := make([]*EvmInstruction, 0, len(bytecode))
	for addr := 0; addr < len(bytecode); {
		b := bytecode[addr]
		instr := &EvmInstruction{
			Address: addr,
			Opcode:  opcodeName(b),
		}
		n := pushSize(b)
		if n > 0 {
			end := addr + 1 + n
			if end > len(bytecode) {
				end = len(bytecode)
			}
			instr.Argument = "0x" + hex.EncodeToString(bytecode[addr+1:end])
		}
		ret = append(ret, instr)
		addr += 1 + n
	}
	return ret
}

// metadataKeys are the entries solc writes into the CBOR trailer.
var metadataKeys = []string{"ipfs", "bzzr0", "bzzr1", "solc", "experimental"}

// splitMetadata separates the CBOR metadata trailer solc appends to runtime
// code. The trailer is a CBOR map followed by its length as two big-endian
// bytes. Bytecode without a recognisable trailer is returned unchanged.
func splitMetadata(bytecode []byte) ([]byte, map[string]interface{}) {
	if len(bytecode) < 2 {
		return bytecode, nil
	}
	length := int(bytecode[len(bytecode)-2])<<8 | int(bytecode[len(bytecode)-1])
	start := len(bytecode) - 2 - length
	if length == 0 || start < 0 {
		return bytecode, nil
	}
	var meta map[string]interface{}
	if err := cbor.Unmarshal(bytecode[start:len(bytecode)-2], &meta); err != nil {
		return bytecode, nil
	}
	for _, k := range metadataKeys {
		if _, ok := meta[k]; ok {
			return bytecode[:start], meta
		}
	}
	return bytecode, nil
}

// pattern is a sequence of alternatives matched against consecutive opcodes.
type pattern [][]string

// findOpcodeSequence returns the indices where p starts in instrs.
func findOpcodeSequence(p pattern, instrs []*EvmInstruction) []int {
	found := make([]int, 0)
	for i := 0; i+len(p) <= len(instrs); i++ {
		if matches(p, instrs[i:i+len(p)]) {
			found = append(found, i)
		}
	}
	return found
}

func matches(p pattern, instrs []*EvmInstruction) bool {
	for i, options := range p {
		ok := false
		for _, o := range options {
			if instrs[i].Opcode == o {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
