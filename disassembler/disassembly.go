// Package disassembler decodes EVM bytecode into instructions and recovers the
// function dispatch table.
package disassembler

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SignatureResolver maps 4-byte selectors ("0x" + 8 hex digits) to text signatures.
type SignatureResolver interface {
	Get(byteSig string) ([]string, error)
}

var dispatchPattern = pattern{{"PUSH4"}, {"EQ"}, {"PUSH1", "PUSH2"}, {"JUMPI"}}

// Disassembly is decoded bytecode together with its dispatch table.
type Disassembly struct {
	Bytecode        []byte
	InstructionList []*EvmInstruction
	Metadata        map[string]interface{}

	FuncHashes            []string
	FunctionNameToAddress map[string]int
	AddressToFunctionName map[int]string
}

// NewDisassembly decodes hex encoded code, with or without a 0x prefix.
// resolver may be nil, in which case functions get placeholder names.
func NewDisassembly(code string, resolver SignatureResolver) (*Disassembly, error) {
	bytecode, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(code), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid bytecode")
	}
	return FromBytes(bytecode, resolver), nil
}

// FromBytes decodes raw bytecode.
func FromBytes(bytecode []byte, resolver SignatureResolver) *Disassembly {
	body, meta := splitMetadata(bytecode)
	d := &Disassembly{
		Bytecode:              bytecode,
		InstructionList:       disassemble(body),
		Metadata:              meta,
		FuncHashes:            make([]string, 0),
		FunctionNameToAddress: make(map[string]int),
		AddressToFunctionName: make(map[int]string),
	}
	for _, index := range findOpcodeSequence(dispatchPattern, d.InstructionList) {
		hash, target, name := d.functionInfo(index, resolver)
		d.FuncHashes = append(d.FuncHashes, hash)
		if target >= 0 {
			d.FunctionNameToAddress[name] = target
			d.AddressToFunctionName[target] = name
		}
	}
	return d
}

func (d *Disassembly) functionInfo(index int, resolver SignatureResolver) (string, int, string) {
	arg := strings.TrimPrefix(d.InstructionList[index].Argument, "0x")
	if len(arg) < 8 {
		arg = strings.Repeat("0", 8-len(arg)) + arg
	}
	hash := "0x" + arg

	name := "_function_" + hash
	if resolver != nil {
		if names, err := resolver.Get(hash); err == nil && len(names) > 0 {
			name = names[0]
		}
	}

	target, err := strconv.ParseInt(strings.TrimPrefix(d.InstructionList[index+2].Argument, "0x"), 16, 64)
	if err != nil {
		return hash, -1, name
	}
	return hash, int(target), name
}

// Hex returns the bytecode as a 0x prefixed string.
func (d *Disassembly) Hex() string {
	return "0x" + hex.EncodeToString(d.Bytecode)
}

// InstructionIndex returns the index of the first instruction at or after
// addr, or -1 when addr is past the end of the code.
func (d *Disassembly) InstructionIndex(addr int) int {
	for i, instr := range d.InstructionList {
		if instr.Address >= addr {
			return i
		}
	}
	return -1
}

// String renders the instruction list, one instruction per line.
func (d *Disassembly) String() string {
	var sb strings.Builder
	for _, instr := range d.InstructionList {
		sb.WriteString(strconv.Itoa(instr.Address))
		sb.WriteByte(' ')
		sb.WriteString(instr.Opcode)
		if instr.Argument != "" {
			sb.WriteByte(' ')
			sb.WriteString(instr.Argument)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
