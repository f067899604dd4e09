package disassembler

import (
	"testing"

	"github.com/fxamacker/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[string][]string

func (r staticResolver) Get(byteSig string) ([]string, error) {
	return r[byteSig], nil
}

func TestDisassemble(t *testing.T) {
	d, err := NewDisassembly("0x6060320032", nil)
	require.NoError(t, err)

	require.Len(t, d.InstructionList, 4)
	assert.Equal(t, EvmInstruction{Address: 0, Opcode: "PUSH1", Argument: "0x60"}, *d.InstructionList[0])
	assert.Equal(t, EvmInstruction{Address: 2, Opcode: "ORIGIN"}, *d.InstructionList[1])
	assert.Equal(t, EvmInstruction{Address: 3, Opcode: "STOP"}, *d.InstructionList[2])
	assert.Equal(t, EvmInstruction{Address: 4, Opcode: "ORIGIN"}, *d.InstructionList[3])
	assert.Equal(t, "0x6060320032", d.Hex())
}

func TestDisassembleTruncatedPushAndInvalid(t *testing.T) {
	d, err := NewDisassembly("fe61aa", nil)
	require.NoError(t, err)

	require.Len(t, d.InstructionList, 2)
	assert.Equal(t, "INVALID", d.InstructionList[0].Opcode)
	assert.Equal(t, "PUSH2", d.InstructionList[1].Opcode)
	assert.Equal(t, "0xaa", d.InstructionList[1].Argument)
}

func TestInvalidHex(t *testing.T) {
	_, err := NewDisassembly("0xzz", nil)
	assert.Error(t, err)
}

func TestFunctionDispatch(t *testing.T) {
	// PUSH4 0xf8a8fd6d EQ PUSH1 0x10 JUMPI STOP
	code := "63f8a8fd6d" + "14" + "6010" + "57" + "00"
	resolver := staticResolver{"0xf8a8fd6d": {"test()"}}

	d, err := NewDisassembly(code, resolver)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xf8a8fd6d"}, d.FuncHashes)
	assert.Equal(t, 0x10, d.FunctionNameToAddress["test()"])
	assert.Equal(t, "test()", d.AddressToFunctionName[0x10])

	d, err = NewDisassembly(code, nil)
	require.NoError(t, err)
	assert.Equal(t, "_function_0xf8a8fd6d", d.AddressToFunctionName[0x10])
}

func TestMetadataTrailer(t *testing.T) {
	meta, err := cbor.Marshal(map[string]interface{}{"solc": []byte{0, 8, 19}}, cbor.EncOptions{})
	require.NoError(t, err)

	code := []byte{0x60, 0x01, 0x00}
	code = append(code, meta...)
	code = append(code, byte(len(meta)>>8), byte(len(meta)))

	d := FromBytes(code, nil)
	require.NotNil(t, d.Metadata)
	assert.Contains(t, d.Metadata, "solc")
	require.Len(t, d.InstructionList, 2)
	assert.Equal(t, "STOP", d.InstructionList[1].Opcode)
}

func TestInstructionIndex(t *testing.T) {
	d, err := NewDisassembly("6060320032", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, d.InstructionIndex(0))
	assert.Equal(t, 1, d.InstructionIndex(1))
	assert.Equal(t, 1, d.InstructionIndex(2))
	assert.Equal(t, 3, d.InstructionIndex(4))
	assert.Equal(t, -1, d.InstructionIndex(5))
}
