package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-laser/support"
)

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes a configuration keeping the signature database in dir.
func writeConfig(t *testing.T, dir string) string {
	config := support.DefaultConfig()
	config.SignatureDBPath = filepath.Join(dir, "signatures.db")
	config.LogLevel = "error"
	path := filepath.Join(dir, "laser.json")
	require.NoError(t, config.WriteToFile(path))
	return path
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "new.json")

	_, err := execute(t, "config", "init", "--out", out)
	require.NoError(t, err)
	config, err := support.ReadConfigFromFile(out)
	require.NoError(t, err)
	assert.Equal(t, support.DefaultConfig(), config)

	_, err = execute(t, "config", "init", "--out", out)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	config := support.DefaultConfig()
	config.Workers = 0
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, config.WriteToFile(path))

	_, err := execute(t, "--config", path, "disassemble", "00")
	assert.Error(t, err)
}

func TestSignaturesAddAndGet(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir)

	out, err := execute(t, "--config", config, "signatures", "add", "transfer(address,uint256)")
	require.NoError(t, err)
	assert.Equal(t, "0xa9059cbb transfer(address,uint256)\n", out)

	out, err = execute(t, "--config", config, "signatures", "get", "0xA9059CBB")
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)\n", out)

	_, err = execute(t, "--config", config, "signatures", "get", "0xa9")
	assert.Error(t, err)
}

func TestDisassemble(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir)

	out, err := execute(t, "--config", config, "disassemble", "0x600100")
	require.NoError(t, err)
	assert.Contains(t, out, "0 PUSH1")
	assert.Contains(t, out, "2 STOP")

	_, err = execute(t, "--config", config, "disassemble", "zz")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	config := writeConfig(t, dir)

	sat := filepath.Join(dir, "sat.smt2")
	require.NoError(t, os.WriteFile(sat, []byte(`
(declare-const x (_ BitVec 8))
(assert (= (bvadd x #x01) #x05))
`), 0644))
	out, err := execute(t, "--config", config, "check", sat)
	require.NoError(t, err)
	assert.Equal(t, "sat\nx = #x04\n", out)

	unsat := filepath.Join(dir, "unsat.smt2")
	require.NoError(t, os.WriteFile(unsat, []byte(`
(declare-const b Bool)
(assert (and b (not b)))
`), 0644))
	out, err = execute(t, "--config", config, "check", unsat)
	require.NoError(t, err)
	assert.Equal(t, "unsat\n", out)

	broken := filepath.Join(dir, "broken.smt2")
	require.NoError(t, os.WriteFile(broken, []byte("(assert (= y"), 0644))
	_, err = execute(t, "--config", config, "check", broken)
	assert.Error(t, err)
}
