package support

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SignatureDB {
	db, err := OpenSignatureDB(filepath.Join(t.TempDir(), "signatures.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNormalizeByteSig(t *testing.T) {
	sig, err := NormalizeByteSig("a9059cbb")
	require.NoError(t, err)
	assert.Equal(t, "0xa9059cbb", sig)

	sig, err = NormalizeByteSig("0xA9059CBB")
	require.NoError(t, err)
	assert.Equal(t, "0xa9059cbb", sig)

	for _, bad := range []string{"0xa9059c", "0xzzzzzzzz", "a9059cbg", "0x-9059cbb"} {
		_, err = NormalizeByteSig(bad)
		assert.True(t, errors.Is(err, ErrInvalidByteSig), bad)
	}
}

func TestNonHexSelectorIsNotStored(t *testing.T) {
	db := openTestDB(t)

	err := db.Add("0xzzzzzzzz", "broken()")
	assert.True(t, errors.Is(err, ErrInvalidByteSig))

	_, err = db.Get("0xzzzzzzzz")
	assert.True(t, errors.Is(err, ErrInvalidByteSig))
}

func TestSignatureDBAddGet(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Add("0xa9059cbb", "transfer(address,uint256)"))
	require.NoError(t, db.Add("a9059cbb", "transfer(address,uint256)"))
	require.NoError(t, db.Add("0xa9059cbb", "many_msg_babbage(bytes1)"))

	sigs, err := db.Get("a9059cbb")
	require.NoError(t, err)
	assert.Equal(t, []string{"many_msg_babbage(bytes1)", "transfer(address,uint256)"}, sigs)

	sigs, err = db.Get("0x00000000")
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestSoliditySignaturesShadowDatabase(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Add("0xf8a8fd6d", "other()"))
	require.NoError(t, db.AddSoliditySignature("0xf8a8fd6d", "test()"))
	require.NoError(t, db.AddSoliditySignature("0xf8a8fd6d", "test()"))

	sigs, err := db.Get("0xf8a8fd6d")
	require.NoError(t, err)
	assert.Equal(t, []string{"test()"}, sigs)
}

func TestSignatureDBPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signatures.db")
	db, err := OpenSignatureDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Add("0xa9059cbb", "transfer(address,uint256)"))
	require.NoError(t, db.Close())

	db, err = OpenSignatureDB(path)
	require.NoError(t, err)
	defer db.Close()
	sigs, err := db.Get("0xa9059cbb")
	require.NoError(t, err)
	assert.Equal(t, []string{"transfer(address,uint256)"}, sigs)
}

func TestSelector(t *testing.T) {
	assert.Equal(t, "0xa9059cbb", Selector("transfer(address,uint256)"))
	assert.Equal(t, "0xf8a8fd6d", Selector("test()"))
}
