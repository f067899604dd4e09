package support

import (
	"encoding/hex"
	"strings"
	"sync"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/sha3"
)

var signaturesBucket = []byte("signatures")

// ErrInvalidByteSig is returned for selectors that are not 4 bytes of hex.
var ErrInvalidByteSig = errors.New("invalid byte signature")

// SignatureDB maps 4-byte function selectors to text signatures. Selectors
// registered from source code in this run shadow the database.
type SignatureDB struct {
	db *bolt.DB

	mu            sync.RWMutex
	soliditySigs map[string][]string
}

// OpenSignatureDB opens, creating if needed, the database at path.
func OpenSignatureDB(path string) (*SignatureDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open signature database at %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(signaturesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}
	return &SignatureDB{db: db, soliditySigs: make(map[string][]string)}, nil
}

// Close closes the underlying database.
func (s *SignatureDB) Close() error {
	return s.db.Close()
}

// NormalizeByteSig adds a leading 0x and checks that four bytes of hex follow.
func NormalizeByteSig(byteSig string) (string, error) {
	if !strings.HasPrefix(byteSig, "0x") {
		byteSig = "0x" + byteSig
	}
	if len(byteSig) != 10 {
		return "", errors.Wrapf(ErrInvalidByteSig, "%s must have 10 characters", byteSig)
	}
	if _, err := hex.DecodeString(byteSig[2:]); err != nil {
		return "", errors.Wrapf(ErrInvalidByteSig, "%s is not hex", byteSig)
	}
	return strings.ToLower(byteSig), nil
}

// Add stores a selector to text signature pair. Existing pairs are kept.
func (s *SignatureDB) Add(byteSig, textSig string) error {
	byteSig, err := NormalizeByteSig(byteSig)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(signaturesBucket)
		b, err := root.CreateBucketIfNotExists([]byte(byteSig))
		if err != nil {
			return errors.WithStack(err)
		}
		return b.Put([]byte(textSig), []byte{})
	})
}

// AddSoliditySignature registers a signature found in source for this run only.
func (s *SignatureDB) AddSoliditySignature(byteSig, textSig string) error {
	byteSig, err := NormalizeByteSig(byteSig)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.soliditySigs[byteSig] {
		if existing == textSig {
			return nil
		}
	}
	s.soliditySigs[byteSig] = append(s.soliditySigs[byteSig], textSig)
	return nil
}

// Get returns the text signatures of a selector, sorted, or an empty slice.
func (s *SignatureDB) Get(byteSig string) ([]string, error) {
	byteSig, err := NormalizeByteSig(byteSig)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	sigs, ok := s.soliditySigs[byteSig]
	s.mu.RUnlock()
	if ok {
		return append([]string(nil), sigs...), nil
	}

	out := make([]string, 0)
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(signaturesBucket).Bucket([]byte(byteSig))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// Selector computes the 4-byte selector of a text signature such as "transfer(address,uint256)".
func Selector(textSig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(textSig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}
