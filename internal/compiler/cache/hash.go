// Package cache lets generation skip inputs whose content, and the options
// they are generated with, have not changed since the last run.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile computes a SHA-256 hash of the file contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Key hashes an input together with everything else its output depends on.
// Each part is length-prefixed, so moving bytes between parts changes the key.
func (fh *FileHasher) Key(content []byte, options ...string) string {
	hasher := sha256.New()
	var n [8]byte
	write := func(b []byte) {
		binary.BigEndian.PutUint64(n[:], uint64(len(b)))
		hasher.Write(n[:])
		hasher.Write(b)
	}
	write(content)
	for _, o := range options {
		write([]byte(o))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
