package crypto

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
	"io"
	"os"
	"path/filepath"
)

// HashFile returns the base58 encoded BLAKE2b-512 digest of a file's content.
func HashFile(filePath string) (string, error) {
	file, err := os.Open(filepath.Clean(filePath))

	if err != nil {
		return "", err
	}

	defer file.Close()

	hash, err := blake2b.New512(nil)

	if err != nil {
		return "", err
	}

	if _, err = io.Copy(hash, file); err != nil {
		return "", err
	}

	// 64 bytes of digest is 87 to 88 characters of base58 against 128 of hex
	return base58.Encode(hash.Sum(nil)), nil
}
