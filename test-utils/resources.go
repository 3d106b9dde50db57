package test_utils

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// WriteTempAsset writes content into a fresh temp dir and returns the file
// path. The dir is removed when the test finishes
func WriteTempAsset(t *testing.T, name string, content []byte) string {
	dir, err := os.MkdirTemp("", "asset-")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, content, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// ReadAssetB64 reads a file and returns its content encoded the way the
// object store binding expects it
func ReadAssetB64(t *testing.T, path string) []byte {
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return []byte(base64.StdEncoding.EncodeToString(content))
}

// GetChecksum returns the SHA-256 checksum of the specified file
func GetChecksum(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hasher := sha256.New()
	_, err = io.Copy(hasher, file)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
