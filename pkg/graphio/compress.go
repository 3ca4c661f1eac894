package graphio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// CompressedExtension marks files stored with snappy block compression.
// Readers and writers in this package switch on it transparently.
const CompressedExtension = ".sz"

func isCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedExtension)
}

// readFileMaybeCompressed loads a file, decompressing it when the path
// carries the compressed extension
func readFileMaybeCompressed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if !isCompressed(path) {
		return data, nil
	}

	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return decoded, nil
}

// writeFileMaybeCompressed stores a buffer, compressing it when the path
// carries the compressed extension
func writeFileMaybeCompressed(path string, buf *bytes.Buffer) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data := buf.Bytes()
	if isCompressed(path) {
		data = snappy.Encode(nil, data)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
