// Package contenthash computes the content digests used for change
// detection and embedding-cache keys. Both the document tracker and the
// embedding cache key off these digests, so the same text always maps to
// the same key no matter which file it came from.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Text returns the SHA-256 hex digest of the exact text.
// Whitespace and formatting are significant: any change to the text
// produces a different digest.
func Text(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// File returns the SHA-256 hex digest of the file's bytes along with its
// size. The file is streamed, not loaded whole.
//
// On an unreadable file it returns an empty digest and the error; callers
// must treat an empty digest as "not verifiable" and reprocess rather than
// skip.
func File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), info.Size(), nil
}
