package zipatch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// maxPathLen is the format's limit on a length-prefixed path field.
// A larger length is rejected before any allocation: the field is
// almost certainly corrupt, and trusting it would let a hostile patch
// demand an arbitrary buffer.
const maxPathLen = 1024

// readPath decodes a length-prefixed path from a block payload:
// a big-endian u32 length followed by that many path bytes.
func readPath(r *byteReader) (string, error) {
	size, err := r.u32("path length")
	if err != nil {
		return "", err
	}
	if size > maxPathLen {
		return "", fmt.Errorf("%w: %d bytes", ErrPathTooLong, size)
	}
	raw, err := r.take(int(size), "path")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// resolvePath joins a decoded patch path with the output root,
// normalizing separators and rejecting anything that would resolve
// outside the root.
func resolvePath(root, name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}
