package zipatch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirectoryOp is a decoded ADIR or DELD payload: a single
// length-prefixed path relative to the output root.
type DirectoryOp struct {
	Path string
}

// DecodeDirectoryOp decodes the shared ADIR/DELD payload layout.
func DecodeDirectoryOp(payload []byte) (DirectoryOp, error) {
	r := newByteReader(payload)
	p, err := readPath(r)
	if err != nil {
		return DirectoryOp{}, err
	}
	return DirectoryOp{Path: p}, nil
}

// applyAddDirectory creates the directory chain for an ADIR block.
// An already existing directory is success.
func (p *Patcher) applyAddDirectory(op DirectoryOp) error {
	target, err := resolvePath(p.root, op.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", op.Path, err)
	}
	return nil
}

// applyDeleteDirectory removes the DELD target under the output root.
// A missing target is a no-op, a regular file is deleted, and a
// directory is removed recursively, contents first.
func (p *Patcher) applyDeleteDirectory(op DirectoryOp) error {
	target, err := resolvePath(p.root, op.Path)
	if err != nil {
		return err
	}
	if err := removeRecursive(target); err != nil {
		return fmt.Errorf("delete %s: %w", op.Path, err)
	}
	return nil
}

// removeRecursive deletes path depth-first. Recursion depth is bounded
// by filesystem depth. "Not found" at any level is ignored: the entry
// may have been removed by an earlier block.
func removeRecursive(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if !info.IsDir() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, entry := range entries {
		if err := removeRecursive(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
