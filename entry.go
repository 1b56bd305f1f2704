package zipatch

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Entry is a decoded ETRY block: one target file's content change as
// an ordered list of chunks. Chunk order is significant; the written
// output is the concatenation of each chunk's decoded bytes in order.
type Entry struct {
	// Path is the target file path, relative to the output root.
	Path string

	// Chunks are the content chunks in application order.
	Chunks []Chunk
}

// DecodeEntry decodes an ETRY payload: a length-prefixed path, a
// big-endian u32 chunk count, then that many chunks. Any shortfall at
// any step aborts decoding of the whole entry.
func DecodeEntry(payload []byte) (*Entry, error) {
	r := newByteReader(payload)

	p, err := readPath(r)
	if err != nil {
		return nil, err
	}

	count, err := r.u32("chunk count")
	if err != nil {
		return nil, err
	}

	e := &Entry{Path: p}
	for i := uint32(0); i < count; i++ {
		c, err := decodeChunk(r)
		if err != nil {
			return nil, fmt.Errorf("chunk %d of %q: %w", i, p, err)
		}
		e.Chunks = append(e.Chunks, c)
	}
	return e, nil
}

// Mode returns the whole-entry operation mode. The format takes it
// from the first chunk; later chunks contribute only data. An entry
// with no chunks has no operation and reports ModeUnknown.
func (e *Entry) Mode() ChunkMode {
	if len(e.Chunks) == 0 {
		return ModeUnknown
	}
	return e.Chunks[0].Mode
}

// applyEntry applies a decoded entry under the output root.
//
// Delete-mode entries remove the target (missing target is a no-op)
// and consume no chunk data. All other modes write each chunk's
// decoded bytes in order to the target file, then verify the SHA-1 of
// the written stream against the last chunk's declared hash.
func (p *Patcher) applyEntry(e *Entry) error {
	target, err := resolvePath(p.root, e.Path)
	if err != nil {
		return err
	}

	if e.Mode() == ModeDelete {
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", e.Path, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent directories for %s: %w", e.Path, err)
	}

	switch e.Mode() {
	case ModeModify:
		p.checkPrevHash(e, target)
	case ModeAdd:
		if _, err := os.Stat(target); err == nil {
			p.log().Debug("overwriting existing file", "path", e.Path)
		}
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.Path, err)
	}

	// Hash the bytes as written; the final digest must match the last
	// chunk's declared post-state hash.
	hasher := sha1.New()
	w := io.MultiWriter(out, hasher)
	var written uint64

	for i := range e.Chunks {
		n, err := p.writeChunk(w, e, i)
		if err != nil {
			out.Close()
			return err
		}
		written += n
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", e.Path, err)
	}

	// An entry with no chunks declares nothing to verify against.
	if len(e.Chunks) == 0 {
		return nil
	}

	// A zero expected hash together with nothing written means the
	// entry declares an empty file; anything else must match. Content
	// is already on disk by now, so a failure here is detected only
	// after writing and the truncated output is not rolled back.
	last := e.Chunks[len(e.Chunks)-1]
	if written == 0 && zeroHash(last.NextHash) {
		return nil
	}
	if !bytes.Equal(hasher.Sum(nil), last.NextHash[:]) {
		return fmt.Errorf("%w: %s: got %x, want %x", ErrHashMismatch, e.Path, hasher.Sum(nil), last.NextHash)
	}
	return nil
}

// writeChunk writes one chunk's decoded bytes and reports how many
// bytes it contributed to the output stream.
func (p *Patcher) writeChunk(w io.Writer, e *Entry, i int) (uint64, error) {
	c := &e.Chunks[i]
	if len(c.Data) == 0 {
		return 0, nil
	}

	var data []byte
	switch c.Compression {
	case CompressionNone:
		data = c.Data
	case CompressionZlib:
		inflated, err := c.inflate()
		if err != nil {
			// Some patches carry chunks flagged zlib whose data is
			// not a valid stream; the raw bytes are the content.
			p.log().Warn("chunk inflate failed, writing raw bytes",
				"path", e.Path, "chunk", i, "error", err)
			data = c.Data
		} else {
			data = inflated
		}
	default:
		return 0, fmt.Errorf("%w: %s chunk %d", ErrUnknownCompression, e.Path, i)
	}

	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("write %s: %w", e.Path, err)
	}
	return uint64(len(data)), nil
}

// checkPrevHash verifies the existing target content against the first
// chunk's declared prior hash. The check is advisory: a mismatch or an
// unreadable target is logged and application proceeds. An all-zero
// prior hash means no prior content is expected and skips the check.
func (p *Patcher) checkPrevHash(e *Entry, target string) {
	prev := e.Chunks[0].PrevHash
	if zeroHash(prev) {
		return
	}

	current, err := os.ReadFile(target)
	if err != nil {
		p.log().Warn("cannot read existing file for prior hash check",
			"path", e.Path, "error", err)
		return
	}
	sum := sha1.Sum(current)
	if sum != prev {
		p.log().Warn("existing content does not match declared prior hash",
			"path", e.Path, "got", fmt.Sprintf("%x", sum), "want", fmt.Sprintf("%x", prev))
	}
}
