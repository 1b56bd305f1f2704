package zipatch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"

	"github.com/meigma/zipatch/internal/sizing"
)

// BlockEvent describes one processed block. For ETRY blocks Entry
// carries the decoded entry; it is only valid for the duration of the
// callback.
type BlockEvent struct {
	// Type is the block's decoded type.
	Type BlockType

	// PayloadSize is the block's declared payload size in bytes.
	PayloadSize uint32

	// Entry is the decoded entry for BlockEntry events, nil otherwise.
	Entry *Entry
}

// BlockFunc receives a BlockEvent after each block is decoded and,
// when extraction is enabled, applied.
type BlockFunc func(BlockEvent)

// Patcher reads a ZiPatch stream block by block and optionally applies
// its effects under an output root.
//
// A Patcher holds no state across streams and no shared mutable state;
// distinct Patcher instances may run in parallel provided their output
// roots do not overlap. Within one stream processing is strictly
// sequential: later blocks may depend on directories created or files
// written by earlier blocks.
type Patcher struct {
	root        string
	extract     bool
	validateCRC bool
	logger      *slog.Logger
	onBlock     BlockFunc
}

// New creates a Patcher that applies patches under root. By default
// the Patcher extracts, does not validate block CRCs, and discards
// logs; see the Option functions.
func New(root string, opts ...Option) *Patcher {
	p := &Patcher{
		root:    root,
		extract: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Patcher) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.logger
}

// ApplyFile processes the patch file at path from start to finish and
// additionally checks that the stream accounts for the file's entire
// size, failing with ErrSizeMismatch otherwise.
func (p *Patcher) ApplyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open patch: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat patch: %w", err)
	}

	cr := &countingReader{r: f}
	if err := p.Apply(cr); err != nil {
		return err
	}

	consumed, err := sizing.ToInt64(cr.n, ErrSizeMismatch)
	if err != nil {
		return err
	}
	if consumed != info.Size() {
		return fmt.Errorf("%w: consumed %d of %d bytes", ErrSizeMismatch, consumed, info.Size())
	}
	return nil
}

// Apply processes one complete ZiPatch stream from r: it validates the
// magic, then reads and dispatches blocks until a clean end of stream.
// Callers that know the stream's total size should prefer ApplyFile.
func (p *Patcher) Apply(r io.Reader) error {
	if err := ReadMagic(r); err != nil {
		return err
	}

	for {
		h, err := ReadBlockHeader(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if h.Type == BlockUnknown {
			return fmt.Errorf("%w: %q", ErrUnknownBlockType, h.Tag[:])
		}

		size, err := sizing.ToInt(uint64(h.PayloadSize), ErrUnexpectedEOF)
		if err != nil {
			return err
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return fmt.Errorf("%w: reading %s payload (%d bytes)", ErrUnexpectedEOF, h.Type, h.PayloadSize)
		}

		if err := p.dispatch(h, payload); err != nil {
			return err
		}

		// The trailing CRC must be consumed to stay framed. The source
		// format never validates it, so checking is opt-in.
		var crc [4]byte
		if _, err := io.ReadFull(r, crc[:]); err != nil {
			return fmt.Errorf("%w: reading %s block crc", ErrUnexpectedEOF, h.Type)
		}
		if p.validateCRC {
			if err := verifyBlockCRC(h, payload, binary.BigEndian.Uint32(crc[:])); err != nil {
				return err
			}
		}
	}
}

// dispatch decodes one block's payload and, when extraction is
// enabled, applies its effects.
func (p *Patcher) dispatch(h BlockHeader, payload []byte) error {
	event := BlockEvent{Type: h.Type, PayloadSize: h.PayloadSize}

	switch h.Type {
	case BlockFileHeader:
		fh, err := DecodeFileHeader(payload)
		if err != nil {
			return err
		}
		p.log().Info("patch header",
			"result", fh.Result,
			"entries", fh.EntryFiles,
			"add_dirs", fh.AddDirectories,
			"delete_dirs", fh.DeleteDirectories)

	case BlockApplyInfo:
		info, err := DecodeApplyInfo(payload)
		if err != nil {
			return err
		}
		p.log().Debug("apply info",
			"f0", info.Fields[0], "f1", info.Fields[1], "f2", info.Fields[2])

	case BlockFileSystem:
		// Recognized but carries no effect; the payload is discarded.
		p.log().Debug("skipping block", "type", h.Type, "size", h.PayloadSize)

	case BlockAddDirectory:
		op, err := DecodeDirectoryOp(payload)
		if err != nil {
			return err
		}
		p.log().Debug("add directory", "path", op.Path)
		if p.extract {
			if err := p.applyAddDirectory(op); err != nil {
				return err
			}
		}

	case BlockDeleteDirectory:
		op, err := DecodeDirectoryOp(payload)
		if err != nil {
			return err
		}
		p.log().Debug("delete directory", "path", op.Path)
		if p.extract {
			if err := p.applyDeleteDirectory(op); err != nil {
				return err
			}
		}

	case BlockEntry:
		entry, err := DecodeEntry(payload)
		if err != nil {
			return err
		}
		event.Entry = entry
		p.log().Debug("entry", "path", entry.Path, "mode", entry.Mode(), "chunks", len(entry.Chunks))
		if p.extract {
			if err := p.applyEntry(entry); err != nil {
				return err
			}
		}
	}

	if p.onBlock != nil {
		p.onBlock(event)
	}
	return nil
}

// verifyBlockCRC checks a block's trailing CRC-32 (IEEE) over the type
// tag and payload, the span the PNG-style framing covers.
func verifyBlockCRC(h BlockHeader, payload []byte, declared uint32) error {
	crc := crc32.NewIEEE()
	crc.Write(h.Tag[:])
	crc.Write(payload)
	if got := crc.Sum32(); got != declared {
		return fmt.Errorf("%w: %s block: got %08x, want %08x", ErrCRCMismatch, h.Type, got, declared)
	}
	return nil
}

// countingReader wraps a reader and counts bytes read, so ApplyFile
// can confirm the stream accounts for the whole file.
type countingReader struct {
	r io.Reader
	n uint64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.n += uint64(n)
	}
	return n, err
}
