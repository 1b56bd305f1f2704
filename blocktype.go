package zipatch

// BlockType identifies the kind of a framed block. The set is closed:
// the file format defines exactly these tags, and any other tag is
// BlockUnknown (fatal at the stream level).
type BlockType uint8

const (
	// BlockUnknown is any unrecognized 4-byte tag.
	BlockUnknown BlockType = iota

	// BlockFileHeader (FHDR) carries patch-wide counters and the
	// patch result kind. Informational only.
	BlockFileHeader

	// BlockApplyInfo (APLY) carries three opaque 4-byte values.
	// Informational only.
	BlockApplyInfo

	// BlockFileSystem (APFS) is recognized but carries no effect;
	// its payload is read and discarded.
	BlockFileSystem

	// BlockEntry (ETRY) describes one target file's content change as
	// an ordered list of chunks.
	BlockEntry

	// BlockAddDirectory (ADIR) creates a directory under the output
	// root.
	BlockAddDirectory

	// BlockDeleteDirectory (DELD) removes a file or directory tree
	// under the output root.
	BlockDeleteDirectory
)

// blockTags maps each known BlockType to its wire tag. Indexed by
// BlockType; BlockUnknown has no tag.
var blockTags = [...][4]byte{
	BlockFileHeader:      {'F', 'H', 'D', 'R'},
	BlockApplyInfo:       {'A', 'P', 'L', 'Y'},
	BlockFileSystem:      {'A', 'P', 'F', 'S'},
	BlockEntry:           {'E', 'T', 'R', 'Y'},
	BlockAddDirectory:    {'A', 'D', 'I', 'R'},
	BlockDeleteDirectory: {'D', 'E', 'L', 'D'},
}

// ParseBlockTag maps a 4-byte wire tag to its BlockType. Unmatched
// tags map to BlockUnknown.
func ParseBlockTag(tag [4]byte) BlockType {
	for t := BlockFileHeader; t <= BlockDeleteDirectory; t++ {
		if blockTags[t] == tag {
			return t
		}
	}
	return BlockUnknown
}

// Tag returns the 4-byte wire tag for a known block type. The result
// for BlockUnknown is the zero tag.
func (t BlockType) Tag() [4]byte {
	if t == BlockUnknown || int(t) >= len(blockTags) {
		return [4]byte{}
	}
	return blockTags[t]
}

// String returns the wire tag as a string, or "????" for BlockUnknown.
func (t BlockType) String() string {
	if t == BlockUnknown || int(t) >= len(blockTags) {
		return "????"
	}
	tag := blockTags[t]
	return string(tag[:])
}
