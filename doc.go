// Package zipatch reads and applies FFXIV-Classic ZiPatch binary patch
// files.
//
// A ZiPatch stream is a 12-byte signature followed by PNG-style framed
// blocks:
//
//	[size:u32][type:4 ASCII bytes][payload:size bytes][crc:u32]
//
// Blocks describe directory creation and removal (ADIR/DELD), chunked
// file content changes (ETRY), and informational metadata (FHDR/APLY).
// Entry chunks are optionally zlib-compressed and the reassembled file
// content is verified against a declared SHA-1 hash.
//
// The Patcher type drives a stream from start to finish, dispatching
// each block to its decoder and, when extraction is enabled, applying
// its effects under an output root. All multi-byte integers on the wire
// are big-endian.
package zipatch
