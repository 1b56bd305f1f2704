package zipatch

// Result identifies the kind of patch described by a file header.
type Result uint8

const (
	ResultUnknown Result = iota
	ResultDiff
	ResultHist
)

// resultTags maps known result kinds to their 4-byte wire tags.
var resultTags = [...][4]byte{
	ResultDiff: {'D', 'I', 'F', 'F'},
	ResultHist: {'H', 'I', 'S', 'T'},
}

// String returns the wire tag of the result kind, or "unknown".
func (r Result) String() string {
	switch r {
	case ResultDiff, ResultHist:
		tag := resultTags[r]
		return string(tag[:])
	default:
		return "unknown"
	}
}

// fileHeaderSize is the minimum FHDR payload: version, result tag, and
// three big-endian u32 counters.
const fileHeaderSize = 20

// FileHeader is the decoded FHDR payload. It is informational only;
// callers log or display it but nothing in the apply path depends on
// its counters.
type FileHeader struct {
	// Version is the raw 4-byte patch format version field.
	Version [4]byte

	// Result is the declared patch kind (diff or history).
	Result Result

	// EntryFiles, AddDirectories, and DeleteDirectories are the block
	// counts the patch declares for ETRY, ADIR, and DELD.
	EntryFiles        uint32
	AddDirectories    uint32
	DeleteDirectories uint32
}

// DecodeFileHeader decodes an FHDR payload. Payloads shorter than 20
// bytes fail with ErrUnexpectedEOF.
func DecodeFileHeader(payload []byte) (FileHeader, error) {
	r := newByteReader(payload)

	var h FileHeader
	version, err := r.take(4, "file header version")
	if err != nil {
		return FileHeader{}, err
	}
	copy(h.Version[:], version)

	tag, err := r.take(4, "file header result")
	if err != nil {
		return FileHeader{}, err
	}
	for kind := ResultDiff; kind <= ResultHist; kind++ {
		if resultTags[kind] == [4]byte(tag) {
			h.Result = kind
			break
		}
	}

	if h.EntryFiles, err = r.u32("entry file count"); err != nil {
		return FileHeader{}, err
	}
	if h.AddDirectories, err = r.u32("add directory count"); err != nil {
		return FileHeader{}, err
	}
	if h.DeleteDirectories, err = r.u32("delete directory count"); err != nil {
		return FileHeader{}, err
	}
	return h, nil
}

// applyInfoSize is the minimum APLY payload: three opaque 4-byte
// fields.
const applyInfoSize = 12

// ApplyInfo is the decoded APLY payload: three opaque values whose
// meaning the format does not define. Informational only.
type ApplyInfo struct {
	Fields [3]uint32
}

// DecodeApplyInfo decodes an APLY payload. Payloads shorter than 12
// bytes fail with ErrUnexpectedEOF.
func DecodeApplyInfo(payload []byte) (ApplyInfo, error) {
	r := newByteReader(payload)

	var info ApplyInfo
	for i := range info.Fields {
		v, err := r.u32("apply info field")
		if err != nil {
			return ApplyInfo{}, err
		}
		info.Fields[i] = v
	}
	return info, nil
}
