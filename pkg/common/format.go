package common

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Dell PFS containers are framed by an 8 byte header signature and an 8 byte
// footer signature. All multi-byte integers are little-endian.
var (
	PFSHeaderMagic = []byte("PFS.HDR.")
	PFSFooterMagic = []byte("PFS.FTR.")
)

const (
	PFSHeaderLength        = 16
	PFSFooterLength        = 16
	PFSSectionHeaderLength = 72

	PFSFormatVersion uint32 = 1

	// Subsection chunks carry an undocumented leading region before the
	// actual payload bytes. The only field needed for reassembly is the
	// chunk order number inside it.
	ChunkLeadingLength = 0x248
	ChunkOrderOffset   = 0x3E
)

type PFSHeader struct {
	Magic         [8]byte
	HeaderVersion uint32
	DataSize      uint32
}

type PFSFooter struct {
	DataSize uint32
	Checksum uint32
	Magic    [8]byte
}

// GUID is the EFI-style 16 byte identifier used to tag PFS sections. It is
// opaque to the extractor and only ever formatted for diagnostics.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

func (g GUID) String() string {
	return fmt.Sprintf("%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		g.Data1, g.Data2, g.Data3,
		g.Data4[0], g.Data4[1], g.Data4[2], g.Data4[3],
		g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7])
}

// PFSSectionHeader is the fixed-size header that precedes every section's
// four variable-length blocks (data, data signature, metadata, metadata
// signature). There is no section count field anywhere in the format; the
// only way to enumerate sections is to walk headers back to back using the
// declared block sizes.
type PFSSectionHeader struct {
	GUID1                 GUID
	HeaderVersion         uint32
	VersionTypes          [4]byte
	Versions              [4]uint16
	Reserved              uint64
	DataSize              uint32
	DataSignatureSize     uint32
	MetadataSize          uint32
	MetadataSignatureSize uint32
	GUID2                 GUID
}

// BlocksSize returns the combined size of the section's four variable-length
// blocks. Widened to uint64 so the sum cannot wrap on adversarial sizes.
func (h *PFSSectionHeader) BlocksSize() uint64 {
	return uint64(h.DataSize) + uint64(h.DataSignatureSize) +
		uint64(h.MetadataSize) + uint64(h.MetadataSignatureSize)
}

// TotalSize is the full span of the section, header included.
func (h *PFSSectionHeader) TotalSize() uint64 {
	return PFSSectionHeaderLength + h.BlocksSize()
}

func DecodeHeader(headerBytes []byte) (*PFSHeader, error) {
	header := new(PFSHeader)
	buf := bytes.NewBuffer(headerBytes)
	if err := binary.Read(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	return header, nil
}

func DecodeFooter(footerBytes []byte) (*PFSFooter, error) {
	footer := new(PFSFooter)
	buf := bytes.NewBuffer(footerBytes)
	if err := binary.Read(buf, binary.LittleEndian, footer); err != nil {
		return nil, err
	}
	return footer, nil
}

func DecodeSectionHeader(sectionBytes []byte) (*PFSSectionHeader, error) {
	sectionHeader := new(PFSSectionHeader)
	buf := bytes.NewBuffer(sectionBytes)
	if err := binary.Read(buf, binary.LittleEndian, sectionHeader); err != nil {
		return nil, err
	}
	return sectionHeader, nil
}

// IsContainer reports whether the buffer starts with the PFS header magic.
func IsContainer(data []byte) bool {
	return len(data) >= len(PFSHeaderMagic) && bytes.Equal(data[:len(PFSHeaderMagic)], PFSHeaderMagic)
}
