package pfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/beam-cloud/pfs/pkg/common"
	"github.com/beam-cloud/pfs/pkg/storage"
	"github.com/rs/zerolog/log"
)

const (
	// The wire format carries no depth bound, so one is imposed here to
	// keep recursion finite on corrupt or adversarial input.
	MaxNestingDepth = 32

	// Generated artifact names are bounds-checked against this limit
	// instead of silently overflowing a fixed buffer.
	MaxNameLength = 240
)

// Extractor walks a PFS image and hands every discovered artifact to its
// sink. A single Extractor may parse many nested containers; each recursive
// pass keeps its own section index and chunk accumulator, while emitted
// names, warnings and the manifest are shared across the whole extraction.
type Extractor struct {
	sink     storage.Sink
	manifest *Manifest
	warnings []Warning
}

func NewExtractor(sink storage.Sink) *Extractor {
	return &Extractor{
		sink:     sink,
		manifest: NewManifest(),
	}
}

// Manifest lists the artifacts emitted so far, ordered by name.
func (e *Extractor) Manifest() *Manifest {
	return e.manifest
}

// Warnings returns the non-fatal anomalies collected so far.
func (e *Extractor) Warnings() []Warning {
	return e.warnings
}

// Extract parses data as a top-level PFS image. A format error aborts the
// pass, but artifacts emitted before the error stay with the sink.
func (e *Extractor) Extract(data []byte) error {
	return e.extract(data, "", 0)
}

// ExtractSubsection parses data as a chunked subsection container and emits
// the reassembled payload under target. Normally this happens internally
// when Extract meets a nested container; it is exposed for callers that
// already hold a raw subsection blob.
func (e *Extractor) ExtractSubsection(data []byte, target string) error {
	if target == "" {
		return fmt.Errorf("subsection extraction requires a target name")
	}
	return e.extract(data, target, 0)
}

// extract is one parse pass over data. An empty target means normal mode:
// section blocks are emitted as individual artifacts and nested containers
// recursed into. A non-empty target means chunk-collection mode: data blocks
// are folded into a reassembler and a single payload is emitted at the end.
func (e *Extractor) extract(data []byte, target string, depth int) error {
	if depth > MaxNestingDepth {
		return common.ErrTooDeep
	}

	collect := target != ""
	label := "file"
	if collect {
		label = "subsection file"
	}

	if len(data) < common.PFSHeaderLength+common.PFSFooterLength {
		return common.ErrTooSmall
	}

	header, err := common.DecodeHeader(data[:common.PFSHeaderLength])
	if err != nil {
		return err
	}

	log.Debug().Msgf("PFS %s header: signature=%q version=%X dataSize=%X",
		label, header.Magic[:], header.HeaderVersion, header.DataSize)

	if !bytes.Equal(header.Magic[:], common.PFSHeaderMagic) {
		return common.ErrHeaderMagic
	}

	if header.HeaderVersion != common.PFSFormatVersion {
		return fmt.Errorf("%w: %X", common.ErrUnsupportedVersion, header.HeaderVersion)
	}

	if uint64(len(data)) < common.PFSHeaderLength+uint64(header.DataSize)+common.PFSFooterLength {
		return common.ErrTooSmall
	}

	footerStart := common.PFSHeaderLength + int(header.DataSize)
	footer, err := common.DecodeFooter(data[footerStart : footerStart+common.PFSFooterLength])
	if err != nil {
		return err
	}

	// The footer checksum has no published algorithm; it is surfaced but
	// never verified.
	log.Debug().Msgf("PFS %s footer: signature=%q checksum=%X dataSize=%X",
		label, footer.Magic[:], footer.Checksum, footer.DataSize)

	if !bytes.Equal(footer.Magic[:], common.PFSFooterMagic) {
		e.warn(Warning{
			Code:    WarnFooterMagicMismatch,
			Message: fmt.Sprintf("invalid PFS footer signature %q", footer.Magic[:]),
		})
	}

	if footer.DataSize != header.DataSize {
		e.warn(Warning{
			Code: WarnDataSizeMismatch,
			Message: fmt.Sprintf("data size mismatch between PFS header (%X) and PFS footer (%X)",
				header.DataSize, footer.DataSize),
		})
	}

	return e.walk(data, footerStart, target, depth)
}

// walk iterates section headers across the validated data region. The format
// has no section count; each header's block sizes are the only way to find
// the next one. Any span that would escape the data region stops the pass
// with ErrTruncated.
func (e *Extractor) walk(data []byte, dataEnd int, target string, depth int) error {
	collect := target != ""
	label := "section"
	if collect {
		label = "subsection"
	}

	var chunks reassembler
	offset := common.PFSHeaderLength
	sectionNum := 0

	for offset < dataEnd {
		if dataEnd-offset < common.PFSSectionHeaderLength {
			return common.ErrTruncated
		}

		sectionHeader, err := common.DecodeSectionHeader(data[offset : offset+common.PFSSectionHeaderLength])
		if err != nil {
			return err
		}

		if uint64(offset)+sectionHeader.TotalSize() > uint64(dataEnd) {
			return common.ErrTruncated
		}

		log.Debug().Msgf("PFS %s header #%d: guid1=%s guid2=%s dataSize=%X dataSignatureSize=%X metadataSize=%X metadataSignatureSize=%X",
			label, sectionNum, sectionHeader.GUID1, sectionHeader.GUID2,
			sectionHeader.DataSize, sectionHeader.DataSignatureSize,
			sectionHeader.MetadataSize, sectionHeader.MetadataSignatureSize)

		version, versionWarnings := DecodeVersion(sectionHeader.VersionTypes, sectionHeader.Versions)
		for _, w := range versionWarnings {
			e.warn(w)
		}

		blockStart := offset + common.PFSSectionHeaderLength
		dataBlock := data[blockStart : blockStart+int(sectionHeader.DataSize)]

		if collect {
			if err := collectChunk(&chunks, sectionHeader, dataBlock); err != nil {
				return err
			}
		} else {
			e.route(sectionHeader, dataBlock, data, blockStart, sectionNum, version, depth)
		}

		offset += int(sectionHeader.TotalSize())
		sectionNum++
	}

	if collect {
		log.Debug().Msgf("reassembling %d chunks into %s", chunks.len(), target)
		e.emit(target, chunks.assemble())
	}

	return nil
}

// route handles one section in normal mode: emit the raw blocks, and if the
// data block is itself a PFS container, recurse into it as a subsection. The
// raw data is always written before the recursive attempt, so it survives a
// nested parse failure.
func (e *Extractor) route(sectionHeader *common.PFSSectionHeader, dataBlock []byte, data []byte, blockStart int, sectionNum int, version string, depth int) {
	if sectionHeader.DataSize > 0 {
		e.emit(fmt.Sprintf("section_%d_%sdata", sectionNum, version), dataBlock)

		if common.IsContainer(dataBlock) {
			payloadName := fmt.Sprintf("section_%d_%spayload", sectionNum, version)
			if err := e.extract(dataBlock, payloadName, depth+1); err != nil {
				log.Error().Err(err).Msgf("nested container in section %d could not be extracted", sectionNum)
			}
		}
	}

	next := blockStart + int(sectionHeader.DataSize)
	if sectionHeader.DataSignatureSize > 0 {
		e.emit(fmt.Sprintf("section_%d_%ssign", sectionNum, version), data[next:next+int(sectionHeader.DataSignatureSize)])
	}

	next += int(sectionHeader.DataSignatureSize)
	if sectionHeader.MetadataSize > 0 {
		e.emit(fmt.Sprintf("section_%d_%smeta", sectionNum, version), data[next:next+int(sectionHeader.MetadataSize)])
	}

	next += int(sectionHeader.MetadataSize)
	if sectionHeader.MetadataSignatureSize > 0 {
		e.emit(fmt.Sprintf("section_%d_%smtsg", sectionNum, version), data[next:next+int(sectionHeader.MetadataSignatureSize)])
	}
}

// collectChunk folds one subsection data block into the pass's reassembler.
// Signature and metadata blocks are never inspected in this mode. Each chunk
// carries an undocumented leading region; the order number inside it is the
// only field needed, and everything past the region is payload.
func collectChunk(chunks *reassembler, sectionHeader *common.PFSSectionHeader, dataBlock []byte) error {
	if sectionHeader.DataSize == 0 {
		return nil
	}

	if int(sectionHeader.DataSize) < common.ChunkLeadingLength {
		return common.ErrTruncated
	}

	orderNum := binary.LittleEndian.Uint16(dataBlock[common.ChunkOrderOffset:])
	chunks.add(orderNum, dataBlock[common.ChunkLeadingLength:])
	return nil
}

// emit hands one artifact to the sink. Sink failures are reported and
// swallowed so the walk continues; partial extraction is an accepted
// outcome.
func (e *Extractor) emit(name string, data []byte) {
	if len(name) > MaxNameLength {
		log.Error().Err(common.ErrNameTooLong).Msgf("skipping artifact with %d byte name", len(name))
		return
	}

	if err := e.sink.Put(name, data); err != nil {
		log.Error().Err(err).Msgf("unable to write %s", name)
		return
	}

	e.manifest.Add(name, len(data))
}

func (e *Extractor) warn(w Warning) {
	e.warnings = append(e.warnings, w)
	log.Warn().Str("code", string(w.Code)).Msg(w.Message)
}
