package pfs

// WarningCode identifies a non-fatal anomaly found while parsing an image.
// Warnings are reported and collected but never change control flow.
type WarningCode string

const (
	WarnFooterMagicMismatch WarningCode = "footer_magic_mismatch"
	WarnDataSizeMismatch    WarningCode = "data_size_mismatch"
	WarnUnknownVersionTag   WarningCode = "unknown_version_tag"
)

type Warning struct {
	Code    WarningCode
	Message string
}
