package pfs

import (
	"fmt"
	"strings"
)

// DecodeVersion turns a section's four type-tagged version components into a
// filename-safe, dot-terminated fragment. Components are processed left to
// right: 'A' renders as uppercase hex, 'N' as decimal, a space or zero tag
// stops decoding, and any other tag is skipped with a warning. A section with
// no printable components yields "." so generated names keep their shape.
func DecodeVersion(types [4]byte, values [4]uint16) (string, []Warning) {
	var sb strings.Builder
	var warnings []Warning

loop:
	for i := 0; i < 4; i++ {
		switch types[i] {
		case 'A':
			fmt.Fprintf(&sb, "%X.", values[i])
		case 'N':
			fmt.Fprintf(&sb, "%d.", values[i])
		case ' ', 0:
			break loop
		default:
			warnings = append(warnings, Warning{
				Code:    WarnUnknownVersionTag,
				Message: fmt.Sprintf("unknown version type %X, value %X", types[i], values[i]),
			})
		}
	}

	if sb.Len() == 0 {
		return ".", warnings
	}
	return sb.String(), warnings
}
