package common

import "errors"

var (
	ErrTooSmall           = errors.New("input too small to hold a PFS image")
	ErrHeaderMagic        = errors.New("invalid PFS header signature")
	ErrUnsupportedVersion = errors.New("unknown PFS header version")
	ErrTruncated          = errors.New("section extends past the end of the data region")
	ErrTooDeep            = errors.New("nested PFS containers exceed the maximum depth")
	ErrNameTooLong        = errors.New("generated output name is too long")
)
