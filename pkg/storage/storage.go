package storage

import "errors"

// Sink persists one named blob per call. The extractor hands it every
// artifact it discovers; a failed Put is reported by the caller and never
// aborts the surrounding walk.
type Sink interface {
	Put(name string, data []byte) error
}

var (
	ErrCreateFailed = errors.New("unable to create output object")
	ErrWriteFailed  = errors.New("unable to write output object")
)

// Discard accepts every artifact and writes nothing. Used by inspect mode to
// traverse an image without touching the filesystem.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Put(name string, data []byte) error {
	return nil
}
