// Package emitter turns the dump call sequence into an external document.
//
// An Emitter knows nothing about caches. Its whole contract is the order of
// calls:
//
//	BeginSuperblock          once, first
//	BeginMappings            once
//	Mapping                  zero or more times, ascending cache block
//	EndMappings              once
//	EndSuperblock            once, last
//
// Guard enforces that order around any implementation.
package emitter

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Header is the superblock record that opens every document.
type Header struct {
	UUID          string `json:"uuid"`
	BlockSize     uint32 `json:"block_size"`
	NrCacheBlocks uint32 `json:"nr_cache_blocks"`
	Policy        string `json:"policy"`
	HintWidth     uint32 `json:"hint_width"`
}

// Emitter is the sink for one dump.
type Emitter interface {
	BeginSuperblock(h Header) error
	BeginMappings() error
	Mapping(cblock, oblock uint64, dirty bool) error
	EndMappings() error
	EndSuperblock() error
}

// Flusher is implemented by emitters that buffer output. Flush pushes what
// has been emitted so far to the destination, so an aborted dump leaves its
// partial output behind.
type Flusher interface {
	Flush() error
}

// Format names a document syntax.
type Format string

const (
	// FormatXML is the default, read by cache restore tooling.
	FormatXML Format = "xml"

	// FormatJSON is one JSON object with a streamed mappings array.
	FormatJSON Format = "json"

	// FormatText is an aligned, human-readable listing.
	FormatText Format = "text"
)

// Formats lists every supported format.
var Formats = []Format{FormatXML, FormatJSON, FormatText}

var (
	// ErrUnknownFormat is returned by New and ParseFormat.
	ErrUnknownFormat = errors.New("emitter: unknown format")
	// ErrEmitterIO matches every *IOError.
	ErrEmitterIO = errors.New("emitter: write failed")
	// ErrSequence is returned by Guard when calls arrive out of order.
	ErrSequence = errors.New("emitter: call out of sequence")
)

// IOError reports a failed write to the destination.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("emitter: %s: %v", e.Op, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// Is makes every IOError match ErrEmitterIO.
func (e *IOError) Is(target error) bool { return target == ErrEmitterIO }

func ioErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *IOError
	if errors.As(err, &ie) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// New returns an emitter of format f writing to w.
func New(f Format, w io.Writer) (Emitter, error) {
	if w == nil {
		return nil, errors.New("emitter: nil destination")
	}
	switch f {
	case FormatXML:
		return NewXML(w), nil
	case FormatJSON:
		return NewJSON(w), nil
	case FormatText:
		return NewText(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
