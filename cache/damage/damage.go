// Package damage describes structural damage found while walking a mapping
// array, and the policies that decide whether a walk may continue past it.
//
// Classification and policy are separate: the walker reports every problem
// as a Damage value, and a Policy chooses to skip it (repair mode), abort on
// it (strict mode) or record it (check mode). The walk logic is the same in
// all three.
package damage

import (
	"fmt"

	"github.com/joshuapare/cachekit/cache/metadata"
)

// Kind tells the two damage variants apart.
type Kind int

const (
	// MissingMappings: a contiguous run of slots could not be read at all.
	MissingMappings Kind = iota + 1
	// InvalidMapping: one slot is readable but fails its own checks.
	InvalidMapping
)

func (k Kind) String() string {
	switch k {
	case MissingMappings:
		return "missing mappings"
	case InvalidMapping:
		return "invalid mapping"
	default:
		return fmt.Sprintf("damage(%d)", int(k))
	}
}

// MarshalText lets Kind appear by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Range is a half-open range of cache block addresses.
type Range struct {
	Begin uint64 `json:"begin"`
	End   uint64 `json:"end"`
}

// Len returns the number of addresses in r.
func (r Range) Len() uint64 {
	if r.End <= r.Begin {
		return 0
	}
	return r.End - r.Begin
}

// Contains reports whether cblock falls inside r.
func (r Range) Contains(cblock uint64) bool { return cblock >= r.Begin && cblock < r.End }

func (r Range) String() string {
	if r.Len() == 1 {
		return fmt.Sprintf("%d", r.Begin)
	}
	return fmt.Sprintf("[%d, %d)", r.Begin, r.End)
}

// Damage is one classified problem.
type Damage struct {
	Kind Kind `json:"kind"`

	// Range is the affected cache blocks. For InvalidMapping it is exactly
	// one address.
	Range Range `json:"range"`

	// Block is the metadata block the problem was found in.
	Block uint64 `json:"block"`

	// Mapping is the decoded slot of an InvalidMapping when its fields could
	// still be recovered; nil otherwise.
	Mapping *metadata.Mapping `json:"mapping,omitempty"`

	Reason string `json:"reason"`
}

// Missing builds a MissingMappings report.
func Missing(r Range, block uint64, reason string) Damage {
	return Damage{Kind: MissingMappings, Range: r, Block: block, Reason: reason}
}

// Invalid builds an InvalidMapping report for a single slot. m may be nil.
func Invalid(cblock, block uint64, m *metadata.Mapping, reason string) Damage {
	return Damage{
		Kind:    InvalidMapping,
		Range:   Range{Begin: cblock, End: cblock + 1},
		Block:   block,
		Mapping: m,
		Reason:  reason,
	}
}

// Recoverable reports whether the damaged slot still yields a usable mapping.
func (d Damage) Recoverable() bool { return d.Kind == InvalidMapping && d.Mapping != nil }

func (d Damage) String() string {
	what := "cache blocks"
	if d.Range.Len() == 1 {
		what = "cache block"
	}
	return fmt.Sprintf("%s at %s %s (metadata block %d): %s", d.Kind, what, d.Range, d.Block, d.Reason)
}
