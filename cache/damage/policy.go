package damage

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/cachekit/internal/logging"
)

// ErrMetadataDamaged matches every *Error.
var ErrMetadataDamaged = errors.New("metadata contains errors")

// Error aborts a walk on the first damage seen under the Fatal policy.
type Error struct {
	Damage Damage
}

func (e *Error) Error() string {
	return fmt.Sprintf("metadata contains errors (%s); run 'cachectl check' for details, "+
		"or perhaps you wanted to run with --repair", e.Damage)
}

// Is makes every Error match ErrMetadataDamaged.
func (e *Error) Is(target error) bool { return target == ErrMetadataDamaged }

// Policy decides what happens to one damage report. A nil return lets the
// walk continue; a non-nil error aborts it immediately.
type Policy interface {
	Handle(d Damage) error
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(d Damage) error

// Handle calls f(d).
func (f PolicyFunc) Handle(d Damage) error { return f(d) }

// Ignore skips all damage. Used in repair mode.
var Ignore Policy = PolicyFunc(func(Damage) error { return nil })

// Fatal aborts on any damage. The default, so that output from unverified
// metadata always requires an explicit opt-in.
var Fatal Policy = PolicyFunc(func(d Damage) error {
	switch d.Kind {
	case MissingMappings, InvalidMapping:
		return &Error{Damage: d}
	default:
		return fmt.Errorf("unclassified damage %v: %w", d, ErrMetadataDamaged)
	}
})

// ForRepair returns Ignore when repair is set and Fatal otherwise.
func ForRepair(repair bool) Policy {
	if repair {
		return Ignore
	}
	return Fatal
}

// Collector records every report and never aborts.
type Collector struct {
	Damage []Damage
}

// Handle appends d.
func (c *Collector) Handle(d Damage) error {
	c.Damage = append(c.Damage, d)
	return nil
}

// Count returns the number of reports of kind k.
func (c *Collector) Count(k Kind) int {
	n := 0
	for _, d := range c.Damage {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Logged logs each report on entry at debug level, then defers to p. Skips
// are expected in repair mode, so callers summarise them once instead of
// warning per report.
func Logged(p Policy, entry *logrus.Entry) Policy {
	return PolicyFunc(func(d Damage) error {
		fields := logrus.Fields{
			logging.FieldEvent:  logging.EventDamage,
			logging.FieldKind:   d.Kind.String(),
			logging.FieldBlock:  d.Block,
			logging.FieldReason: d.Reason,
		}
		if d.Range.Len() == 1 {
			fields[logging.FieldCBlock] = d.Range.Begin
		} else {
			fields[logging.FieldCBlockBegin] = d.Range.Begin
			fields[logging.FieldCBlockEnd] = d.Range.End
		}
		entry.WithFields(fields).Debug("Skipping damaged mappings")
		return p.Handle(d)
	})
}
