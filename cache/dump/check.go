package dump

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/metadata"
	"github.com/joshuapare/cachekit/cache/walker"
	"github.com/joshuapare/cachekit/internal/logging"
)

// CheckOptions controls Check.
type CheckOptions struct {
	// FailFast stops at the first damage instead of walking the whole array.
	FailFast bool
}

// Report is the result of Check.
type Report struct {
	Superblock metadata.Superblock `json:"superblock"`
	Status     string              `json:"status"`
	Damage     []damage.Damage     `json:"damage"`

	// Mappings counts the slots that could be read; Valid and Dirty count
	// those with the corresponding flag.
	Mappings uint64 `json:"mappings"`
	Valid    uint64 `json:"valid"`
	Dirty    uint64 `json:"dirty"`
	Skipped  uint64 `json:"skipped"`
}

// Clean reports whether no damage was found.
func (r *Report) Clean() bool { return len(r.Damage) == 0 }

// Count returns the number of reports of kind k.
func (r *Report) Count(k damage.Kind) int {
	n := 0
	for _, d := range r.Damage {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Check walks the store at path and records all damage without emitting
// anything. The returned error covers only failures to open or read; damage
// is in the Report.
func Check(path string, opts CheckOptions) (*Report, error) {
	md, err := metadata.Open(path)
	if err != nil {
		return nil, err
	}
	defer md.Close()
	return CheckMetadata(md, opts)
}

// CheckMetadata is Check for an already open store.
func CheckMetadata(md *metadata.Metadata, opts CheckOptions) (*Report, error) {
	r := &Report{Superblock: md.Superblock, Damage: []damage.Damage{}}

	var c damage.Collector
	var policy damage.Policy = &c
	if opts.FailFast {
		policy = damage.PolicyFunc(func(d damage.Damage) error {
			_ = c.Handle(d)
			return damage.Fatal.Handle(d)
		})
	}

	count := walker.VisitorFunc(func(m metadata.Mapping) error {
		r.Mappings++
		if m.Valid() {
			r.Valid++
			if m.Dirty() {
				r.Dirty++
			}
		}
		return nil
	})

	out, err := walker.Walk(md.Mappings, count, policy)
	r.Status = out.Status.String()
	r.Skipped = out.Skipped
	r.Damage = append(r.Damage, c.Damage...)
	if err != nil && !errors.Is(err, damage.ErrMetadataDamaged) {
		return r, err
	}

	log.WithFields(logrus.Fields{
		logging.FieldEvent:   logging.EventCheck,
		logging.FieldDamage:  len(r.Damage),
		logging.FieldSkipped: r.Skipped,
	}).Debug("Check finished")
	return r, nil
}

// Info reads the superblock of the store at path.
func Info(path string) (metadata.Superblock, error) {
	md, err := metadata.Open(path)
	if err != nil {
		return metadata.Superblock{}, err
	}
	defer md.Close()
	return md.Superblock, nil
}
