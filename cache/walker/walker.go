package walker

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/metadata"
	"github.com/joshuapare/cachekit/internal/format"
	"github.com/joshuapare/cachekit/internal/logging"
)

var log = logging.For("walker")

// Status says how a walk ended.
type Status int

const (
	// Completed: every slot was visited and no damage was seen.
	Completed Status = iota
	// CompletedWithSkips: the walk finished, but the policy let damage through.
	CompletedWithSkips
	// AbortedOnDamage: the policy stopped the walk; Outcome.Abort says where.
	AbortedOnDamage
	// AbortedOnError: the visitor failed, typically on a write.
	AbortedOnError
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case CompletedWithSkips:
		return "completed with skips"
	case AbortedOnDamage:
		return "aborted on damage"
	case AbortedOnError:
		return "aborted on error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome summarises a walk.
type Outcome struct {
	Status Status

	// Visited counts slots handed to the visitor; Skipped counts slots that
	// were not because they were missing or unrecoverable.
	Visited uint64
	Skipped uint64

	// Damaged counts damage reports made to the policy.
	Damaged int

	// Abort is the damage that stopped the walk under AbortedOnDamage.
	Abort *damage.Damage
}

// Finished reports whether every slot was accounted for.
func (o Outcome) Finished() bool {
	return o.Status == Completed || o.Status == CompletedWithSkips
}

// frame is a pending btree node with the array-index range it may hold.
type frame struct {
	loc    uint64
	lo, hi uint64
}

type walk struct {
	a      *metadata.MappingArray
	v      Visitor
	p      damage.Policy
	out    Outcome
	seen   *Bitmap
	origin map[uint64]uint64 // origin block -> first cblock mapping it
	next   uint64            // next array-block index expected from the btree
	nArr   uint64
}

// Walk visits slots 0 .. a.Len()-1 in ascending order. Damage is classified
// and handed to p; v sees every slot that could be decoded. The returned error
// is the policy's or the visitor's, and Outcome.Status says which.
func Walk(a *metadata.MappingArray, v Visitor, p damage.Policy) (Outcome, error) {
	w := &walk{
		a:      a,
		v:      v,
		p:      p,
		seen:   NewBitmap(a.DeviceBlocks()),
		origin: make(map[uint64]uint64),
		nArr:   a.NrArrayBlocks(),
	}

	log.WithFields(logrus.Fields{
		logging.FieldEvent:       logging.EventWalk,
		logging.FieldCacheBlocks: a.Len(),
		logging.FieldBlock:       a.Root(),
	}).Debug("Walking mapping array")

	if err := w.run(); err != nil {
		if w.out.Status != AbortedOnDamage {
			w.out.Status = AbortedOnError
		}
		return w.out, err
	}

	if w.out.Damaged > 0 {
		w.out.Status = CompletedWithSkips
	}
	log.WithFields(logrus.Fields{
		logging.FieldEvent:   logging.EventComplete,
		logging.FieldSkipped: w.out.Skipped,
		logging.FieldDamage:  w.out.Damaged,
	}).Debug("Walk finished")
	return w.out, nil
}

func (w *walk) run() error {
	if w.nArr == 0 {
		return nil
	}

	stack := []frame{{loc: w.a.Root(), lo: 0, hi: math.MaxUint64}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.lo >= w.nArr {
			continue
		}
		if w.seen.IsSet(f.loc) {
			if err := w.missingIndexes(f.lo, f.hi, f.loc, "btree node reached twice"); err != nil {
				return err
			}
			continue
		}
		w.seen.Set(f.loc)

		n, err := w.a.ReadNode(f.loc)
		if err != nil {
			if err := w.missingIndexes(f.lo, f.hi, f.loc, err.Error()); err != nil {
				return err
			}
			continue
		}

		nr := int(n.NrEntries)
		if n.IsInternal() {
			// Push right to left so children pop in ascending key order.
			for i := nr - 1; i >= 0; i-- {
				child := frame{loc: n.Value(i), lo: n.Key(i), hi: f.hi}
				if i == 0 {
					child.lo = f.lo
				}
				if i+1 < nr {
					child.hi = n.Key(i + 1)
				}
				stack = append(stack, child)
			}
			continue
		}

		for i := 0; i < nr; i++ {
			if err := w.arrayBlock(n.Key(i), n.Value(i), f.loc); err != nil {
				return err
			}
		}
	}

	if w.next < w.nArr {
		reason := fmt.Sprintf("array blocks %d..%d absent from btree", w.next, w.nArr-1)
		return w.missingIndexes(w.next, w.nArr, w.a.Root(), reason)
	}
	return nil
}

// missingIndexes reports the slots of array blocks [lo, hi) not yet walked
// as missing and moves past them.
func (w *walk) missingIndexes(lo, hi, block uint64, reason string) error {
	lo = max(lo, w.next)
	hi = min(hi, w.nArr)
	if lo >= hi {
		log.WithFields(logrus.Fields{
			logging.FieldBlock:  block,
			logging.FieldReason: reason,
		}).Debug("Damaged btree node covers no unwalked array blocks")
		return nil
	}
	w.next = hi

	begin, _ := w.a.BlockRange(lo)
	_, end := w.a.BlockRange(hi - 1)
	return w.missing(damage.Range{Begin: begin, End: end}, block, reason)
}

func (w *walk) missing(r damage.Range, block uint64, reason string) error {
	w.out.Skipped += r.Len()
	return w.report(damage.Missing(r, block, reason))
}

func (w *walk) report(d damage.Damage) error {
	w.out.Damaged++
	if err := w.p.Handle(d); err != nil {
		w.out.Status = AbortedOnDamage
		w.out.Abort = &d
		return err
	}
	return nil
}

// arrayBlock walks the slots of array block k, stored at loc and referenced
// from leaf.
func (w *walk) arrayBlock(k, loc, leaf uint64) error {
	if k < w.next || k >= w.nArr {
		log.WithFields(logrus.Fields{
			logging.FieldBlock: leaf,
			"index":            k,
		}).Debug("Ignoring out-of-sequence array block index")
		return nil
	}
	if k > w.next {
		reason := fmt.Sprintf("array blocks %d..%d absent from btree", w.next, k-1)
		if err := w.missingIndexes(w.next, k, leaf, reason); err != nil {
			return err
		}
	}
	w.next = k + 1

	begin, end := w.a.BlockRange(k)
	if w.seen.IsSet(loc) {
		return w.missing(damage.Range{Begin: begin, End: end}, loc, "array block reached twice")
	}
	w.seen.Set(loc)

	ab, err := w.a.ReadArrayBlock(loc)
	if err != nil {
		return w.missing(damage.Range{Begin: begin, End: end}, loc, err.Error())
	}

	for c := begin; c < end; c++ {
		if err := w.slot(&ab, c, c-begin, loc); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) slot(ab *format.ArrayBlock, cblock, index, loc uint64) error {
	e, ok := ab.Entry(int(index))
	if !ok {
		reason := fmt.Sprintf("slot %d beyond the block's %d entries", index, ab.NrEntries)
		w.out.Skipped++
		return w.report(damage.Invalid(cblock, loc, nil, reason))
	}

	m := metadata.Mapping{CBlock: cblock, OriginBlock: e.OriginBlock, Flags: e.Flags}
	if reason := w.check(m); reason != "" {
		entry := m
		if err := w.report(damage.Invalid(cblock, loc, &entry, reason)); err != nil {
			return err
		}
		m = m.Known()
	}

	w.out.Visited++
	return w.v.Visit(m)
}

// check returns why m is invalid, or "" when it is fine.
func (w *walk) check(m metadata.Mapping) string {
	var problems []string
	if unknown := m.Flags &^ format.MappingKnownFlags; unknown != 0 {
		problems = append(problems, fmt.Sprintf("unknown flag bits 0x%x", unknown))
	}
	if m.Dirty() && !m.Valid() {
		problems = append(problems, "dirty flag set on an unmapped slot")
	}
	if m.Valid() {
		if prev, dup := w.origin[m.OriginBlock]; dup {
			problems = append(problems, fmt.Sprintf("origin block %d already mapped by cache block %d",
				m.OriginBlock, prev))
		} else {
			w.origin[m.OriginBlock] = m.CBlock
		}
	}
	return strings.Join(problems, "; ")
}
