package dump

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/emitter"
	"github.com/joshuapare/cachekit/cache/metadata"
	"github.com/joshuapare/cachekit/cache/walker"
	"github.com/joshuapare/cachekit/internal/logging"
)

var log = logging.For("dump")

// Result describes a dump that ran, whether or not it succeeded.
type Result struct {
	Superblock metadata.Superblock
	Outcome    walker.Outcome

	// Emitted and Dirty count the mapping records written.
	Emitted uint64
	Dirty   uint64
}

// Dump writes the store at path to opts.Output. The store is opened before
// the destination, so a store that cannot be opened leaves no output file.
func Dump(path string, opts Options) (res Result, err error) {
	md, err := metadata.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer md.Close()

	if opts.toStdout() {
		return dump(path, md, os.Stdout, opts)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return Result{Superblock: md.Superblock}, &emitter.IOError{Op: "create " + opts.Output, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &emitter.IOError{Op: "close " + opts.Output, Err: cerr}
		}
	}()
	return dump(path, md, f, opts)
}

// DumpTo writes the store at path to w. opts.Output is ignored.
func DumpTo(path string, w io.Writer, opts Options) (Result, error) {
	md, err := metadata.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer md.Close()
	return dump(path, md, w, opts)
}

func dump(path string, md *metadata.Metadata, w io.Writer, opts Options) (Result, error) {
	e, err := emitter.New(opts.format(), w)
	if err != nil {
		return Result{Superblock: md.Superblock}, err
	}

	entry := log.WithFields(logrus.Fields{
		logging.FieldEvent:  logging.EventDump,
		logging.FieldPath:   path,
		logging.FieldOutput: opts.Output,
		logging.FieldFormat: string(opts.format()),
		logging.FieldRepair: opts.Repair,
	})
	entry.Debug("Starting dump")

	policy := damage.ForRepair(opts.Repair)
	if opts.Repair {
		policy = damage.Logged(policy, entry)
	}

	res, err := Run(md, e, policy)
	if err != nil {
		entry.WithFields(logrus.Fields{
			logging.FieldEvent:   logging.EventAbort,
			logging.FieldEmitted: res.Emitted,
		}).Debugf("Dump %s", res.Outcome.Status)
		return res, logging.ErrorWithFields("dump", logrus.Fields{
			logging.FieldPath:    path,
			logging.FieldOutput:  opts.Output,
			logging.FieldFormat:  string(opts.format()),
			logging.FieldRepair:  opts.Repair,
			logging.FieldEmitted: res.Emitted,
			logging.FieldSkipped: res.Outcome.Skipped,
		}, "%w", err)
	}

	entry.WithFields(logrus.Fields{
		logging.FieldEvent:   logging.EventComplete,
		logging.FieldEmitted: res.Emitted,
		logging.FieldSkipped: res.Outcome.Skipped,
		logging.FieldDamage:  res.Outcome.Damaged,
	}).Debug("Dump finished")
	if res.Outcome.Damaged > 0 {
		entry.WithFields(logrus.Fields{
			logging.FieldDamage:  res.Outcome.Damaged,
			logging.FieldSkipped: res.Outcome.Skipped,
		}).Warn("Skipped damaged mappings")
	}
	return res, nil
}

// Header is the emitter header for sb.
func Header(sb metadata.Superblock) emitter.Header {
	return emitter.Header{
		UUID:          sb.UUID,
		BlockSize:     sb.DataBlockSize,
		NrCacheBlocks: sb.CacheBlocks,
		Policy:        sb.PolicyName,
		HintWidth:     sb.PolicyHintSize,
	}
}

// Run emits md to e, walking its mappings under p. On failure the emitter is
// flushed but the document is left unterminated.
func Run(md *metadata.Metadata, e emitter.Emitter, p damage.Policy) (Result, error) {
	res := Result{Superblock: md.Superblock}
	g := emitter.NewGuard(e)

	if err := g.BeginSuperblock(Header(md.Superblock)); err != nil {
		return res, err
	}
	if err := g.BeginMappings(); err != nil {
		return res, err
	}

	proj := walker.NewProjector(g)
	out, err := walker.Walk(md.Mappings, proj, p)
	res.Outcome = out
	res.Emitted = proj.Emitted()
	res.Dirty = proj.Dirty()
	if err != nil {
		if ferr := g.Flush(); ferr != nil {
			log.WithError(ferr).Warn("Could not flush partial output")
		}
		return res, err
	}

	if err := g.EndMappings(); err != nil {
		return res, err
	}
	if err := g.EndSuperblock(); err != nil {
		return res, err
	}
	return res, nil
}

// String summarises r in one line.
func (r Result) String() string {
	return fmt.Sprintf("%s: %d mappings emitted (%d dirty), %d cache blocks skipped",
		r.Outcome.Status, r.Emitted, r.Dirty, r.Outcome.Skipped)
}
