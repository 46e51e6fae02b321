package dump

import "github.com/joshuapare/cachekit/cache/emitter"

// StdoutPath selects standard output as the destination.
const StdoutPath = "-"

// Options controls a dump.
type Options struct {
	// Repair skips damaged mappings instead of aborting on the first one.
	// Default: false
	Repair bool

	// Output is the destination file, created or truncated. StdoutPath or
	// the empty string writes to standard output.
	// Default: StdoutPath
	Output string

	// Format is the document syntax.
	// Default: emitter.FormatXML
	Format emitter.Format
}

// DefaultOptions returns a strict XML dump to standard output.
func DefaultOptions() Options {
	return Options{
		Repair: false,
		Output: StdoutPath,
		Format: emitter.FormatXML,
	}
}

func (o Options) toStdout() bool {
	return o.Output == "" || o.Output == StdoutPath
}

func (o Options) format() emitter.Format {
	if o.Format == "" {
		return emitter.FormatXML
	}
	return o.Format
}
