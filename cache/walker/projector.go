package walker

import "github.com/joshuapare/cachekit/cache/metadata"

// Sink receives projected mappings. emitter.Emitter satisfies it.
type Sink interface {
	Mapping(cblock, oblock uint64, dirty bool) error
}

// Visitor receives every decoded slot, used or not.
type Visitor interface {
	Visit(m metadata.Mapping) error
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(m metadata.Mapping) error

// Visit calls f(m).
func (f VisitorFunc) Visit(m metadata.Mapping) error { return f(m) }

// Projector passes only VALID slots on to a Sink, as (cblock, oblock, dirty).
type Projector struct {
	sink    Sink
	emitted uint64
	dirty   uint64
}

// NewProjector returns a Projector writing to sink.
func NewProjector(sink Sink) *Projector {
	return &Projector{sink: sink}
}

// Visit forwards m when it is VALID.
func (p *Projector) Visit(m metadata.Mapping) error {
	if !m.Valid() {
		return nil
	}
	if err := p.sink.Mapping(m.CBlock, m.OriginBlock, m.Dirty()); err != nil {
		return err
	}
	p.emitted++
	if m.Dirty() {
		p.dirty++
	}
	return nil
}

// Emitted returns how many mappings reached the sink.
func (p *Projector) Emitted() uint64 { return p.emitted }

// Dirty returns how many emitted mappings were dirty.
func (p *Projector) Dirty() uint64 { return p.dirty }
