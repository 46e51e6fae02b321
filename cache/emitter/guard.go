package emitter

import "fmt"

type stage int

const (
	stageStart stage = iota
	stageSuperblock
	stageMappings
	stageMappingsDone
	stageDone
)

func (s stage) String() string {
	return [...]string{"start", "superblock", "mappings", "mappings closed", "done"}[s]
}

// Guard wraps an Emitter and rejects calls that break the documented order,
// including mappings that do not strictly ascend.
type Guard struct {
	inner Emitter
	stage stage
	last  uint64
	any   bool
}

// NewGuard wraps e.
func NewGuard(e Emitter) *Guard {
	return &Guard{inner: e}
}

func (g *Guard) advance(op string, from, to stage) error {
	if g.stage != from {
		return fmt.Errorf("%w: %s after %s", ErrSequence, op, g.stage)
	}
	g.stage = to
	return nil
}

func (g *Guard) BeginSuperblock(h Header) error {
	if err := g.advance("begin superblock", stageStart, stageSuperblock); err != nil {
		return err
	}
	return g.inner.BeginSuperblock(h)
}

func (g *Guard) BeginMappings() error {
	if err := g.advance("begin mappings", stageSuperblock, stageMappings); err != nil {
		return err
	}
	return g.inner.BeginMappings()
}

func (g *Guard) Mapping(cblock, oblock uint64, dirty bool) error {
	if g.stage != stageMappings {
		return fmt.Errorf("%w: mapping after %s", ErrSequence, g.stage)
	}
	if g.any && cblock <= g.last {
		return fmt.Errorf("%w: cache block %d after %d", ErrSequence, cblock, g.last)
	}
	g.any, g.last = true, cblock
	return g.inner.Mapping(cblock, oblock, dirty)
}

func (g *Guard) EndMappings() error {
	if err := g.advance("end mappings", stageMappings, stageMappingsDone); err != nil {
		return err
	}
	return g.inner.EndMappings()
}

func (g *Guard) EndSuperblock() error {
	if err := g.advance("end superblock", stageMappingsDone, stageDone); err != nil {
		return err
	}
	return g.inner.EndSuperblock()
}

// Flush flushes the wrapped emitter when it buffers.
func (g *Guard) Flush() error {
	if f, ok := g.inner.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Done reports whether EndSuperblock has been accepted.
func (g *Guard) Done() bool { return g.stage == stageDone }
