package emitter

import (
	"bufio"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Text writes an aligned listing for people. Numbers in the header and
// summary are digit-grouped; cache and origin block columns are not, so they
// stay easy to grep.
type Text struct {
	w      *bufio.Writer
	p      *message.Printer
	err    error
	mapped uint64
	dirty  uint64
}

// NewText returns a text emitter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{
		w: bufio.NewWriter(w),
		p: message.NewPrinter(language.English),
	}
}

func (t *Text) printf(op, format string, args ...interface{}) error {
	if t.err != nil {
		return t.err
	}
	if _, err := t.p.Fprintf(t.w, format, args...); err != nil {
		t.err = ioErr(op, err)
	}
	return t.err
}

func (t *Text) BeginSuperblock(h Header) error {
	uuid := h.UUID
	if uuid == "" {
		uuid = "(none)"
	}
	t.printf("begin superblock", "Superblock\n")
	t.printf("begin superblock", "  UUID:          %s\n", uuid)
	t.printf("begin superblock", "  Block size:    %d sectors\n", h.BlockSize)
	t.printf("begin superblock", "  Cache blocks:  %d\n", h.NrCacheBlocks)
	t.printf("begin superblock", "  Policy:        %s\n", h.Policy)
	return t.printf("begin superblock", "  Hint width:    %d bytes\n", h.HintWidth)
}

func (t *Text) BeginMappings() error {
	t.printf("begin mappings", "\nMappings\n")
	return t.printf("begin mappings", "  %12s  %16s  %s\n", "cache block", "origin block", "dirty")
}

func (t *Text) Mapping(cblock, oblock uint64, dirty bool) error {
	state := "no"
	if dirty {
		state = "yes"
		t.dirty++
	}
	t.mapped++
	return t.printf("mapping", "  %12s  %16s  %s\n", u64(cblock), u64(oblock), state)
}

func (t *Text) EndMappings() error {
	return t.printf("end mappings", "\n%d mapped, %d dirty\n", t.mapped, t.dirty)
}

func (t *Text) EndSuperblock() error {
	if t.err != nil {
		return t.err
	}
	return t.Flush()
}

// Flush writes buffered output to the destination.
func (t *Text) Flush() error {
	if err := t.w.Flush(); err != nil && t.err == nil {
		t.err = ioErr("flush", err)
	}
	return t.err
}
