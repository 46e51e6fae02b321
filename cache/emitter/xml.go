package emitter

import (
	"encoding/xml"
	"io"
	"strconv"
)

// XML writes
//
//	<superblock uuid="" block_size="" nr_cache_blocks="" policy="" hint_width="">
//	  <mappings>
//	    <mapping cache_block="" origin_block="" dirty=""></mapping>
//	  </mappings>
//	</superblock>
type XML struct {
	w   io.Writer
	enc *xml.Encoder
}

// NewXML returns an XML emitter writing to w.
func NewXML(w io.Writer) *XML {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &XML{w: w, enc: enc}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func (x *XML) start(op, name string, attrs ...xml.Attr) error {
	return ioErr(op, x.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}))
}

func (x *XML) end(op, name string) error {
	return ioErr(op, x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}))
}

func (x *XML) BeginSuperblock(h Header) error {
	return x.start("begin superblock", "superblock",
		attr("uuid", h.UUID),
		attr("block_size", u64(uint64(h.BlockSize))),
		attr("nr_cache_blocks", u64(uint64(h.NrCacheBlocks))),
		attr("policy", h.Policy),
		attr("hint_width", u64(uint64(h.HintWidth))),
	)
}

func (x *XML) BeginMappings() error {
	return x.start("begin mappings", "mappings")
}

func (x *XML) Mapping(cblock, oblock uint64, dirty bool) error {
	if err := x.start("mapping", "mapping",
		attr("cache_block", u64(cblock)),
		attr("origin_block", u64(oblock)),
		attr("dirty", strconv.FormatBool(dirty)),
	); err != nil {
		return err
	}
	return x.end("mapping", "mapping")
}

func (x *XML) EndMappings() error {
	return x.end("end mappings", "mappings")
}

func (x *XML) EndSuperblock() error {
	if err := x.end("end superblock", "superblock"); err != nil {
		return err
	}
	if err := x.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(x.w, "\n")
	return ioErr("end superblock", err)
}

// Flush writes buffered tokens to the destination.
func (x *XML) Flush() error {
	return ioErr("flush", x.enc.Flush())
}
