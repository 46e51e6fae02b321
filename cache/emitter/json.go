package emitter

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSON writes one object whose mappings array is streamed, so memory stays
// flat however many mappings there are.
//
//	{
//	  "superblock": {"uuid": "", "block_size": 0, ...},
//	  "mappings": [
//	    {"cache_block": 0, "origin_block": 0, "dirty": false}
//	  ]
//	}
type JSON struct {
	w     *bufio.Writer
	count uint64
}

type jsonMapping struct {
	CacheBlock  uint64 `json:"cache_block"`
	OriginBlock uint64 `json:"origin_block"`
	Dirty       bool   `json:"dirty"`
}

// NewJSON returns a JSON emitter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: bufio.NewWriter(w)}
}

func (j *JSON) write(op string, parts ...[]byte) error {
	for _, p := range parts {
		if _, err := j.w.Write(p); err != nil {
			return ioErr(op, err)
		}
	}
	return nil
}

func (j *JSON) BeginSuperblock(h Header) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return j.write("begin superblock", []byte("{\n  \"superblock\": "), data, []byte(",\n"))
}

func (j *JSON) BeginMappings() error {
	return j.write("begin mappings", []byte(`  "mappings": [`))
}

func (j *JSON) Mapping(cblock, oblock uint64, dirty bool) error {
	data, err := json.Marshal(jsonMapping{CacheBlock: cblock, OriginBlock: oblock, Dirty: dirty})
	if err != nil {
		return err
	}
	sep := []byte(",\n    ")
	if j.count == 0 {
		sep = []byte("\n    ")
	}
	j.count++
	return j.write("mapping", sep, data)
}

func (j *JSON) EndMappings() error {
	if j.count == 0 {
		return j.write("end mappings", []byte("]\n"))
	}
	return j.write("end mappings", []byte("\n  ]\n"))
}

func (j *JSON) EndSuperblock() error {
	if err := j.write("end superblock", []byte("}\n")); err != nil {
		return err
	}
	return j.Flush()
}

// Flush writes buffered output to the destination.
func (j *JSON) Flush() error {
	return ioErr("flush", j.w.Flush())
}
