// Package dump drives a metadata walk into an emitter.
//
// Dump and DumpTo produce a document; Check walks the same array without
// emitting and reports every piece of damage; Info reads only the superblock.
//
// Without Options.Repair any damage aborts the dump with a
// *damage.Error. Output already written is not rolled back, but buffered
// output is flushed so the destination shows how far the dump got.
package dump
