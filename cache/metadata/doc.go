// Package metadata opens block-cache metadata stores read-only.
//
// # Overview
//
// A store is a device or image file made of 4 KiB blocks. Block 0 holds the
// superblock, which records the store's shape (cache block count, data block
// size, replacement policy) and the root of the mapping array. The mapping
// array holds one packed entry per cache block, saying which origin block
// the cache block mirrors and whether it is valid and dirty.
//
// Open validates the superblock and exposes the mapping array; it never
// walks it. Walking, and deciding what to do about damage found on the way,
// belongs to the walker package.
//
//	md, err := metadata.Open("/dev/mapper/cache-meta")
//	if err != nil {
//	    return err
//	}
//	defer md.Close()
//	fmt.Println(md.Superblock.CacheBlocks)
//
// # Read-only
//
// Nothing in this package writes to the store. Devices are opened O_RDONLY and
// mapped PROT_READ, so a dump can run against metadata that is in use.
package metadata
