// Package walker visits every slot of a mapping array in ascending cache
// block order, classifying structural damage on the way.
//
// # Overview
//
// The mapping array is a btree keyed by array-block index whose leaves point
// at array blocks of packed mappings. Walk descends the btree iteratively,
// left to right, so slots are produced strictly in ascending order and each
// exactly once. Two kinds of damage are recognised:
//
//   - missing mappings: a btree node or array block cannot be read, fails
//     its checksum or header checks, is reached twice, or an array block the
//     superblock implies is absent from the tree. Every slot the structure
//     covers is reported as one range and skipped.
//   - invalid mapping: a readable array block holds a slot that fails its
//     own checks (unknown flag bits, DIRTY without VALID, an origin block
//     mapped twice, or a slot past the block's entry count).
//
// Each report goes to a damage.Policy. When the policy returns an error the
// walk stops at once and the Outcome says where. Otherwise the walk goes on:
// missing slots are skipped, and an invalid slot whose fields survived is
// passed on with only its known flag bits.
//
// # Quick Start
//
//	proj := walker.NewProjector(emitter)
//	out, err := walker.Walk(md.Mappings, proj, damage.Fatal)
//	if err != nil {
//	    return err // out.Status says whether damage or the sink stopped it
//	}
//	fmt.Printf("%d mappings, %d slots skipped\n", proj.Emitted(), out.Skipped)
package walker
