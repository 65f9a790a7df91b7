package matching

import (
	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/models"
)

// BlockingIndex partitions record indices into candidate buckets keyed by the
// phonetic encoding of the family name, so fuzzy comparison only happens
// within a bucket. Every record lands in exactly one block; the index is
// built in a single scan and never mutated during comparison.
type BlockingIndex struct {
	blocks map[string][]int
}

// BuildBlockingIndex builds the block map for one fuzzy-matching pass.
// Records whose family name cannot be phonetically encoded fall back to an
// uppercased prefix key of fallbackWidth characters.
func BuildBlockingIndex(records []models.Contact, fallbackWidth int) *BlockingIndex {
	blocks := make(map[string][]int)
	for i := range records {
		key := fingerprint.PhoneticKey(records[i].LastName, fallbackWidth)
		blocks[key] = append(blocks[key], i)
	}
	return &BlockingIndex{blocks: blocks}
}

// Blocks returns the block map: phonetic key to member record indices.
func (b *BlockingIndex) Blocks() map[string][]int {
	return b.blocks
}

// Size returns the number of distinct blocks.
func (b *BlockingIndex) Size() int {
	return len(b.blocks)
}
