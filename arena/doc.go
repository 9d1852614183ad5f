// Package arena allocates byte ranges inside the shared block.
//
// The arena is a bump allocator: Alloc advances a single offset and nothing
// is freed individually. Checkpoint and Rollback give stack-shaped release,
// Reset releases everything. A failed Alloc never changes the arena.
//
// Txn wraps a checkpoint so that staging code can defer its release:
//
//	txn := a.Begin()
//	defer txn.Close()
//	buf, err := a.Alloc(len, 1)
//	if err != nil {
//		return err // rolled back by Close
//	}
//	txn.Commit()
//
// Offsets returned by the arena are absolute offsets into the shared block.
package arena
