package arena

// Txn scopes a group of allocations. Use it with defer:
//
//	txn := a.Begin()
//	defer txn.Close()
//	... stage ...
//	txn.Commit()
//
// Every exit path that does not reach Commit rolls the arena back.
type Txn struct {
	arena *Arena
	mark  Mark
	done  bool
}

// Begin takes a checkpoint and returns a transaction bound to it.
func (a *Arena) Begin() *Txn {
	return &Txn{arena: a, mark: a.Checkpoint()}
}

// Commit keeps the allocations made in the transaction.
func (t *Txn) Commit() {
	if t.done {
		return
	}
	t.done = true
	t.arena.Release(t.mark)
}

// Abort rolls the arena back to where the transaction began.
func (t *Txn) Abort() {
	if t.done {
		return
	}
	t.done = true
	t.arena.Rollback(t.mark)
}

// Close aborts unless the transaction was committed.
func (t *Txn) Close() {
	t.Abort()
}
