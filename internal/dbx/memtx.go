// Package dbx provides tiny storage helpers shared by repositories: running a
// function inside a go-memdb transaction with commit/abort handled for it.
package dbx

import (
	memdb "github.com/hashicorp/go-memdb"
)

// WithTxn opens a transaction on db, runs fn with it and then commits on
// success or aborts on error/panic. Panics are rethrown. Read transactions
// (write == false) are always aborted, which is a no-op for memdb.
//
// Typical use:
//
//	err := dbx.WithTxn(db, true, func(txn *memdb.Txn) error {
//	    return txn.Insert("user", row)
//	})
func WithTxn(db *memdb.MemDB, write bool, fn func(txn *memdb.Txn) error) (err error) {
	txn := db.Txn(write)

	defer func() {
		if p := recover(); p != nil {
			txn.Abort()
			panic(p)
		}
		if err != nil || !write {
			txn.Abort()
			return
		}
		txn.Commit()
	}()

	err = fn(txn)
	return err
}
