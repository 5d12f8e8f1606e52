package users

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
	memdb "github.com/hashicorp/go-memdb"
)

const (
	TableName      = "user"
	indexID        = "id"
	indexBirthDate = "birth_date"
)

// row is what actually lives in memdb. BirthKey is the birth date in
// YYYY-MM-DD form so the string index orders rows chronologically.
type row struct {
	ID       uint64
	BirthKey string
	User     *models.User
}

// TableSchema describes the user table for the memdb schema.
func TableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableName,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:    indexID,
				Unique:  true,
				Indexer: &memdb.UintFieldIndex{Field: "ID"},
			},
			indexBirthDate: {
				Name:         indexBirthDate,
				AllowMissing: true,
				Indexer:      &memdb.StringFieldIndex{Field: "BirthKey"},
			},
		},
	}
}

// MemDBRepository keeps users in a go-memdb table. Ids come from a counter
// that only moves forward, so an id is never handed out twice even after
// deletes.
type MemDBRepository struct {
	db     *memdb.MemDB
	lastID atomic.Uint64
}

func NewMemDBRepository(db *memdb.MemDB) *MemDBRepository {
	return &MemDBRepository{db: db}
}

func newRow(id uint64, user *models.User) *row {
	u := user.Clone()
	u.ID = id
	return &row{ID: id, BirthKey: u.BirthDate.String(), User: u}
}

func (r *MemDBRepository) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	id := r.lastID.Add(1)
	rw := newRow(id, user)

	err := dbx.WithTxn(r.db, true, func(txn *memdb.Txn) error {
		return txn.Insert(TableName, rw)
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rw.User.Clone(), nil
}

func (r *MemDBRepository) Put(ctx context.Context, id uint64, user *models.User) error {
	err := dbx.WithTxn(r.db, true, func(txn *memdb.Txn) error {
		return txn.Insert(TableName, newRow(id, user))
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	r.advanceTo(id)
	return nil
}

// advanceTo makes sure later Inserts never hand out id again.
func (r *MemDBRepository) advanceTo(id uint64) {
	for {
		cur := r.lastID.Load()
		if id <= cur || r.lastID.CompareAndSwap(cur, id) {
			return
		}
	}
}

func (r *MemDBRepository) Get(ctx context.Context, id uint64) (*models.User, error) {
	var user *models.User

	err := dbx.WithTxn(r.db, false, func(txn *memdb.Txn) error {
		raw, err := txn.First(TableName, indexID, id)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if raw == nil {
			return common.ErrorNotFound
		}
		user = raw.(*row).User.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *MemDBRepository) Contains(ctx context.Context, id uint64) (bool, error) {
	_, err := r.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}

func (r *MemDBRepository) Remove(ctx context.Context, id uint64) error {
	err := dbx.WithTxn(r.db, true, func(txn *memdb.Txn) error {
		_, err := txn.DeleteAll(TableName, indexID, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MemDBRepository) All(ctx context.Context) ([]*models.User, error) {
	list := []*models.User{}

	err := r.scan(func(rw *row) {
		list = append(list, rw.User.Clone())
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *MemDBRepository) Size(ctx context.Context) (int, error) {
	n := 0

	if err := r.scan(func(*row) { n++ }); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

// scan walks the table in id order inside a single read transaction.
func (r *MemDBRepository) scan(fn func(rw *row)) error {
	return dbx.WithTxn(r.db, false, func(txn *memdb.Txn) error {
		it, err := txn.Get(TableName, indexID)
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			fn(raw.(*row))
		}
		return nil
	})
}

func (r *MemDBRepository) BirthDateBetween(ctx context.Context, from, to timex.Date) ([]*models.User, error) {
	list := []*models.User{}
	lower, upper := from.String(), to.String()

	err := dbx.WithTxn(r.db, false, func(txn *memdb.Txn) error {
		it, err := txn.LowerBound(TableName, indexBirthDate, lower)
		if err != nil {
			return err
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			rw := raw.(*row)
			if rw.BirthKey >= upper {
				break
			}
			// both bounds are exclusive
			if rw.BirthKey > lower {
				list = append(list, rw.User.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	slices.SortFunc(list, func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}
