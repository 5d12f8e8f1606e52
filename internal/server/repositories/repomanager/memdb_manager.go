package repomanager

import (
	"fmt"

	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
	memdb "github.com/hashicorp/go-memdb"
)

// MemDBRepositoryManager owns a single go-memdb database holding all tables.
type MemDBRepositoryManager struct {
	db    *memdb.MemDB
	users *users.MemDBRepository
}

func (m *MemDBRepositoryManager) Users() users.Repository {
	return m.users
}

// Schema lists every table the server stores.
func Schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			users.TableName: users.TableSchema(),
		},
	}
}

func NewMemDBRepositoryManager() (*MemDBRepositoryManager, error) {
	db, err := memdb.NewMemDB(Schema())
	if err != nil {
		return nil, fmt.Errorf("memdb init error: %w", err)
	}

	return &MemDBRepositoryManager{
		db:    db,
		users: users.NewMemDBRepository(db),
	}, nil
}
