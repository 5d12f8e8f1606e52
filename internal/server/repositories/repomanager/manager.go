package repomanager

import (
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
)

// RepositoryManager hands out the repositories backing the server. Every
// call returns repositories over the same underlying storage.
type RepositoryManager interface {
	Users() users.Repository
}
