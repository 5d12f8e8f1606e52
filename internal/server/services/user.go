// Package services contains server-side business logic. This file implements
// UserService, which manages the user lifecycle: registration with a
// minimum-age rule, lookup, range queries by birth date, full and partial
// updates and deletion.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
)

// UserService applies business rules on top of the users repository.
// Mutations are serialized so that the existence check and the write
// that follows it cannot interleave with another request.
type UserService struct {
	mu            sync.Mutex
	repomanager   repomanager.RepositoryManager
	acceptableAge int
	now           func() time.Time
}

type Option func(*UserService)

// WithClock overrides the source of "today" used by the age check.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *UserService {
	s := &UserService{
		repomanager:   m,
		acceptableAge: cfg.AcceptableAge,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new user. The user must be at least acceptableAge
// years old today; being born exactly on the cutoff date is enough.
func (s *UserService) Create(ctx context.Context, req *UserRequest) (*UserResponse, error) {
	cutoff := timex.DateOf(s.now()).MinusYears(s.acceptableAge)
	if req.BirthDate.After(cutoff.Time) {
		return nil, common.NewError(common.ErrorRegistration,
			"User can't be registered, cause he is younger than %d", s.acceptableAge)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repomanager.Users().Insert(ctx, req.toModel())
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return toResponse(user), nil
}

func (s *UserService) GetByID(ctx context.Context, id uint64) (*UserResponse, error) {
	user, err := s.findUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(user), nil
}

func (s *UserService) FindAll(ctx context.Context) ([]*UserResponse, error) {
	list, err := s.repomanager.Users().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return toResponses(list), nil
}

// FindAllByRange returns users born strictly between from and to. Users
// born exactly on either bound are not included.
func (s *UserService) FindAllByRange(ctx context.Context, from, to timex.Date) ([]*UserResponse, error) {
	if from.After(to.Time) {
		return nil, common.NewError(common.ErrorInvalidArgument, "Argument 'from' must be greater than 'to'")
	}

	list, err := s.repomanager.Users().BirthDateBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error listing users by range: %w", err)
	}
	return toResponses(list), nil
}

// Replace overwrites every field of an existing user except its id.
// Address and phone number are cleared.
func (s *UserService) Replace(ctx context.Context, id uint64, req *ReplaceUserRequest) (*UserResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findUserByID(ctx, id); err != nil {
		return nil, err
	}

	user := req.toModel(id)
	if err := s.repomanager.Users().Put(ctx, id, user); err != nil {
		return nil, fmt.Errorf("error replacing user: %w", err)
	}

	return toResponse(user), nil
}

// Patch changes only the first and last name of an existing user.
func (s *UserService) Patch(ctx context.Context, id uint64, req *PatchUserRequest) (*UserResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.findUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.repomanager.Users().Put(ctx, id, user); err != nil {
		return nil, fmt.Errorf("error patching user: %w", err)
	}

	return toResponse(user), nil
}

// DeleteByID removes a user and returns how it looked before removal.
func (s *UserService) DeleteByID(ctx context.Context, id uint64) (*UserResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.findUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Users().Remove(ctx, id); err != nil {
		return nil, fmt.Errorf("error deleting user: %w", err)
	}

	return toResponse(user), nil
}

// --- helpers below ---

func (s *UserService) findUserByID(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.repomanager.Users().Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "Can't find user by id = %d", id)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}
