// Package httpserver exposes the user lifecycle operations as a REST API
// under /users.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// UserService is the part of services.UserService the handlers need.
type UserService interface {
	Create(ctx context.Context, req *services.UserRequest) (*services.UserResponse, error)
	GetByID(ctx context.Context, id uint64) (*services.UserResponse, error)
	FindAll(ctx context.Context) ([]*services.UserResponse, error)
	FindAllByRange(ctx context.Context, from, to timex.Date) ([]*services.UserResponse, error)
	Replace(ctx context.Context, id uint64, req *services.ReplaceUserRequest) (*services.UserResponse, error)
	Patch(ctx context.Context, id uint64, req *services.PatchUserRequest) (*services.UserResponse, error)
	DeleteByID(ctx context.Context, id uint64) (*services.UserResponse, error)
}

type HTTPServer struct {
	address         string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	users           UserService
	validate        *validator.Validate
	logger          logging.Logger
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService) (*HTTPServer, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	if l == nil {
		l = logging.Nop{}
	}

	return &HTTPServer{
		address:         cfg.EndpointAddrHTTP,
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
		users:           us,
		validate:        v,
		logger:          l.With("module", "http_server"),
	}, nil
}

// Router builds the request router with all middleware attached.
func (s *HTTPServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.loggingMiddleware)

	r.HandleFunc("/users", s.getAllUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/range", s.getAllUsersByRange).Methods(http.MethodGet)
	r.HandleFunc("/users", s.registerUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", s.getUserByID).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", s.replaceUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", s.patchUser).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}", s.deleteUser).Methods(http.MethodDelete)

	// mux skips r.Use middleware for these two, so wrap them explicitly
	r.NotFoundHandler = s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	}))
	r.MethodNotAllowedHandler = s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully, giving
// in-flight requests up to shutdownTimeout to finish.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
