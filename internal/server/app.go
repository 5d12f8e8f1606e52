// Package server wires the userkeeper components together and runs them.
// It builds the in-memory store, the user service and both network
// endpoints, and stops everything when the process receives a signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/userkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
	httpServer  *httpserver.HTTPServer
	grpcServer  *gs.GRPCServer
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	um, err := repomanager.NewMemDBRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	us := services.NewUserService(um, c)

	hs, err := httpserver.NewHTTPServer(c, logger, us)
	if err != nil {
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	return &App{
		config:      c,
		logger:      logger,
		userService: us,
		httpServer:  hs,
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or one of the
// servers fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"http_address", app.config.EndpointAddrHTTP,
		"grpc_address", app.config.EndpointAddrGRPC,
		"acceptable_age", app.config.AcceptableAge,
	)

	app.initSignalHandler(ctx, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.httpServer.Run(gctx)
	})

	g.Go(func() error {
		return app.grpcServer.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "App stopped")
	}

	return err
}
