package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nkiryanov/bankledger/internal/db"
	"github.com/nkiryanov/bankledger/internal/handlers"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/repository/postgres"
	"github.com/nkiryanov/bankledger/internal/service/account"
	"github.com/nkiryanov/bankledger/internal/service/audit"
	"github.com/nkiryanov/bankledger/internal/service/auth"
	"github.com/nkiryanov/bankledger/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/bankledger/internal/service/beneficiary"
	"github.com/nkiryanov/bankledger/internal/service/content"
	"github.com/nkiryanov/bankledger/internal/service/instrument"
	"github.com/nkiryanov/bankledger/internal/service/lifecycle"
	"github.com/nkiryanov/bankledger/internal/service/notify"
	"github.com/nkiryanov/bankledger/internal/service/otp"
	"github.com/nkiryanov/bankledger/internal/service/reconcile"
	"github.com/nkiryanov/bankledger/internal/service/redaction"
	"github.com/nkiryanov/bankledger/internal/service/settings"
	"github.com/nkiryanov/bankledger/internal/service/ticket"
	"github.com/nkiryanov/bankledger/internal/service/transfer"
	"github.com/nkiryanov/bankledger/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	reconciler *reconcile.Reconciler
	pool       *pgxpool.Pool
	logger     logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config. Err: %w", err)
	}

	// Codes are only written to the log in dev
	revealCodes := c.Environment == logger.EnvDev

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	recorder := audit.NewRecorder(storage.Audit(), logger)
	settingsService := settings.NewService(storage.Settings(), recorder)

	// Codes are mailed once admin configures smtp, until then they go to webhook or log
	sender := notify.NewSMTPSender(settingsService, logger)
	switch {
	case c.NotifyWebhookURL != "":
		sender.Fallback = notify.NewWebhookSender(c.NotifyWebhookURL, logger)
	case revealCodes:
		sender.Fallback = notify.LogSender{Logger: logger, Reveal: true}
	}

	otpManager := otp.New(otp.Config{}, storage, settingsService, sender, logger)

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	hasher := auth.BcryptHasher{}
	authService, err := auth.NewService(hasher, tokenManager, storage.User(), otpManager, recorder)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(handlers.Services{
		Auth:        authService,
		Users:       user.NewService(hasher, storage.User(), recorder),
		Accounts:    account.NewService(storage, recorder),
		Transfers:   transfer.New(storage, otpManager, recorder),
		Beneficiary: beneficiary.NewService(storage.Beneficiary(), otpManager, recorder),
		Lifecycle:   lifecycle.New(storage, recorder),
		Redaction:   redaction.New(storage, recorder),
		Settings:    settingsService,
		Audit:       recorder,
		Notifier:    sender,
		Instruments: instrument.NewService(storage.Instrument(), recorder),
		Tickets:     ticket.NewService(storage.Ticket()),
		Content:     content.NewService(storage, recorder),
	}, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		reconciler: reconcile.New(c.ReconcileInterval, storage.Transaction(), logger),
		pool:       pool,
		logger:     logger,
	}, nil
}

// Run starts http server with reconciler and closes gracefully on context cancellation
// If server fails to start reconciler is stopped too
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting server", "address", s.ListenAddr)

		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed. Err: %w", err)
	})

	g.Go(func() error {
		<-gCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(timeoutCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
			return httpServer.Close()
		}
		s.logger.Info("HTTP server stopped")
		return err
	})

	g.Go(func() error {
		<-s.reconciler.Run(gCtx)
		return nil
	})

	return g.Wait()
}
