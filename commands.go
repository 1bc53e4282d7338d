package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/config"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/handler"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/memstore"
	mongoclient "github.com/Ryz3nPlayZ/austin-luxury-living/internal/mongo"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/repository"
	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/service"
)

type listingBackend interface {
	service.ListingStore
	service.ListingStats
}

type leadBackend interface {
	service.LeadStore
	service.LeadStats
}

type photoBackend interface {
	service.PhotoStorage
	handler.PhotoSource
}

type backends struct {
	listings listingBackend
	images   service.ImageStore
	leads    leadBackend
	users    service.UserStore
	photos   photoBackend // nil without object storage
	close    func()
}

func (a *app) serveCmd() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep all data in process memory instead of Postgres and MongoDB")
	return cmd
}

func (a *app) serve(ctx context.Context, inMemory bool) error {
	cfg, logger := a.cfg, a.logger
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case !inMemory:
		for _, w := range cfg.Warnings() {
			logger.Warn(w)
		}
	case cfg.JWTSecret == "":
		logger.Warn("JWT_SECRET is not set; sign-in and admin requests will fail")
	}

	var b *backends
	if inMemory {
		b = memoryBackends(cfg)
		logger.Info("using in-memory storage; data is lost on exit")
	} else {
		var err error
		if b, err = a.sqlBackends(ctx); err != nil {
			return err
		}
	}
	defer b.close()

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Warn("filter catalog unreadable, using the built-in one", zap.Error(err))
		if catalog, err = config.LoadCatalog(""); err != nil {
			return err
		}
	}

	auth := service.NewAuthService(b.users, nil, cfg.JWTSecret, time.Duration(cfg.SessionTTL)*time.Hour, logger)
	auth.Subscribe(func(ev service.AuthEvent) {
		logger.Debug("auth event", zap.String("type", string(ev.Type)), zap.String("user_id", ev.Session.UserID))
	})

	catalogs := config.NewCatalogStore(catalog)
	if cfg.CatalogPath != "" {
		if err := catalogs.Watch(ctx, cfg.CatalogPath, logger); err != nil {
			logger.Warn("filter catalog will not reload on change", zap.Error(err))
		}
	}

	deps := handler.Deps{
		Listings:  service.NewListingService(b.listings, b.images, b.photos, logger),
		Leads:     service.NewLeadService(b.leads, b.listings, logger),
		Analytics: service.NewAnalyticsService(b.leads, b.listings),
		Auth:      auth,
		Catalog:   catalogs,
		Logger:    logger,
	}
	if b.photos != nil {
		deps.Photos = b.photos
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func memoryBackends(cfg *config.Config) *backends {
	db := memstore.New()
	return &backends{
		listings: db.Listings(),
		images:   db.Images(),
		leads:    db.Leads(),
		users:    db.Users(),
		photos:   db.Photos(cfg.PublicBaseURL),
		close:    func() {},
	}
}

func (a *app) sqlBackends(ctx context.Context) (*backends, error) {
	db, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	b := &backends{
		listings: repository.NewListingRepository(db),
		images:   repository.NewImageRepository(db),
		leads:    repository.NewLeadRepository(db),
		users:    repository.NewUserRepository(db),
		close:    func() { _ = db.Close() },
	}

	if a.cfg.MongoURI == "" {
		return b, nil
	}
	client, err := mongoclient.NewMongoClient(a.cfg.MongoURI, a.logger)
	if err != nil {
		a.logger.Warn("object storage unavailable; image uploads will fail", zap.Error(err))
		return b, nil
	}
	b.photos = repository.NewPhotoRepository(client, a.cfg.MongoDB, a.cfg.PublicBaseURL)
	b.close = func() {
		_ = db.Close()
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}
	return b, nil
}

// openDB opens the pool lazily. An unreachable database is logged; requests
// fail until it comes up.
func (a *app) openDB(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		a.logger.Warn("database ping failed", zap.Error(err))
	}
	return db, nil
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			a.logger.Info("schema applied")
			return nil
		},
	}
}

func (a *app) createAdminCmd() *cobra.Command {
	var creds service.Credentials
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			auth := service.NewAuthService(repository.NewUserRepository(db), nil, a.cfg.JWTSecret, time.Hour, a.logger)
			u, err := auth.EnsureAdmin(cmd.Context(), creds)
			if err != nil {
				return err
			}
			a.logger.Info("admin ready", zap.String("user_id", u.ID), zap.String("email", u.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "admin password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
