package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/config"
	v1 "github.com/dmehra2102/prod-golang-projects/carecompanion/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/service"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/pkg/tracer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "carecompanion",
		Short:        "Care record and caregiver relationship API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db) //nolint:errcheck

			return database.Migrate(db, log)
		},
	}
}

// createAdminCmd provisions an administrator. Addresses on ADMIN_EMAILS are
// refused by self-service registration, so this is how those accounts exist.
func createAdminCmd() *cobra.Command {
	var cmdArgs service.RegisterCommand
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if cmdArgs.Password == "" {
				cmdArgs.Password = os.Getenv("ADMIN_PASSWORD")
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db) //nolint:errcheck

			principals := postgres.NewPrincipalRepository(db)
			resolver := service.NewRoleResolver(principals, cfg.Access.AdminEmails, log)
			authSvc := service.NewAuthService(principals, resolver, auth.NewJWTManager(cfg.JWT), auth.NewBroker(), log)

			p, err := authSvc.ProvisionAdmin(cmd.Context(), &cmdArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", p.Email, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&cmdArgs.Email, "email", "", "administrator email")
	cmd.Flags().StringVar(&cmdArgs.Password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&cmdArgs.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&cmdArgs.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServer(migrate bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	if migrate {
		if err := database.Migrate(db, log); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(cfg.App.Name, reg)

	principals := postgres.NewPrincipalRepository(db)
	patients := postgres.NewPatientRepository(db)
	links := postgres.NewLinkRepository(db)
	notes := postgres.NewNoteRepository(db)
	records := postgres.NewRecordRepository(db)

	resolver := service.NewRoleResolver(principals, cfg.Access.AdminEmails, log)
	auditSvc := service.NewAuditService(postgres.NewAuditRepository(db), resolver, m, log, service.AuditOptions{
		BufferSize:   cfg.Audit.BufferSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
		DrainTimeout: cfg.Audit.DrainTimeout,
	})

	jwtManager := auth.NewJWTManager(cfg.JWT)
	broker := auth.NewBroker()
	unsubscribe := broker.Subscribe(auditSvc.RecordSessionEvent)

	router := v1.NewRouter(v1.RouterConfig{
		Environment: cfg.App.Environment,
		RateLimit:   cfg.RateLimit,
		JWTManager:  jwtManager,
		Metrics:     m,
		Log:         log,
	}, v1.Services{
		Resolver:      resolver,
		Auth:          service.NewAuthService(principals, resolver, jwtManager, broker, log),
		Relationships: service.NewRelationshipService(principals, patients, links, resolver, auditSvc, m, log),
		Records:       service.NewCareRecordService(patients, records, notes, links, resolver, m, log),
		Notes:         service.NewNoteService(notes, patients, links, resolver, auditSvc, m, log),
		Patients:      service.NewPatientService(principals, patients, links, resolver, auditSvc, log),
		Audit:         auditSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	// Pending session events may still append audit entries, so the broker
	// is drained before the audit buffer.
	unsubscribe()
	broker.Wait()
	auditSvc.Shutdown()

	log.Info("server stopped")
	return nil
}
