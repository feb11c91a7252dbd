package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labdesk/cmd"
	httpapi "labdesk/internal/adapters/in/http"
	"labdesk/internal/adapters/out/postgres"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "labdesk",
		Short:        "Diagnostics lab order fulfillment service",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background jobs",
		RunE: func(_ *cobra.Command, _ []string) error {
			config, err := cmd.LoadConfig()
			if err != nil {
				return err
			}
			return runServer(config, newLogger(config))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if missing and apply the schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			config, err := cmd.LoadConfig()
			if err != nil {
				return err
			}
			if !config.UsesPostgres() {
				return errors.New("DB_HOST is not set")
			}
			logger := newLogger(config)

			if err = createDatabaseIfNotExists(config); err != nil {
				return err
			}
			db, err := openDatabase(config)
			if err != nil {
				return err
			}
			if err = postgres.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info().Str("database", config.DBName).Msg("schema is up to date")
			return nil
		},
	}
}

func newLogger(config cmd.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if config.Env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "labdesk").Logger()
}

func runServer(config cmd.Config, logger zerolog.Logger) error {
	var db *gorm.DB
	if config.UsesPostgres() {
		var err error
		if db, err = openDatabase(config); err != nil {
			return err
		}
		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	app := cmd.NewCompositionRoot(config, db, logger)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to release resources")
		}
	}()

	contract, err := httpapi.LoadContract()
	if err != nil {
		return fmt.Errorf("load API contract: %w", err)
	}

	server := httpapi.NewServer(app.HTTPHandlers(), config.AutoAssignLimit, logger)
	e := httpapi.NewEcho(server, httpapi.EchoConfig{
		Contract:   contract,
		Metrics:    app.Metrics(),
		SigningKey: []byte(config.JWTSigningKey),
		Logger:     logger,
	})

	jobManager := app.JobManager()
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer jobManager.StopAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", config.HTTPPort).Msg("starting HTTP server")
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openDatabase(config cmd.Config) (*gorm.DB, error) {
	db, err := gorm.Open(gormpg.Open(config.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func createDatabaseIfNotExists(config cmd.Config) error {
	db, err := sql.Open("postgres", config.AdminDSN())
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", config.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database: %w", err)
	}
	if exists {
		return nil
	}
	if _, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(config.DBName)); err != nil {
		return fmt.Errorf("create database %s: %w", config.DBName, err)
	}
	return nil
}
