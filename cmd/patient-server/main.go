package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ywu256/MAPD713-Project/internal/config"
	"github.com/ywu256/MAPD713-Project/internal/domain/clinical"
	"github.com/ywu256/MAPD713-Project/internal/domain/patient"
	"github.com/ywu256/MAPD713-Project/internal/domain/user"
	"github.com/ywu256/MAPD713-Project/internal/platform/db"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient-server",
		Short: "Patient records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(collectionsCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func collectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage document collections",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create the patients, users and clinical_records collections if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			stores, err := db.OpenStores(ctx, storeConfig(cfg))
			if err != nil {
				return err
			}
			defer stores.Close()

			for _, st := range stores.All() {
				if err := st.Ensure(ctx); err != nil {
					return fmt.Errorf("ensure %s: %w", st.Name, err)
				}
				fmt.Printf("Collection %s is ready.\n", st.Name)
			}
			return nil
		},
	})

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a user who can log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.UsersDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBConnectTimeout)
			if err != nil {
				return err
			}
			defer pool.Close()

			st := &db.Store{Name: db.UsersCollection, Pool: pool}
			coll, err := st.Collection()
			if err != nil {
				return err
			}

			svc := user.NewService(user.NewRepo(coll), user.NewHasher())
			u, err := svc.Provision(ctx, &user.ProvisionRequest{Email: email, Password: password, Role: role})
			if err != nil {
				return err
			}
			fmt.Printf("User %s created with role %s.\n", u.Email, u.Role)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Login email")
	createCmd.Flags().String("password", "", "Plaintext password (hashed before storage)")
	createCmd.Flags().String("role", "staff", "One of admin, physician, nurse, staff")

	cmd.AddCommand(createCmd)
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func storeConfig(cfg *config.Config) db.StoreConfig {
	return db.StoreConfig{
		PatientsURL:    cfg.PatientsDatabaseURL,
		UsersURL:       cfg.UsersDatabaseURL,
		ClinicalURL:    cfg.ClinicalDatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	// Logger
	logger := newLogger(os.Getenv("ENV"))

	// Config
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Stores
	ctx := context.Background()
	stores, err := db.OpenStores(ctx, storeConfig(cfg))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to stores")
	}
	defer stores.Close()
	logger.Info().Msg("connected to patients, users and clinical_records stores")

	patientColl, err := stores.Patients.Collection()
	if err != nil {
		return err
	}
	userColl, err := stores.Users.Collection()
	if err != nil {
		return err
	}
	clinicalColl, err := stores.Clinical.Collection()
	if err != nil {
		return err
	}

	// Domain services
	clinicalSvc := clinical.NewService(clinical.NewRepo(clinicalColl))
	patientSvc := patient.NewService(patient.NewRepo(patientColl), clinicalSvc)
	userSvc := user.NewService(user.NewRepo(userColl), user.NewHasher())

	e := newEcho(logger, cfg.BodyLimit, db.HealthHandler(stores),
		patient.NewHandler(patientSvc),
		clinical.NewHandler(clinicalSvc),
		user.NewHandler(userSvc),
	)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
