package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/martijn/clientdesk/internal/core/service"
	"github.com/martijn/clientdesk/internal/infrastructure/metrics"
	"github.com/martijn/clientdesk/internal/infrastructure/sqlstore"
	"github.com/martijn/clientdesk/pkg/config"
	"github.com/martijn/clientdesk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clientdesk",
	Short: "clientdesk - client registry",
	Long: `clientdesk keeps a registry of clients identified by CPF and email.

It provides:
- A REST API to create, read, update and delete clients
- Lookups by CPF and by email
- SQLite or PostgreSQL storage
- Optional JWT authentication with users and API credentials`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/clientdesk/config.yml)")
}

// initServices initializes all services
func initServices(ctx context.Context) (*Services, error) {
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	userRepo := sqlstore.NewUserRepository(db)
	credentialRepo := sqlstore.NewCredentialRepository(db)
	authCodeRepo := sqlstore.NewAuthCodeRepository(db)
	clientRepo := sqlstore.NewClientRepository(db)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize services
	authService := service.NewAuthService(userRepo, credentialRepo, authCodeRepo, cfg.JWTSecretKey, cfg.JWTAlgorithm)
	clientService := service.NewClientService(clientRepo, log).WithMetrics(metrics.New(registry))

	return &Services{
		DB:            db,
		Logger:        log,
		Registry:      registry,
		AuthService:   authService,
		ClientService: clientService,
	}, nil
}

// Services holds all initialized services
type Services struct {
	DB            *sqlstore.DB
	Logger        *slog.Logger
	Registry      *prometheus.Registry
	AuthService   *service.AuthService
	ClientService *service.ClientService
}

// Close closes all resources
func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}
