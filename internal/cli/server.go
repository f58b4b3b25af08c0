package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/martijn/clientdesk/internal/api"
	"github.com/martijn/clientdesk/internal/core/service"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  "Start the REST API server for client management",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		log := services.Logger

		if cfg.SeedOnStart {
			if _, err := services.ClientService.SeedClients(cmd.Context(), service.DefaultSeedClients); err != nil {
				return fmt.Errorf("failed to seed clients: %w", err)
			}
		}

		if !cfg.AuthEnabled() {
			log.Warn("jwt_secret_key is not set, authentication endpoints are disabled")
		}

		// Initialize Gin server
		server := api.NewServer(
			cfg,
			log,
			services.ClientService,
			services.AuthService,
			services.Registry,
		)

		// Start server in goroutine
		serverErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// Wait for interrupt signal or server error
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-sigChan:
			log.Info("shutting down gracefully")
		}

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
