package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/goflash/strict"
	"github.com/goflash/strict/internal/config"
	"github.com/goflash/strict/middleware"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run an HTTP server behind StrictURI",
		SilenceUsage: true,
		Long:  "Run a demo HTTP server that rejects corrupted request URIs and echoes everything else",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := cfg.NewLogger(os.Stderr)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           NewServer(cfg, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")

	return cmd
}

// NewServer builds the strictd application for cfg.
func NewServer(cfg config.Config, logger *slog.Logger) strict.App {
	a := strict.New()
	a.SetLogger(logger)

	su := cfg.StrictURI
	su.ErrorPage = invalidURIPage
	a.Pre(
		middleware.RequestID(),
		middleware.OTel("strictd"),
		middleware.Logger(),
		middleware.Recover(),
		middleware.StrictURI(su),
	)

	a.GET("/*path", func(c strict.Ctx) error {
		return c.JSON(map[string]string{
			"path":  c.Path(),
			"query": c.Request().URL.RawQuery,
		})
	})
	return a
}

func invalidURIPage(c strict.Ctx) error {
	bad, _ := middleware.InvalidURIFromContext(c.Context())
	return c.Status(http.StatusBadRequest).JSON(map[string]string{
		"error":        "invalid request URI",
		"original":     strconv.Quote(string(bad.Original)),
		"proposed_fix": string(bad.ProposedFix),
	})
}
