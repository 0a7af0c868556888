package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/newsletter-kit/internal/exchange"
	"github.com/ziadkadry99/newsletter-kit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Instagram code-exchange proxy",
	Long: `Starts the HTTP proxy that exchanges an Instagram login code for the
account's recent captions (POST /exchange). The Facebook app is configured
with FACEBOOK_APP_ID, FACEBOOK_APP_SECRET and REDIRECT_URI, or the proxy
section of the config file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Proxy.Port = port
	}

	p := cfg.Proxy
	if p.AppID == "" || p.AppSecret == "" {
		return errors.New("FACEBOOK_APP_ID and FACEBOOK_APP_SECRET must be set")
	}
	if p.RedirectURI == "" {
		logger.Warn("redirect_uri_missing")
	}

	ex := exchange.New(exchange.Config{
		AppID:       p.AppID,
		AppSecret:   p.AppSecret,
		RedirectURI: p.RedirectURI,
		GraphURL:    p.GraphURL,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
	})
	srv := server.New(server.Config{Port: p.Port, AllowAll: p.AllowAll}, ex, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Exchange proxy listening on :%d\n", p.Port)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("proxy server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("proxy_shutdown_failed", zap.Error(err))
	}
	return nil
}
