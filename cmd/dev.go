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

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/devserver"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Serve the generated pages locally with live reload",
	Long: `Serves the signup form at / and the confirmation page at /?thankyou=true.
The config file is watched and open browsers reload after every change.`,
	RunE: runDev,
}

func init() {
	devCmd.Flags().Int("port", 8080, "port to listen on")
	devCmd.Flags().Duration("poll", 500*time.Millisecond, "config polling interval")
	rootCmd.AddCommand(devCmd)
}

func runDev(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	poll, _ := cmd.Flags().GetDuration("poll")

	source := func() (*bundle.Bundle, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		return bundle.Generate(cfg.Brand)
	}

	dev := devserver.New(source, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go dev.Watch(ctx, cfgFile, poll)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           dev.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving http://localhost:%d (watching %s, Ctrl+C to stop)\n", port, cfgFile)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dev server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("dev_shutdown_failed", zap.Error(err))
	}
	return nil
}
