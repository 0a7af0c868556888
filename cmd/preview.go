package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/export"
	"github.com/ziadkadry99/newsletter-kit/internal/llm"
	"github.com/ziadkadry99/newsletter-kit/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview an AI-written issue in your email template",
	Long: `Sends the same prompt the generated script uses to the configured model
and renders the answer inside your email template, so you can check the
voice and layout before deploying.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("out", "", "write the email HTML to this file instead of stdout")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return explain(err)
	}

	var apiKey string
	if cfg.Preview.Provider == config.LLMGoogle {
		apiKey = cfg.Brand.GeminiKey
	}
	provider, err := llm.NewProvider(cfg.Preview.Provider, cfg.Preview.Model, apiKey)
	if err != nil {
		return fmt.Errorf("creating %s provider: %w", cfg.Preview.Provider, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := preview.Generate(ctx, provider, cfg.Brand, cfg.Preview.Model)
	if err != nil {
		return err
	}
	logger.Info("preview_generated",
		zap.String("provider", provider.Name()),
		zap.String("model", res.Model),
		zap.Int("input_tokens", res.InputTokens),
		zap.Int("output_tokens", res.OutputTokens),
	)

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.HTML)
	} else {
		if err := export.AtomicWrite(out, []byte(res.HTML)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Subject: %s\n", res.Subject)
	if res.Cost > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d input / %d output tokens, about $%.4f\n",
			res.Model, res.InputTokens, res.OutputTokens, res.Cost)
	}
	return nil
}
