package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/export"
	"github.com/ziadkadry99/newsletter-kit/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the Apps Script bundle",
	Long: `Generates Code.gs, index.html, thank-you.html and INSTRUCTIONS.md from
the configuration and writes them to the output directory. Every run is
recorded in the generation history.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("out", "", "output directory (overrides config)")
	generateCmd.Flags().StringSlice("only", nil, "only write files matching these glob patterns")
	generateCmd.Flags().Bool("html", false, "also render INSTRUCTIONS.html")
	generateCmd.Flags().Bool("combined", false, "also write every file into bundle.txt")
	generateCmd.Flags().Bool("stamp", false, "add a generation timestamp to the script header")
	generateCmd.Flags().Bool("no-history", false, "do not record this run in the history")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if out, _ := flags.GetString("out"); out != "" {
		cfg.Output.Dir = out
	}
	if flags.Changed("only") {
		cfg.Output.Only, _ = flags.GetStringSlice("only")
	}
	if html, _ := flags.GetBool("html"); html {
		cfg.Output.HTML = true
	}
	if combined, _ := flags.GetBool("combined"); combined {
		cfg.Output.Combined = true
	}
	if err := cfg.Validate(); err != nil {
		return explain(err)
	}

	var opts []bundle.Option
	if stamp, _ := flags.GetBool("stamp"); stamp {
		opts = append(opts, bundle.WithGeneratedAt(start))
	}

	b, err := bundle.Generate(cfg.Brand, opts...)
	if err != nil {
		return explain(err)
	}

	written, err := export.Write(b, export.Options{
		Dir:      cfg.Output.Dir,
		Only:     cfg.Output.Only,
		HTML:     cfg.Output.HTML,
		Combined: cfg.Output.Combined,
	}, progress.NewReporter(os.Stderr))
	if err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}

	out := cmd.OutOrStdout()
	f := b.Features
	fmt.Fprintf(out, "Generated bundle for %s\n", b.Brand.BrandName)
	fmt.Fprintf(out, "  provider: %s   template: %s   verification: %s   gmail: %s   ai: %s\n",
		f.Provider.Info().DisplayName, f.Template, onOff(f.Verification), onOff(f.GmailDetection), onOff(f.AIContent))
	for _, path := range written {
		fmt.Fprintf(out, "  wrote %s\n", path)
	}

	if noHistory, _ := flags.GetBool("no-history"); !noHistory {
		if err := recordGeneration(ctx, cfg.HistoryDB, b, cfg.Output.Dir, written); err != nil {
			logger.Warn("history_record_failed", zap.Error(err))
		}
	}

	logger.Debug("generate_done",
		zap.Int("files", len(written)),
		zap.String("digest", b.Digest()),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintf(out, "Done in %s. Next: follow %s\n", time.Since(start).Round(time.Millisecond), bundle.FileInstructions)
	return nil
}

func recordGeneration(ctx context.Context, dbPath string, b *bundle.Bundle, dir string, written []string) error {
	store, closeDB, err := openHistoryAt(dbPath)
	if err != nil {
		return err
	}
	defer closeDB()

	entry, err := store.Record(ctx, b, dir, written)
	if err != nil {
		return err
	}
	logger.Info("generation_recorded", zap.String("id", entry.ID), zap.String("digest", entry.Digest))
	return nil
}
