package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded bundle generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeDB, err := openHistoryAt(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer closeDB()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No generations recorded yet. Run `nlkit generate`.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tBRAND\tPROVIDER\tDIGEST")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.BrandName, e.Features.Provider, e.Digest[:12])
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeDB, err := openHistoryAt(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer closeDB()

		e, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		f := e.Features
		storage := "auto-provisioned"
		if !f.AutoProvision {
			storage = "pre-supplied sheet"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:            %s\n", e.ID)
		fmt.Fprintf(out, "Created:       %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Brand:         %s\n", e.BrandName)
		fmt.Fprintf(out, "Provider:      %s\n", f.Provider)
		fmt.Fprintf(out, "Template:      %s\n", f.Template)
		fmt.Fprintf(out, "Verification:  %s\n", onOff(f.Verification))
		fmt.Fprintf(out, "Gmail replies: %s\n", onOff(f.GmailDetection))
		fmt.Fprintf(out, "AI content:    %s\n", onOff(f.AIContent))
		fmt.Fprintf(out, "Warm-up:       %s\n", onOff(f.Warmup))
		fmt.Fprintf(out, "Storage:       %s\n", storage)
		fmt.Fprintf(out, "Output:        %s\n", e.OutputDir)
		fmt.Fprintf(out, "Digest:        %s\n", e.Digest)
		if len(e.Files) > 0 {
			fmt.Fprintf(out, "Files:\n  %s\n", strings.Join(e.Files, "\n  "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
