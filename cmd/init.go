package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an nlkit configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for your brand, email provider and features, then writes .nlkit.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %s for %s. Run `nlkit generate` next.\n", cfgFile, cfg.Brand.BrandName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
