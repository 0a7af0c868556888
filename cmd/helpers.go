package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/db"
	"github.com/ziadkadry99/newsletter-kit/internal/history"
)

// loadConfig loads the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `nlkit init` to create a config file", err)
	}
	return cfg, nil
}

// explain adds a hint to validation failures. Dotted fields are top-level
// sections; the rest live under brand.
func explain(err error) error {
	var ve *config.ValidationError
	if errors.As(err, &ve) {
		key := ve.Field
		if !strings.Contains(key, ".") {
			key = "brand." + key
		}
		return fmt.Errorf("%w\nSet %s in %s or run `nlkit init`", err, key, cfgFile)
	}
	return err
}

// openHistoryAt opens the generation history database at path.
func openHistoryAt(path string) (*history.Store, func(), error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	return history.NewStore(database), func() { database.Close() }, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
