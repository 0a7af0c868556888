package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/config"
)

func (s *Server) loadConfig(request mcp.CallToolRequest) (*config.Config, string, error) {
	path := request.GetString("config_path", s.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// handleGenerateBundle renders the bundle and returns it, or one of its files.
func (s *Server) handleGenerateBundle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, path, err := s.loadConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", path, err)), nil
	}

	b, err := bundle.Generate(cfg.Brand)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	if name := request.GetString("file", ""); name != "" {
		f, ok := b.File(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown bundle file %q", name)), nil
		}
		return mcp.NewToolResultText(f.Content), nil
	}

	return mcp.NewToolResultText(b.Combined()), nil
}

// handleValidateConfig reports whether the config can produce a bundle.
func (s *Server) handleValidateConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, path, err := s.loadConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load %s: %v", path, err)), nil
	}

	if err := cfg.Validate(); err != nil {
		var ve *config.ValidationError
		if errors.As(err, &ve) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid field %s: %s", ve.Field, ve.Reason)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	b := cfg.Brand
	storage := "an auto-provisioned spreadsheet"
	if !b.AutoProvision() {
		storage = "spreadsheet " + b.SheetID
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Configuration is valid: %s sends through %s using the %s template, stored in %s.",
		b.BrandName, b.EmailProvider.Info().DisplayName, b.Template, storage,
	)), nil
}

// handleListProviders describes every provider in failover order.
func (s *Server) handleListProviders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatProviders()), nil
}

func formatProviders() string {
	var sb strings.Builder
	sb.WriteString("# Email providers (failover priority)\n\n")
	for i, p := range config.ProviderPriority {
		info := p.Info()
		fmt.Fprintf(&sb, "%d. **%s** (`%s`)", i+1, info.DisplayName, p)
		if len(info.Secrets) == 0 {
			sb.WriteString(": no Script Properties needed\n")
			continue
		}
		keys := make([]string, len(info.Secrets))
		for j, sec := range info.Secrets {
			keys[j] = "`" + sec.Key + "`"
		}
		sb.WriteString(": " + strings.Join(keys, ", ") + "\n")
	}
	fmt.Fprintf(&sb, "\nEvery deployment also reads `%s`, `%s` and `%s`.\n",
		config.KeyFromEmail, config.KeyEmailProvider, config.KeyEnableFailover)
	return sb.String()
}
