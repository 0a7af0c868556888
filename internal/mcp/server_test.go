package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

const validConfig = `brand:
  brand_name: Acme Weekly
  email_provider: brevo
  sender_email: news@acme.test
  template: story
  frequency: weekly
  verification: true
  gmail: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".nlkit.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"generate_bundle", generateBundleTool, "generate_bundle"},
		{"validate_config", validateConfigTool, "validate_config"},
		{"list_providers", listProvidersTool, "list_providers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer("/tmp/.nlkit.yml")

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.configPath != "/tmp/.nlkit.yml" {
		t.Errorf("configPath = %q", srv.configPath)
	}
}

func TestHandleGenerateBundle(t *testing.T) {
	srv := NewServer(writeConfig(t, validConfig))

	t.Run("combined", func(t *testing.T) {
		result := call(t, srv.handleGenerateBundle, map[string]any{})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		for _, want := range []string{"FILE: Code.gs", "FILE: index.html", "FILE: thank-you.html", "FILE: INSTRUCTIONS.md", "Acme Weekly"} {
			if !strings.Contains(text, want) {
				t.Errorf("combined bundle missing %q", want)
			}
		}
	})

	t.Run("single file", func(t *testing.T) {
		result := call(t, srv.handleGenerateBundle, map[string]any{"file": "INSTRUCTIONS.md"})
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "BREVO_API_KEY") {
			t.Error("instructions should name the provider key")
		}
		if strings.Contains(text, "FILE:") {
			t.Error("single file should not carry bundle separators")
		}
	})

	t.Run("unknown file", func(t *testing.T) {
		result := call(t, srv.handleGenerateBundle, map[string]any{"file": "README.md"})
		if !result.IsError {
			t.Error("expected error for unknown file")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		path := writeConfig(t, "brand:\n  brand_name: Acme\n")
		result := call(t, srv.handleGenerateBundle, map[string]any{"config_path": path})
		if !result.IsError {
			t.Error("expected error for incomplete config")
		}
	})
}

func TestHandleValidateConfig(t *testing.T) {
	srv := NewServer(writeConfig(t, validConfig))

	result := call(t, srv.handleValidateConfig, map[string]any{})
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if text := resultText(t, result); !strings.Contains(text, "Acme Weekly sends through Brevo") {
		t.Errorf("unexpected summary: %s", text)
	}

	bad := writeConfig(t, strings.Replace(validConfig, "news@acme.test", "not-an-email", 1))
	result = call(t, srv.handleValidateConfig, map[string]any{"config_path": bad})
	if !result.IsError {
		t.Fatal("expected validation error")
	}
	if text := resultText(t, result); !strings.Contains(text, "sender_email") {
		t.Errorf("error should name the field: %s", text)
	}
}

func TestHandleListProviders(t *testing.T) {
	srv := NewServer("")
	text := resultText(t, call(t, srv.handleListProviders, nil))

	order := []string{"SendPulse", "Brevo", "Resend", "Mailgun", "MailerSend", "SendGrid", "Gmail"}
	last := -1
	for _, name := range order {
		i := strings.Index(text, "**"+name+"**")
		if i <= last {
			t.Errorf("%s out of priority order", name)
		}
		last = i
	}
	for _, key := range []string{"SENDPULSE_API_SECRET", "MAILGUN_DOMAIN", "FROM_EMAIL"} {
		if !strings.Contains(text, key) {
			t.Errorf("missing %s", key)
		}
	}
}
