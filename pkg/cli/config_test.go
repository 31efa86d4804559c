package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haivivi/mediagen/pkg/jsontime"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"abcdefghij", "abcd**ghij"},
		{"sk-1234567890abcdef", "sk-1***********cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := MaskAPIKey(tt.key)
			if got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestContext_GetExtra_NilMap(t *testing.T) {
	ctx := &Context{
		Name:  "test",
		Extra: nil,
	}

	result := ctx.GetExtra("key")
	if result != "" {
		t.Errorf("GetExtra on nil map = %q, want empty string", result)
	}
}

func TestContext_SetExtra_NilMap(t *testing.T) {
	ctx := &Context{
		Name:  "test",
		Extra: nil,
	}

	ctx.SetExtra("voice", "bella")

	if ctx.Extra == nil {
		t.Fatal("SetExtra should initialize Extra map")
	}

	if got := ctx.Extra["voice"]; got != "bella" {
		t.Errorf("Extra[voice] = %q, want %q", got, "bella")
	}
}

func TestLoadConfigWithPath_NewConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mediagen", "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg.Contexts == nil {
		t.Error("Contexts should be initialized")
	}

	// Verify config file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file should be created")
	}
}

func TestConfig_AddContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	ctx := &Context{
		Provider: "kling",
		APIKey:   "ak:sk",
		BaseURL:  "https://api.example.com",
	}

	err = cfg.AddContext("production", ctx)
	if err != nil {
		t.Fatalf("AddContext error: %v", err)
	}

	if cfg.Contexts["production"] == nil {
		t.Fatal("Context not added")
	}

	if cfg.Contexts["production"].Name != "production" {
		t.Errorf("Context.Name = %q, want %q", cfg.Contexts["production"].Name, "production")
	}

	if cfg.Contexts["production"].APIKey != "ak:sk" {
		t.Errorf("Context.APIKey = %q, want %q", cfg.Contexts["production"].APIKey, "ak:sk")
	}
}

func TestConfig_DeleteContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	cfg.AddContext("ctx1", &Context{APIKey: "key1"})
	cfg.AddContext("ctx2", &Context{APIKey: "key2"})
	cfg.UseContext("ctx1")

	// Delete non-current context
	err = cfg.DeleteContext("ctx2")
	if err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}

	if _, ok := cfg.Contexts["ctx2"]; ok {
		t.Error("Context should be deleted")
	}

	// Delete current context
	err = cfg.DeleteContext("ctx1")
	if err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}

	if cfg.CurrentContext != "" {
		t.Errorf("CurrentContext should be cleared, got %q", cfg.CurrentContext)
	}
}

func TestConfig_DeleteContext_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	err = cfg.DeleteContext("nonexistent")
	if err == nil {
		t.Error("DeleteContext should fail for non-existent context")
	}
}

func TestConfig_UseContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("production", &Context{APIKey: "prod-key"})

	err = cfg.UseContext("production")
	if err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	if cfg.CurrentContext != "production" {
		t.Errorf("CurrentContext = %q, want %q", cfg.CurrentContext, "production")
	}
}

func TestConfig_UseContext_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	err = cfg.UseContext("nonexistent")
	if err == nil {
		t.Error("UseContext should fail for non-existent context")
	}
}

func TestConfig_GetCurrentContext_NotSet(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	_, err = cfg.GetCurrentContext()
	if err == nil {
		t.Error("GetCurrentContext should fail when no current context")
	}
}

func TestConfig_ResolveContext(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("ctx1", &Context{APIKey: "key1"})
	cfg.AddContext("ctx2", &Context{APIKey: "key2"})
	cfg.UseContext("ctx1")

	// Resolve by name
	ctx, err := cfg.ResolveContext("ctx2")
	if err != nil {
		t.Fatalf("ResolveContext(ctx2) error: %v", err)
	}
	if ctx.APIKey != "key2" {
		t.Errorf("APIKey = %q, want %q", ctx.APIKey, "key2")
	}

	// Resolve current (empty name)
	ctx, err = cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext('') error: %v", err)
	}
	if ctx.APIKey != "key1" {
		t.Errorf("APIKey = %q, want %q", ctx.APIKey, "key1")
	}
}

func TestConfig_ResolveProvider_ByName(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, _ := LoadConfigWithPath(configPath)
	cfg.AddContext("kling-prod", &Context{Provider: "kling", APIKey: "ak:sk"})
	cfg.AddContext("replicate", &Context{Provider: "replicate", APIKey: "r8_x"})

	ctx, err := cfg.ResolveProvider("kling-prod", "kling")
	if err != nil {
		t.Fatalf("ResolveProvider error: %v", err)
	}
	if ctx.APIKey != "ak:sk" {
		t.Errorf("APIKey = %q, want %q", ctx.APIKey, "ak:sk")
	}

	// Named context bound to a different provider
	_, err = cfg.ResolveProvider("replicate", "kling")
	if err == nil {
		t.Error("ResolveProvider should reject a context for another provider")
	}
}

func TestConfig_ResolveProvider_Current(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, _ := LoadConfigWithPath(configPath)
	cfg.AddContext("a", &Context{Provider: "kling", APIKey: "a-key"})
	cfg.AddContext("b", &Context{Provider: "kling", APIKey: "b-key"})
	cfg.UseContext("b")

	// Current context wins even with multiple matches
	ctx, err := cfg.ResolveProvider("", "kling")
	if err != nil {
		t.Fatalf("ResolveProvider error: %v", err)
	}
	if ctx.APIKey != "b-key" {
		t.Errorf("APIKey = %q, want %q", ctx.APIKey, "b-key")
	}
}

func TestConfig_ResolveProvider_SingleMatch(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, _ := LoadConfigWithPath(configPath)
	cfg.AddContext("kling-ctx", &Context{Provider: "kling", APIKey: "ak:sk"})
	cfg.AddContext("runway-ctx", &Context{Provider: "runway", APIKey: "rw-key"})
	cfg.UseContext("kling-ctx")

	// Current context is for another provider; the single runway
	// context is picked.
	ctx, err := cfg.ResolveProvider("", "runway")
	if err != nil {
		t.Fatalf("ResolveProvider error: %v", err)
	}
	if ctx.APIKey != "rw-key" {
		t.Errorf("APIKey = %q, want %q", ctx.APIKey, "rw-key")
	}
}

func TestConfig_ResolveProvider_NoMatch(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, _ := LoadConfigWithPath(configPath)

	_, err := cfg.ResolveProvider("", "gemini")
	if err == nil {
		t.Error("ResolveProvider should fail with no matching context")
	}
}

func TestConfig_ResolveProvider_Ambiguous(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, _ := LoadConfigWithPath(configPath)
	cfg.AddContext("a", &Context{Provider: "openai", APIKey: "a"})
	cfg.AddContext("b", &Context{Provider: "openai", APIKey: "b"})

	_, err := cfg.ResolveProvider("", "openai")
	if err == nil {
		t.Fatal("ResolveProvider should fail with multiple matches and no current context")
	}
	if !strings.Contains(err.Error(), "a, b") {
		t.Errorf("error should list candidates, got %v", err)
	}
}

func TestConfig_ContextsFor(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, _ := LoadConfigWithPath(configPath)
	cfg.AddContext("z-kling", &Context{Provider: "kling"})
	cfg.AddContext("a-kling", &Context{Provider: "kling"})
	cfg.AddContext("runway", &Context{Provider: "runway"})

	names := cfg.ContextsFor("kling")
	if len(names) != 2 || names[0] != "a-kling" || names[1] != "z-kling" {
		t.Errorf("ContextsFor(kling) = %v, want [a-kling z-kling]", names)
	}
}

func TestConfig_ListContexts(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg.AddContext("production", &Context{})
	cfg.AddContext("staging", &Context{})
	cfg.AddContext("development", &Context{})

	names := cfg.ListContexts()

	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3", len(names))
	}

	// Sorted output
	want := []string{"development", "production", "staging"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestConfig_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Create and save config
	cfg1, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	cfg1.Bucket = &BucketSettings{
		Name:     "media",
		Endpoint: "https://acc.r2.cloudflarestorage.com",
		Prefix:   "staging",
	}
	cfg1.AddContext("test", &Context{
		Provider:     "replicate",
		APIKey:       "r8_secret",
		BaseURL:      "https://api.test.com",
		PollInterval: jsontime.Duration(2 * time.Second),
		MaxWait:      jsontime.Duration(20 * time.Minute),
	})
	cfg1.UseContext("test")

	// Load again
	cfg2, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg2.CurrentContext != "test" {
		t.Errorf("CurrentContext = %q, want %q", cfg2.CurrentContext, "test")
	}

	ctx, err := cfg2.GetContext("test")
	if err != nil {
		t.Fatalf("GetContext error: %v", err)
	}
	if ctx.Provider != "replicate" {
		t.Errorf("Provider = %q, want %q", ctx.Provider, "replicate")
	}
	if ctx.APIKey != "r8_secret" {
		t.Errorf("APIKey = %q, want %q", ctx.APIKey, "r8_secret")
	}
	if ctx.PollInterval.Duration() != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", ctx.PollInterval.Duration())
	}
	if ctx.MaxWait.Duration() != 20*time.Minute {
		t.Errorf("MaxWait = %v, want 20m", ctx.MaxWait.Duration())
	}

	if cfg2.Bucket == nil {
		t.Fatal("Bucket should persist")
	}
	if cfg2.Bucket.Name != "media" || cfg2.Bucket.Prefix != "staging" {
		t.Errorf("Bucket = %+v", cfg2.Bucket)
	}
}

func TestConfig_Path(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := LoadConfigWithPath(configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}
