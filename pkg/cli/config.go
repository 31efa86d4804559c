package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/mediagen/pkg/jsontime"
)

const (
	// DefaultBaseDir is the configuration directory name under $HOME
	DefaultBaseDir = ".mediagen"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config is the on-disk CLI configuration
type Config struct {
	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// Bucket configures the staging bucket shared by all contexts
	Bucket *BucketSettings `yaml:"bucket,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context binds one provider to its credential and optional overrides
type Context struct {
	// Name is the context name
	Name string `yaml:"name"`

	// Provider names the provider this context drives: kling,
	// replicate, elevenlabs, runway, openai, gemini or stability
	Provider string `yaml:"provider"`

	// APIKey is the provider credential. Kling expects the
	// "ACCESS_KEY:SECRET_KEY" form
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL is the API base URL (optional, uses default if empty)
	BaseURL string `yaml:"base_url,omitempty"`

	// PollInterval overrides the provider's poll cadence (optional)
	PollInterval jsontime.Duration `yaml:"poll_interval,omitempty"`

	// MaxWait overrides the provider's polling budget (optional)
	MaxWait jsontime.Duration `yaml:"max_wait,omitempty"`

	// Extra stores provider-specific settings, e.g. a default voice
	Extra map[string]string `yaml:"extra,omitempty"`
}

// BucketSettings configures the S3-compatible bucket used to stage
// local input files for providers that only accept remote media
type BucketSettings struct {
	// Name is the bucket name
	Name string `yaml:"name"`

	// Endpoint overrides the S3 endpoint (R2, MinIO). Empty for AWS
	Endpoint string `yaml:"endpoint,omitempty"`

	// Region defaults to "auto"
	Region string `yaml:"region,omitempty"`

	// AccessKeyID and SecretAccessKey are static credentials
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`

	// PublicURL is the CDN base public objects are served from
	PublicURL string `yaml:"public_url,omitempty"`

	// Prefix is prepended to staging keys
	Prefix string `yaml:"prefix,omitempty"`
}

// LoadConfig loads or creates the configuration at the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		paths, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty config file
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Ensure contexts map is initialized
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}

	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds a new context
func (c *Config) AddContext(name string, ctx *Context) error {
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the context by name, or current context if name is empty
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		return c.GetCurrentContext()
	}
	return c.GetContext(name)
}

// ResolveProvider picks the context for a provider command: the named
// context when name is given, otherwise the current context when it
// drives this provider, otherwise the only context configured for the
// provider.
func (c *Config) ResolveProvider(name, provider string) (*Context, error) {
	if name != "" {
		ctx, err := c.GetContext(name)
		if err != nil {
			return nil, err
		}
		if ctx.Provider != "" && ctx.Provider != provider {
			return nil, fmt.Errorf("context %q is configured for provider %q, not %q", name, ctx.Provider, provider)
		}
		return ctx, nil
	}
	if c.CurrentContext != "" {
		if ctx, err := c.GetCurrentContext(); err == nil && ctx.Provider == provider {
			return ctx, nil
		}
	}
	matches := c.ContextsFor(provider)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no context configured for provider %q", provider)
	case 1:
		return c.Contexts[matches[0]], nil
	default:
		return nil, fmt.Errorf("multiple contexts configured for provider %q (%s), pick one with --context",
			provider, strings.Join(matches, ", "))
	}
}

// ListContexts returns all context names, sorted
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContextsFor returns the names of contexts configured for provider, sorted
func (c *Config) ContextsFor(provider string) []string {
	var names []string
	for name, ctx := range c.Contexts {
		if ctx.Provider == provider {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetExtra returns an extra value for the context
func (ctx *Context) GetExtra(key string) string {
	if ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra sets an extra value for the context
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
