package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/recdex/internal/corpus"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
)

// Config holds the recdex configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Recommend  RecommendConfig  `yaml:"recommend"`
	Cache      CacheConfig      `yaml:"cache"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig locates the item table and names its columns.
type CorpusConfig struct {
	Path    string        `yaml:"path"`
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig holds CSV header names.
type ColumnsConfig struct {
	ID    string   `yaml:"id"` // empty: ids from row number
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
	Keep  []string `yaml:"keep"`
}

// VectorizerConfig holds bag-of-words settings.
// Pointer fields distinguish an explicit zero from an absent key.
type VectorizerConfig struct {
	MinDF        float64   `yaml:"min_df"`
	MaxDF        *float64  `yaml:"max_df"`
	MaxFeatures  *int      `yaml:"max_features"` // 0 = unlimited
	NGramRange   []int     `yaml:"ngram_range"`
	StopWords    StopWords `yaml:"stop_words"`
	TokenPattern string    `yaml:"token_pattern"`
	Lowercase    *bool     `yaml:"lowercase"`
}

// StopWords is either the name of a built-in list ("english", "none")
// or an explicit list of words.
type StopWords struct {
	Name  string
	Words []string
}

// UnmarshalYAML accepts a scalar list name or a sequence of words.
func (s *StopWords) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.Name = strings.ToLower(strings.TrimSpace(node.Value))
		s.Words = nil
		return nil
	case yaml.SequenceNode:
		var words []string
		if err := node.Decode(&words); err != nil {
			return fmt.Errorf("stop_words: %w", err)
		}
		s.Name = ""
		s.Words = words
		return nil
	default:
		return fmt.Errorf("stop_words: expected a list name or a sequence, line %d", node.Line)
	}
}

// RecommendConfig holds query limits.
type RecommendConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
	Workers  int `yaml:"workers"` // 0 = GOMAXPROCS
}

// CacheConfig holds result cache settings. The cache is optional.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.Columns.Title == "" {
		c.Corpus.Columns.Title = "title"
	}
	if len(c.Corpus.Columns.Tags) == 0 {
		c.Corpus.Columns.Tags = []string{"tags"}
	}
	if c.Vectorizer.MaxDF == nil {
		maxDF := 1.0
		c.Vectorizer.MaxDF = &maxDF
	}
	if c.Vectorizer.MaxFeatures == nil {
		n := vectorizer.DefaultMaxFeatures
		c.Vectorizer.MaxFeatures = &n
	}
	if len(c.Vectorizer.NGramRange) == 0 {
		c.Vectorizer.NGramRange = []int{1, 1}
	}
	if c.Vectorizer.StopWords.Name == "" && c.Vectorizer.StopWords.Words == nil {
		c.Vectorizer.StopWords.Name = "english"
	}
	if c.Vectorizer.Lowercase == nil {
		lower := true
		c.Vectorizer.Lowercase = &lower
	}
	if c.Recommend.DefaultK <= 0 {
		c.Recommend.DefaultK = 5
	}
	if c.Recommend.MaxK <= 0 {
		c.Recommend.MaxK = 100
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "valkey"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Recommend.DefaultK > c.Recommend.MaxK {
		return fmt.Errorf("recommend.default_k (%d) must not exceed recommend.max_k (%d)",
			c.Recommend.DefaultK, c.Recommend.MaxK)
	}
	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "valkey", "redis":
		default:
			return fmt.Errorf("cache.driver must be \"valkey\" or \"redis\", got %q", c.Cache.Driver)
		}
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when cache is enabled")
		}
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format)
	}
	if _, err := c.Vectorizer.ToDomain(); err != nil {
		return fmt.Errorf("vectorizer: %w", err)
	}
	cols := c.Corpus.Columns.ToDomain()
	if err := cols.Validate(); err != nil {
		return fmt.Errorf("corpus.columns: %w", err)
	}
	return nil
}

// ToDomain converts the YAML settings into a validated vectorizer configuration.
// Call after ApplyDefaults.
func (v VectorizerConfig) ToDomain() (vectorizer.Config, error) {
	cfg := vectorizer.DefaultConfig()
	cfg.MinDF = v.MinDF
	if v.MaxDF != nil {
		cfg.MaxDF = *v.MaxDF
	}
	if v.MaxFeatures != nil {
		cfg.MaxFeatures = *v.MaxFeatures
	}
	if v.Lowercase != nil {
		cfg.Lowercase = *v.Lowercase
	}
	cfg.TokenPattern = v.TokenPattern

	switch len(v.NGramRange) {
	case 0:
	case 2:
		cfg.NGramRange = vectorizer.NGramRange{Min: v.NGramRange[0], Max: v.NGramRange[1]}
	default:
		return vectorizer.Config{}, fmt.Errorf("ngram_range must have two elements, got %d", len(v.NGramRange))
	}

	switch {
	case v.StopWords.Words != nil:
		cfg.StopWords = append([]string(nil), v.StopWords.Words...)
	case v.StopWords.Name == "", v.StopWords.Name == "english":
		cfg.StopWords = vectorizer.EnglishStopWords()
	case v.StopWords.Name == "none":
		cfg.StopWords = nil
	default:
		return vectorizer.Config{}, fmt.Errorf("stop_words: unknown list %q", v.StopWords.Name)
	}

	if err := cfg.Validate(); err != nil {
		return vectorizer.Config{}, err
	}
	return cfg, nil
}

// ToDomain converts header names into corpus columns.
func (c ColumnsConfig) ToDomain() corpus.Columns {
	return corpus.Columns{
		ID:    c.ID,
		Title: c.Title,
		Tags:  append([]string(nil), c.Tags...),
		Keep:  append([]string(nil), c.Keep...),
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
