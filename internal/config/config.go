package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/core/similarity"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

type GazetteerConfig struct {
	Source string `toml:"source"` // file | memgraph
	Path   string `toml:"path"`
	Table  string `toml:"table"` // sqlite sources only
}

type ResolverConfig struct {
	FuzzyThreshold     float64            `toml:"fuzzy_threshold"`
	TypePriority       []string           `toml:"type_priority"`
	MaxCandidates      int                `toml:"max_candidates"`
	Order              string             `toml:"order"` // appearance | confidence
	ContextualTiebreak bool               `toml:"contextual_tiebreak"`
	CollapseEntities   bool               `toml:"collapse_entities"`
	Weights            similarity.Weights `toml:"weights"`
}

type ExtractionConfig struct {
	NER           string   `toml:"ner"` // prose | llm | off
	NERLabels     []string `toml:"ner_labels"`
	Chunker       bool     `toml:"chunker"`
	Capitalized   bool     `toml:"capitalized"`
	GeoIndicators bool     `toml:"geo_indicators"`
	GazetteerScan bool     `toml:"gazetteer_scan"`
	Parallel      bool     `toml:"parallel"`
	StopWords     []string `toml:"stop_words"`
	LLMPrompt     string   `toml:"llm_prompt"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ServerConfig struct {
	Port      string  `toml:"port"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 disables
	Burst     int     `toml:"burst"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // json | text
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type Config struct {
	Gazetteer  GazetteerConfig  `toml:"gazetteer"`
	Resolver   ResolverConfig   `toml:"resolver"`
	Extraction ExtractionConfig `toml:"extraction"`
	LLM        LLMConfig        `toml:"llm"`
	Memgraph   MemgraphConfig   `toml:"memgraph"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

func Default() *Config {
	return &Config{
		Gazetteer: GazetteerConfig{
			Source: "file",
			Path:   "data/worldcities.csv",
			Table:  "places",
		},
		Resolver: ResolverConfig{
			FuzzyThreshold: 80,
			TypePriority:   []string{"City", "State", "Country"},
			MaxCandidates:  32,
			Order:          "appearance",
			Weights:        similarity.DefaultWeights,
		},
		Extraction: ExtractionConfig{
			NER:           "prose",
			NERLabels:     []string{"GPE", "LOC", "FAC", "ORG"},
			Chunker:       true,
			Capitalized:   true,
			GeoIndicators: true,
			GazetteerScan: true,
			Parallel:      true,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "gpt-oss:latest",
			BaseURL:  "http://localhost:11434",
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Server: ServerConfig{
			Port:      "8080",
			RateLimit: 50,
			Burst:     100,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to the defaults
// otherwise. CONFIG_PATH overrides an empty path.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file settings with environment variables when present.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("GAZETTEER_PATH"); v != "" {
		c.Gazetteer.Path = v
	}
	if v := os.Getenv("GAZETTEER_SOURCE"); v != "" {
		c.Gazetteer.Source = v
	}
	if v := os.Getenv("FUZZY_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &model.ConfigurationError{Field: "FUZZY_THRESHOLD", Reason: fmt.Sprintf("not a number: %q", v)}
		}
		c.Resolver.FuzzyThreshold = t
	}
	if v := os.Getenv("NER_BACKEND"); v != "" {
		c.Extraction.NER = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

func (c *Config) Validate() error {
	if err := ValidateThreshold(c.Resolver.FuzzyThreshold); err != nil {
		return err
	}
	if _, err := c.Priority(); err != nil {
		return err
	}
	if c.Resolver.MaxCandidates < 0 {
		return &model.ConfigurationError{Field: "resolver.max_candidates", Reason: "must not be negative"}
	}
	switch c.Resolver.Order {
	case "", "appearance", "confidence":
	default:
		return &model.ConfigurationError{Field: "resolver.order", Reason: fmt.Sprintf("unknown order %q", c.Resolver.Order)}
	}
	if err := c.Resolver.Weights.Validate(); err != nil {
		return &model.ConfigurationError{Field: "resolver.weights", Reason: err.Error()}
	}
	switch strings.ToLower(c.Extraction.NER) {
	case "", "prose", "llm", "off":
	default:
		return &model.ConfigurationError{Field: "extraction.ner", Reason: fmt.Sprintf("unknown backend %q", c.Extraction.NER)}
	}
	switch strings.ToLower(c.Gazetteer.Source) {
	case "", "file":
		if c.Gazetteer.Path == "" {
			return &model.ConfigurationError{Field: "gazetteer.path", Reason: "must be set for file sources"}
		}
	case "memgraph":
	default:
		return &model.ConfigurationError{Field: "gazetteer.source", Reason: fmt.Sprintf("unknown source %q", c.Gazetteer.Source)}
	}
	return nil
}

func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 100 {
		return &model.ConfigurationError{Field: "resolver.fuzzy_threshold", Reason: fmt.Sprintf("%v is outside [0, 100]", t)}
	}
	return nil
}

// Priority parses resolver.type_priority. Types left out of the list are
// not searched at all.
func (c *Config) Priority() ([]model.EntityType, error) {
	if len(c.Resolver.TypePriority) == 0 {
		return model.DefaultPriority, nil
	}
	out := make([]model.EntityType, 0, len(c.Resolver.TypePriority))
	seen := make(map[model.EntityType]bool)
	for _, s := range c.Resolver.TypePriority {
		t, err := model.ParseEntityType(s)
		if err != nil {
			return nil, &model.ConfigurationError{Field: "resolver.type_priority", Reason: err.Error()}
		}
		if seen[t] {
			return nil, &model.ConfigurationError{Field: "resolver.type_priority", Reason: fmt.Sprintf("%s listed twice", t)}
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}
