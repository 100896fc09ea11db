package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RetryCfg holds the download fabric's retry/backoff tunables (§4.4).
type RetryCfg struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	DelayMin    time.Duration `yaml:"delay_min" json:"delay_min"`
	DelayMax    time.Duration `yaml:"delay_max" json:"delay_max"`
}

// TrieCfg holds the matcher's virtual-suffix and fuzzy-wildcard settings
// (§4.1).
type TrieCfg struct {
	VirtualSuffixes []string `yaml:"virtual_suffixes" json:"virtual_suffixes"`
	FuzzyChar       string   `yaml:"fuzzy_char" json:"fuzzy_char"`
}

// SuffixRunes converts VirtualSuffixes to the single-rune set the trie's
// FindOptions.ExtraChallenges expects, dropping any entry that is not
// exactly one rune since the matcher can only virtually append a single
// character at a time.
func (t TrieCfg) SuffixRunes() []rune {
	out := make([]rune, 0, len(t.VirtualSuffixes))
	for _, s := range t.VirtualSuffixes {
		if r := []rune(s); len(r) == 1 {
			out = append(out, r[0])
		}
	}
	return out
}

// CacheCfg holds the HTTP lookup API's two-tier cache settings (§6).
type CacheCfg struct {
	RedisURL string        `yaml:"redis_url" json:"redis_url"`
	MongoURI string        `yaml:"mongo_uri" json:"mongo_uri"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	L1Size   int           `yaml:"l1_size" json:"l1_size"`
}

// SuggestCfg holds the typeahead index's Meilisearch connection (§6).
type SuggestCfg struct {
	Host      string `yaml:"host" json:"host"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	IndexName string `yaml:"index_name" json:"index_name"`
}

// GeocoderConfig is the top-level configuration struct: a yaml-tagged
// struct loaded once at startup, with environment-variable overrides for
// DataDir, ResourceID, ReferenceDB, ListenAddr and the Redis/Mongo cache
// endpoints, the fields an operator is likeliest to flip per deployment.
// The Suggest settings have no environment override.
type GeocoderConfig struct {
	DataDir     string     `yaml:"data_dir" json:"data_dir"`
	ResourceID  string     `yaml:"resource_id" json:"resource_id"`
	ReferenceDB string     `yaml:"reference_db" json:"reference_db"`
	ListenAddr  string     `yaml:"listen_addr" json:"listen_addr"`
	Retry       RetryCfg   `yaml:"retry" json:"retry"`
	Trie        TrieCfg    `yaml:"trie" json:"trie"`
	Cache       CacheCfg   `yaml:"cache" json:"cache"`
	Suggest     SuggestCfg `yaml:"suggest" json:"suggest"`
}

// C is the process-wide loaded configuration.
var C GeocoderConfig

// Defaults returns a GeocoderConfig with the same constants the pipeline
// and download fabric packages would otherwise hardcode, so a caller that
// skips Load still gets a runnable configuration.
func Defaults() GeocoderConfig {
	return GeocoderConfig{
		DataDir:     "./data",
		ReferenceDB: "./data/reference.db",
		ListenAddr:  ":8080",
		Retry: RetryCfg{
			MaxAttempts: 5,
			DelayMin:    100 * time.Millisecond,
			DelayMax:    5100 * time.Millisecond,
		},
		Trie: TrieCfg{
			VirtualSuffixes: []string{"区", "町", "市", "村"},
			FuzzyChar:       "?",
		},
		Cache: CacheCfg{
			RedisURL: "redis://localhost:6379/0",
			MongoURI: "mongodb://localhost:27017",
			TTL:      24 * time.Hour,
			L1Size:   4096,
		},
		Suggest: SuggestCfg{
			Host:      "http://localhost:7700",
			IndexName: "addresses",
		},
	}
}

// Load reads path (YAML) over Defaults() via os.ReadFile + yaml.Unmarshal,
// then applies an environment-variable overlay through viper for the
// handful of connection-string fields deployments override without
// touching the checked-in YAML.
func Load(path string) error {
	C = Defaults()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &C); err != nil {
			return fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// a missing config file falls back to Defaults() rather than
		// refusing to start.
	default:
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	v := viper.New()
	v.SetEnvPrefix("JAGEOCODER")
	v.AutomaticEnv()
	for _, key := range []string{"data_dir", "resource_id", "reference_db", "listen_addr", "cache_redis_url", "cache_mongo_uri"} {
		v.BindEnv(key)
	}

	if s := v.GetString("data_dir"); s != "" {
		C.DataDir = s
	}
	if s := v.GetString("resource_id"); s != "" {
		C.ResourceID = s
	}
	if s := v.GetString("reference_db"); s != "" {
		C.ReferenceDB = s
	}
	if s := v.GetString("listen_addr"); s != "" {
		C.ListenAddr = s
	}
	if s := v.GetString("cache_redis_url"); s != "" {
		C.Cache.RedisURL = s
	}
	if s := v.GetString("cache_mongo_uri"); s != "" {
		C.Cache.MongoURI = s
	}
	return nil
}
