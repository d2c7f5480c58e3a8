package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/emoji-mirror/internal/expression"
)

//go:embed tuning.yaml
var tuningYAML []byte

type Config struct {
	Landmark LandmarkConfig
	Database DatabaseConfig
	MySQL    MySQLConfig
	Web      WebConfig
	Tuning   TuningConfig
}

type LandmarkConfig struct {
	URL   string // defaults to http://localhost:9090
	Model string // model name for reference only (e.g. face_landmarker_v2)
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist profile HNSW index (optional, if empty index is rebuilt on startup)
}

type MySQLConfig struct {
	DSN string // MySQL DSN used as profile store when DATABASE_URL is not set
}

type WebConfig struct {
	Host string
	Port int
}

// TuningConfig is the embedded tuning table: classifier thresholds and
// the category glyph overrides.
type TuningConfig struct {
	Classifier expression.Tuning `yaml:"classifier"`
	Glyphs     map[string]string `yaml:"glyphs"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	tuning := TuningConfig{Classifier: expression.DefaultTuning()}
	if err := yaml.Unmarshal(tuningYAML, &tuning); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded tuning.yaml: " + err.Error())
	}

	return &Config{
		Landmark: LandmarkConfig{
			URL:   os.Getenv("LANDMARK_URL"),
			Model: os.Getenv("LANDMARK_MODEL"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		MySQL: MySQLConfig{
			DSN: os.Getenv("MYSQL_DSN"),
		},
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8080),
		},
		Tuning: tuning,
	}
}

// ClassifierTuning returns the tuning values for the expression classifier.
func (c *Config) ClassifierTuning() expression.Tuning {
	return c.Tuning.Classifier
}

// Glyphs returns the category glyph table: built-in defaults with any
// overrides from the embedded tuning file applied.
func (c *Config) Glyphs() map[expression.Category]string {
	glyphs := expression.DefaultGlyphs()
	for name, glyph := range c.Tuning.Glyphs {
		if glyph != "" {
			glyphs[expression.Category(name)] = glyph
		}
	}
	return glyphs
}
