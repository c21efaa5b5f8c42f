package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreFile   = "file"
	StoreSQLite = "sqlite"

	EngineNone    = "none"
	EngineBackend = "backend"
	EngineGoogle  = "google"

	ConfigFileName = "config.yaml"
	LogFileName    = "pgrkam.log"
)

// Config holds every setting the terminal client needs. Values come from
// defaults, then <state_dir>/config.yaml, then environment variables.
type Config struct {
	Environment string        `yaml:"environment"`
	APIURL      string        `yaml:"api_url"`
	StateDir    string        `yaml:"state_dir"`
	Store       string        `yaml:"store"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Speech      SpeechConfig  `yaml:"speech"`
}

type SpeechConfig struct {
	TTSEngine       string        `yaml:"tts_engine"`
	STTEngine       string        `yaml:"stt_engine"`
	Player          string        `yaml:"player"`
	Recorder        string        `yaml:"recorder"`
	AutoSpeak       bool          `yaml:"auto_speak"`
	AutoSpeakDelay  time.Duration `yaml:"auto_speak_delay"`
	CredentialsFile string        `yaml:"credentials_file"`
}

func DefaultConfig() *Config {
	stateDir := ".pgrkam"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".pgrkam")
	}

	return &Config{
		Environment: EnvProduction,
		APIURL:      "http://localhost:8000",
		StateDir:    stateDir,
		Store:       StoreFile,
		Speech: SpeechConfig{
			TTSEngine:      EngineBackend,
			STTEngine:      EngineNone,
			Player:         "mpg123 -q -",
			Recorder:       "arecord -q -f S16_LE -r 16000 -c 1 -t raw",
			AutoSpeakDelay: 500 * time.Millisecond,
		},
	}
}

// LoadConfig resolves the configuration for this run.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv("PGRKAM_STATE_DIR"); dir != "" {
		cfg.StateDir = dir
	}

	if err := loadConfigFile(filepath.Join(cfg.StateDir, ConfigFileName), cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile overlays path onto cfg. A missing file is not an error.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	setString("PGRKAM_ENV", &cfg.Environment)
	setString("PGRKAM_API_URL", &cfg.APIURL)
	setString("PGRKAM_STATE_DIR", &cfg.StateDir)
	setString("PGRKAM_STORE", &cfg.Store)
	setString("PGRKAM_TTS_ENGINE", &cfg.Speech.TTSEngine)
	setString("PGRKAM_STT_ENGINE", &cfg.Speech.STTEngine)
	setString("PGRKAM_PLAYER", &cfg.Speech.Player)
	setString("PGRKAM_RECORDER", &cfg.Speech.Recorder)
	setString("GOOGLE_APPLICATION_CREDENTIALS", &cfg.Speech.CredentialsFile)

	if v := os.Getenv("PGRKAM_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PGRKAM_HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = d
	}

	if v := os.Getenv("PGRKAM_AUTO_SPEAK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PGRKAM_AUTO_SPEAK %q: %w", v, err)
		}
		cfg.Speech.AutoSpeak = b
	}

	if v := os.Getenv("PGRKAM_AUTO_SPEAK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PGRKAM_AUTO_SPEAK_DELAY %q: %w", v, err)
		}
		cfg.Speech.AutoSpeakDelay = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api url must not be empty")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state dir must not be empty")
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreFile, StoreSQLite)
	}
	switch c.Speech.TTSEngine {
	case EngineNone, EngineBackend, EngineGoogle:
	default:
		return fmt.Errorf("unknown tts engine %q", c.Speech.TTSEngine)
	}
	switch c.Speech.STTEngine {
	case EngineNone, EngineGoogle:
	default:
		return fmt.Errorf("unknown stt engine %q", c.Speech.STTEngine)
	}
	if c.HTTPTimeout < 0 || c.Speech.AutoSpeakDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func (c *Config) LogFilePath() string {
	return filepath.Join(c.StateDir, LogFileName)
}
