package bot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kechako/mockingbird/mocking"
	"github.com/kechako/mockingbird/tts"
)

const (
	DefaultPrefix       = "repeat"
	DefaultDatabasePath = "mockingbird.db"
)

type Config struct {
	Token           string        `toml:"token"`
	CredentialsJSON string        `toml:"credentials_json"`
	CredentialsFile string        `toml:"credentials_file"`
	DatabasePath    string        `toml:"database_path"`
	Prefix          string        `toml:"prefix"`
	Speech          *SpeechConfig `toml:"speech"`
}

// SpeechConfig controls how mocked phrases are rendered and spoken.
type SpeechConfig struct {
	VoiceName    string `toml:"voice_name"`
	Language     string `toml:"language"`
	LanguageCode string `toml:"language_code"`
	MaxRate      int    `toml:"max_rate"`
	MinRate      int    `toml:"min_rate"`
}

func defaultSpeechConfig() *SpeechConfig {
	return &SpeechConfig{
		VoiceName:    mocking.DefaultVoiceName,
		Language:     mocking.DefaultLanguage,
		LanguageCode: tts.DefaultLanguageCode,
		MaxRate:      mocking.DefaultMaxRate,
		MinRate:      mocking.DefaultMinRate,
	}
}

// GeneratorOptions returns the options for a mocking.Generator rendering
// with this configuration.
func (sc *SpeechConfig) GeneratorOptions() []mocking.Option {
	return []mocking.Option{
		mocking.WithVoiceName(sc.VoiceName),
		mocking.WithLanguage(sc.Language),
		mocking.WithRateSchedule(mocking.RateSchedule{
			Max: sc.MaxRate,
			Min: sc.MinRate,
		}),
	}
}

func ReadConfigFile(name string) (*Config, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("bot.ReadConfigFile: %w", err)
	}
	defer file.Close()

	return ReadConfig(file)
}

func ReadConfig(r io.Reader) (*Config, error) {
	// expand ${VAR} references before decoding
	var buf bytes.Buffer
	s := bufio.NewScanner(r)
	for s.Scan() {
		buf.WriteString(os.ExpandEnv(s.Text()))
		buf.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("bot.ReadConfig: %w", err)
	}

	cfg := new(Config)
	_, err := toml.NewDecoder(&buf).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("bot.ReadConfig: %w", err)
	}
	cfg.withDefaults()

	if cfg.Speech.MaxRate < cfg.Speech.MinRate {
		return nil, fmt.Errorf("bot.ReadConfig: speech.max_rate %d is less than speech.min_rate %d", cfg.Speech.MaxRate, cfg.Speech.MinRate)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with every optional value set.
func DefaultConfig() *Config {
	cfg := new(Config)
	cfg.withDefaults()
	return cfg
}

func (cfg *Config) withDefaults() {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	def := defaultSpeechConfig()
	if cfg.Speech == nil {
		cfg.Speech = def
		return
	}
	if cfg.Speech.VoiceName == "" {
		cfg.Speech.VoiceName = def.VoiceName
	}
	if cfg.Speech.Language == "" {
		cfg.Speech.Language = def.Language
	}
	if cfg.Speech.LanguageCode == "" {
		cfg.Speech.LanguageCode = def.LanguageCode
	}
	if cfg.Speech.MaxRate == 0 {
		cfg.Speech.MaxRate = def.MaxRate
	}
	if cfg.Speech.MinRate == 0 {
		cfg.Speech.MinRate = def.MinRate
	}
}

func WriteConfigFile(name string, cfg *Config) error {
	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("bot.WriteConfigFile: %w", err)
	}
	defer file.Close()

	return WriteConfig(file, cfg)
}

func WriteConfig(w io.Writer, cfg *Config) error {
	err := toml.NewEncoder(w).Encode(cfg)
	if err != nil {
		return fmt.Errorf("bot.WriteConfig: %w", err)
	}

	return nil
}

func (cfg *Config) getCredentialsJSON() ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}

	if cfg.CredentialsFile != "" {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("bot.Config.getCredentialsJSON: %w", err)
		}
		return b, nil
	}

	return nil, nil
}
