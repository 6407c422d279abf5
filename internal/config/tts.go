package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"voicepage/internal/domain/audio"
)

// TTSConfig is the voice configuration read from the TTS YAML file.
type TTSConfig struct {
	Model          string  `yaml:"model"`
	Voice          string  `yaml:"voice"`
	Speed          float64 `yaml:"speed"`
	ResponseFormat string  `yaml:"response_format"`
	Instructions   string  `yaml:"instructions"`
	// MaxChars is the longest text sent in a single API call.
	MaxChars    int `yaml:"max_chars"`
	Concurrency int `yaml:"concurrency"`
}

// DefaultTTSConfig mirrors the OpenAI defaults.
func DefaultTTSConfig() TTSConfig {
	return TTSConfig{
		Model:          "tts-1",
		Voice:          "alloy",
		Speed:          1.0,
		ResponseFormat: string(audio.FormatMP3),
		MaxChars:       4096,
		Concurrency:    2,
	}
}

// LoadTTSConfig reads path and fills unset fields with defaults.
// A missing file is not an error.
func LoadTTSConfig(path string) (TTSConfig, error) {
	cfg := DefaultTTSConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "read tts config")
	}

	var file TTSConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, errors.Wrapf(err, "parse tts config %s", path)
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.Voice != "" {
		cfg.Voice = file.Voice
	}
	if file.Speed != 0 {
		cfg.Speed = file.Speed
	}
	if file.ResponseFormat != "" {
		cfg.ResponseFormat = file.ResponseFormat
	}
	if file.Instructions != "" {
		cfg.Instructions = file.Instructions
	}
	if file.MaxChars != 0 {
		cfg.MaxChars = file.MaxChars
	}
	if file.Concurrency != 0 {
		cfg.Concurrency = file.Concurrency
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges accepted by the speech endpoint.
func (c TTSConfig) Validate() error {
	if c.Speed < 0.25 || c.Speed > 4.0 {
		return errors.Errorf("tts speed %.2f out of range [0.25, 4.0]", c.Speed)
	}
	if !audio.Format(c.ResponseFormat).Valid() {
		return errors.Wrapf(audio.ErrUnknownFormat, "response_format %q", c.ResponseFormat)
	}
	if c.MaxChars <= 0 {
		return errors.Errorf("max_chars must be positive, got %d", c.MaxChars)
	}
	if c.Concurrency <= 0 {
		return errors.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}

// Format returns ResponseFormat as an audio.Format.
func (c TTSConfig) Format() audio.Format {
	return audio.Format(c.ResponseFormat)
}
