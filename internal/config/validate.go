package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateTelegram(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Provider {
	case "", "keyword":
		return nil
	case "openrouter":
	default:
		return fmt.Errorf("classifier.provider: unsupported value %q", c.Classifier.Provider)
	}
	if c.Classifier.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/bandfinder/config.toml"
		}
		return fmt.Errorf("classifier.api_key is required when classifier.provider is %q. Edit %s (create with 'bandfinder config init')", c.Classifier.Provider, defaultPath)
	}
	if c.Classifier.BaseURL == "" {
		return errors.New("classifier.base_url must be set")
	}
	if c.Classifier.Model == "" {
		return errors.New("classifier.model must be set")
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if c.Telegram.BotToken == "" {
		return nil
	}
	if c.Telegram.BaseURL == "" {
		return errors.New("telegram.base_url must be set when telegram.bot_token is configured")
	}
	if c.Telegram.RequestTimeout <= 0 {
		return errors.New("telegram.request_timeout must be positive")
	}
	return nil
}
