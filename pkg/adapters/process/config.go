package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for process card entries that cannot be built.
var ErrInvalidConfig = errors.New("invalid process card config")

// CardConfig declares a card whose processing is delegated to a local program.
type CardConfig struct {
	ID          string               `yaml:"id" json:"id"`
	Name        string               `yaml:"name" json:"name"`
	Category    domain.Category      `yaml:"category" json:"category"`
	Description string               `yaml:"description" json:"description"`
	Command     string               `yaml:"command" json:"command"`
	Args        []string             `yaml:"args" json:"args"`
	Environment map[string]string    `yaml:"env" json:"env"`
	Timeout     string               `yaml:"timeout" json:"timeout"`
	Signature   domain.CardSignature `yaml:"signature" json:"signature"`
}

// ConfigFile represents the structure of a process cards file.
type ConfigFile struct {
	Cards []CardConfig `yaml:"cards" json:"cards"`
}

// Meta returns the card metadata. Process cards always have side effects.
func (c CardConfig) Meta() domain.CardMeta {
	meta := domain.CardMeta{
		ID:          c.ID,
		Name:        c.Name,
		Category:    c.Category,
		Description: c.Description,
		Tags:        []string{"process"},
		SideEffects: true,
	}
	if meta.Name == "" {
		meta.Name = c.ID
	}
	if !meta.Category.Valid() {
		meta.Category = domain.CategoryCustom
	}
	return meta
}

func (c CardConfig) validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidConfig)
	}
	if c.Command == "" {
		return fmt.Errorf("%w: card %s has no command", ErrInvalidConfig, c.ID)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("%w: card %s timeout: %v", ErrInvalidConfig, c.ID, err)
		}
	}
	return c.Signature.Validate()
}

// LoadConfig reads a configuration file (YAML or JSON). A missing file yields no cards.
func LoadConfig(path string) ([]CardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read process cards config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	seen := make(map[string]bool, len(cfg.Cards))
	for _, c := range cfg.Cards {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate card id %s", ErrInvalidConfig, c.ID)
		}
		seen[c.ID] = true
	}
	return cfg.Cards, nil
}
