// Package curriculum holds the fixed shadow-work program: how many intake
// questions and sessions a run contains, and the prompt templates used when
// talking to the model about a given slot.
package curriculum

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/shadownav-backend/internal/domain"
)

//go:embed curriculum.yaml
var rawConfig []byte

type StepConfig struct {
	Questions    int    `yaml:"questions"`
	Sessions     int    `yaml:"sessions"`
	SystemPrompt string `yaml:"system_prompt"`
	NextReply    string `yaml:"next_reply"`
}

type FallbackConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
	NextReply    string `yaml:"next_reply"`
}

type Config struct {
	Step1    StepConfig     `yaml:"step1"`
	Step2    StepConfig     `yaml:"step2"`
	Fallback FallbackConfig `yaml:"fallback"`
}

// Load parses the embedded program definition. It fails loudly at startup
// rather than serving a curriculum with zero slots.
func Load() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("parse curriculum config: %w", err)
	}
	if cfg.Step1.Questions <= 0 {
		return nil, fmt.Errorf("curriculum config: step1.questions must be positive")
	}
	if cfg.Step2.Sessions <= 0 {
		return nil, fmt.Errorf("curriculum config: step2.sessions must be positive")
	}
	if cfg.Step1.SystemPrompt == "" || cfg.Step2.SystemPrompt == "" || cfg.Fallback.SystemPrompt == "" {
		return nil, fmt.Errorf("curriculum config: missing system prompt")
	}
	return &cfg, nil
}

func (c *Config) Questions() int { return c.Step1.Questions }
func (c *Config) Sessions() int  { return c.Step2.Sessions }

// SystemPrompt renders the guide prompt for a curriculum slot.
func (c *Config) SystemPrompt(slot types.Slot) string {
	switch slot.Step {
	case 1:
		return fmt.Sprintf(c.Step1.SystemPrompt, slot.Number)
	case 2:
		return fmt.Sprintf(c.Step2.SystemPrompt, slot.Number)
	default:
		return c.Fallback.SystemPrompt
	}
}

// NextReply renders the canned transition message for action="next".
func (c *Config) NextReply(slot types.Slot) string {
	switch slot.Step {
	case 1:
		return fmt.Sprintf(c.Step1.NextReply, slot.Number)
	case 2:
		return fmt.Sprintf(c.Step2.NextReply, slot.Number)
	default:
		return c.Fallback.NextReply
	}
}
