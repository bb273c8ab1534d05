package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the intake configuration from a YAML file. Keys missing from
// the file keep their built-in defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid intake config: %w", err)
	}

	return config, nil
}

// Default returns the built-in intake configuration.
func Default() *Config {
	return &Config{
		Greeting: "Hi! I'm the screening assistant and I'll collect a few details for your application. " +
			"Type 'exit' at any time to stop.",
		Farewell: "Thank you for your time! Our team will review your details and contact you " +
			"within 2-3 business days.",
		Completion:   "Thank you! Our technical team will review your profile together with these questions.",
		ExitKeywords: []string{"exit", "quit", "bye", "goodbye"},
		Fields: []Field{
			{Name: "name", Prompt: "What's your full name?", Hint: "Please enter your full name.", Ack: "Nice to meet you, %s!"},
			{Name: "email", Prompt: "What's your email address?", Hint: "Please enter a valid email address, e.g. jane.doe@example.com."},
			{Name: "phone", Prompt: "What's your phone number?", Hint: "Please enter a phone number with 7 to 15 digits; spaces, dashes, dots, parentheses and a leading + are allowed."},
			{Name: "experience", Prompt: "How many years of professional experience do you have?", Hint: "Please enter a number of years, e.g. 3 or 2.5."},
			{Name: "position", Prompt: "What position are you applying for?", Hint: "Please enter the position you are interested in."},
			{Name: "location", Prompt: "What's your current location (city, country)?", Hint: "Please enter your current location."},
			{Name: "tech_stack", Prompt: "Please list your tech stack: languages, frameworks, databases and tools.", Hint: "Please list at least one technology, separated by commas, e.g. Python, Django, PostgreSQL."},
		},
		Questions: QuestionsConfig{
			Min:      3,
			Max:      5,
			Fallback: 3,
		},
		Phone: PhoneConfig{
			MinDigits: 7,
			MaxDigits: 15,
		},
		Experience: ExperienceRange{
			MaxYears: 60,
		},
	}
}

// validateConfig checks the intake configuration
func validateConfig(config *Config) error {
	if len(config.Fields) != len(FieldNames) {
		return fmt.Errorf("expected %d fields, got %d", len(FieldNames), len(config.Fields))
	}

	for i, field := range config.Fields {
		if field.Name != FieldNames[i] {
			return fmt.Errorf("field %d must be %q, got %q", i, FieldNames[i], field.Name)
		}
		if field.Prompt == "" {
			return fmt.Errorf("field %q must have a prompt", field.Name)
		}
		if field.Hint == "" {
			return fmt.Errorf("field %q must have a hint", field.Name)
		}
	}

	if len(config.ExitKeywords) == 0 {
		return fmt.Errorf("exit_keywords must not be empty")
	}

	q := config.Questions
	if q.Min < 1 {
		return fmt.Errorf("questions.min must be at least 1")
	}
	if q.Max < q.Min {
		return fmt.Errorf("questions.max (%d) must not be less than questions.min (%d)", q.Max, q.Min)
	}
	if q.Max > 10 {
		return fmt.Errorf("questions.max must not exceed 10")
	}
	if q.Fallback < q.Min || q.Fallback > q.Max {
		return fmt.Errorf("questions.fallback must be between min and max")
	}

	if config.Phone.MinDigits <= 0 || config.Phone.MaxDigits < config.Phone.MinDigits {
		return fmt.Errorf("phone digit bounds are invalid")
	}

	if config.Experience.MaxYears <= 0 {
		return fmt.Errorf("experience.max_years must be positive")
	}

	return nil
}
