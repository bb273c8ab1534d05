package config

// Config describes the intake conversation: prompts, field order and the
// limits applied while generating technical questions.
type Config struct {
	Greeting     string          `yaml:"greeting"`
	Farewell     string          `yaml:"farewell"`
	Completion   string          `yaml:"completion"`
	ExitKeywords []string        `yaml:"exit_keywords"`
	Fields       []Field         `yaml:"fields"`
	Questions    QuestionsConfig `yaml:"questions"`
	Phone        PhoneConfig     `yaml:"phone"`
	Experience   ExperienceRange `yaml:"experience"`
}

// Field holds the prompt texts of one collected field.
type Field struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
	Hint   string `yaml:"hint"`
	Ack    string `yaml:"ack"`
}

// QuestionsConfig bounds the number of questions kept per technology.
type QuestionsConfig struct {
	Min          int    `yaml:"min"`
	Max          int    `yaml:"max"`
	Fallback     int    `yaml:"fallback"`
	FallbackBank string `yaml:"fallback_bank"`
}

type PhoneConfig struct {
	MinDigits int `yaml:"min_digits"`
	MaxDigits int `yaml:"max_digits"`
}

type ExperienceRange struct {
	MaxYears float64 `yaml:"max_years"`
}

// FieldNames is the fixed collection order.
var FieldNames = []string{"name", "email", "phone", "experience", "position", "location", "tech_stack"}

func (c *Config) GetTotalFields() int {
	return len(c.Fields)
}

// GetField returns the field definition by name.
func (c *Config) GetField(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (c *Config) GetMinQuestions() int {
	return c.Questions.Min
}

func (c *Config) GetMaxQuestions() int {
	return c.Questions.Max
}
