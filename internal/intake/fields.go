package intake

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"screening-bot/internal/config"
)

const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldExperience = "experience"
	FieldPosition   = "position"
	FieldLocation   = "location"
	FieldTechStack  = "tech_stack"
)

const (
	maxNameLength = 100
	maxTextLength = 200
)

// Rule validates raw input for one field and returns the normalized value.
// Input that is empty after trimming is always rejected.
type Rule func(raw string) (string, bool)

// FieldDefinition is one step of the collection sequence.
type FieldDefinition struct {
	Name     string
	Prompt   string
	Hint     string
	Ack      string
	Validate Rule
}

var validate = validator.New()

// BuildFields pairs the configured prompts with the validation rules, in the
// fixed collection order.
func BuildFields(cfg *config.Config) []FieldDefinition {
	rules := map[string]Rule{
		FieldName:       textRule(maxNameLength),
		FieldEmail:      ValidateEmail,
		FieldPhone:      PhoneRule(cfg.Phone.MinDigits, cfg.Phone.MaxDigits),
		FieldExperience: ExperienceRule(cfg.Experience.MaxYears),
		FieldPosition:   textRule(maxTextLength),
		FieldLocation:   textRule(maxTextLength),
		FieldTechStack:  ValidateTechStack,
	}

	fields := make([]FieldDefinition, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		fields = append(fields, FieldDefinition{
			Name:     f.Name,
			Prompt:   f.Prompt,
			Hint:     f.Hint,
			Ack:      f.Ack,
			Validate: rules[f.Name],
		})
	}
	return fields
}

func textRule(maxRunes int) Rule {
	return func(raw string) (string, bool) {
		v := strings.Join(strings.Fields(raw), " ")
		if v == "" || utf8.RuneCountInString(v) > maxRunes {
			return "", false
		}
		return v, true
	}
}

// ValidateEmail accepts addresses with exactly one "@", a non-empty local
// part and at least one "." in the domain.
func ValidateEmail(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if strings.Count(v, "@") != 1 {
		return "", false
	}

	local, domain, _ := strings.Cut(v, "@")
	if local == "" || !strings.Contains(domain, ".") {
		return "", false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}

	if err := validate.Var(v, "required,email,max=254"); err != nil {
		return "", false
	}
	return v, true
}

// PhoneRule accepts digits plus common separators, with an optional leading
// "+", and a digit count within [minDigits, maxDigits].
func PhoneRule(minDigits, maxDigits int) Rule {
	return func(raw string) (string, bool) {
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", false
		}

		digits := 0
		for i, r := range v {
			switch {
			case unicode.IsDigit(r):
				digits++
			case r == '+' && i == 0:
			case strings.ContainsRune(" -().", r):
			default:
				return "", false
			}
		}

		if digits < minDigits || digits > maxDigits {
			return "", false
		}
		return v, true
	}
}

var experiencePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?|\.\d+)\s*(?:years?|yrs?|y)?$`)

// ExperienceRule accepts a non-negative, possibly fractional number of years,
// optionally followed by "years". The stored value is the bare number.
func ExperienceRule(maxYears float64) Rule {
	return func(raw string) (string, bool) {
		m := experiencePattern.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			return "", false
		}

		years, err := strconv.ParseFloat(m[1], 64)
		if err != nil || years < 0 || years > maxYears {
			return "", false
		}
		return strconv.FormatFloat(years, 'f', -1, 64), true
	}
}

// ValidateTechStack rejects answers that parse to zero technologies. The
// stored value is the parsed list joined with ", ".
func ValidateTechStack(raw string) (string, bool) {
	stack := ParseTechStack(raw)
	if len(stack) == 0 {
		return "", false
	}
	return strings.Join(stack, ", "), true
}

// ExperienceYears parses a stored experience value; unparsable values read as 0.
func ExperienceYears(value string) float64 {
	years, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return years
}
