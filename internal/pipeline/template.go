// Package pipeline renders campaign prompt templates, runs them through a
// Generator and validates the output.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"campaignops/internal/validator"
)

const (
	instructionsMarker = "### Instructions"
	validationMarker   = "### Validation Configuration"
)

var (
	ErrMissingVariable = errors.New("pipeline: missing template variable")

	placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// Template is a parsed prompt file.
type Template struct {
	// Body is everything before the validation section.
	Body string
	// Prompt is the instructions section, or Body when there is none.
	Prompt string
	Rules  validator.Rules
}

// LoadTemplate reads and parses the template at path.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("pipeline: read template: %w", err)
	}
	return ParseTemplate(string(data))
}

// ParseTemplate splits content into prompt and rule sections.
func ParseTemplate(content string) (Template, error) {
	body, config, hasConfig := strings.Cut(content, validationMarker)
	t := Template{Body: strings.TrimSpace(body)}

	t.Prompt = t.Body
	if i := strings.LastIndex(t.Body, instructionsMarker); i >= 0 {
		t.Prompt = strings.TrimSpace(t.Body[i+len(instructionsMarker):])
	}

	if hasConfig {
		rules, err := validator.ParseRules([]byte(stripFence(config)))
		if err != nil {
			return Template{}, err
		}
		t.Rules = rules
	}
	return t, nil
}

// stripFence removes a surrounding ``` code fence, if any.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return s
}

// Render replaces every {name} in text with vars[name]. Placeholders without
// a value are reported with ErrMissingVariable.
func Render(text string, vars map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		missing[name] = struct{}{}
		return m
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(names, ", "))
	}
	return out, nil
}
