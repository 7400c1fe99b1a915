package usecase

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Domain hints are regexes for known high-value phrasings. A sentence
// matching a hint is quoted verbatim, bypassing the generic scorer.
var defaultHintPatterns = []string{
	`(?i)start of (the )?semester.*\b\d{1,2}\.\d{1,2}\.\d{4}\b`,
	`(?i)(deadline|due date).*\b\d{1,2}\.\d{1,2}\.\d{4}\b`,
}

type hintRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type hintsFile struct {
	Hints []hintRule `yaml:"hints"`
}

// DefaultHints compiles the built-in hint set.
func DefaultHints() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(defaultHintPatterns))
	for _, p := range defaultHintPatterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// LoadHints reads hint rules from a YAML file; an empty path yields the
// built-in set. A file that parses but contains an invalid pattern is an
// error rather than a silently dropped rule.
func LoadHints(path string) ([]*regexp.Regexp, error) {
	if path == "" {
		return DefaultHints(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hints file: %w", err)
	}

	var file hintsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse hints file: %w", err)
	}

	out := make([]*regexp.Regexp, 0, len(file.Hints))
	for _, rule := range file.Hints {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile hint %q: %w", rule.Name, err)
		}
		out = append(out, re)
	}
	return out, nil
}
