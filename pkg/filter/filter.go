// Package filter classifies clipboard content before it is shared.
// It is a pure predicate: it never mutates state and never logs. The
// caller decides what to do with a rejection and reports the reason at
// its own boundary.
//
// Content is rejected when it is empty, exceeds the configured maximum
// length, or looks like sensitive material (credential assignments,
// card-like digit runs, private key blocks, email addresses).
package filter

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// DefaultMaxContentLength is the maximum accepted content length in runes.
const DefaultMaxContentLength = 50000

// Reason explains why content was rejected.
type Reason string

const (
	// ReasonNone means the content is acceptable.
	ReasonNone Reason = ""

	// ReasonEmpty means the content is empty or not valid text.
	ReasonEmpty Reason = "empty"

	// ReasonTooLarge means the content exceeds the maximum length.
	ReasonTooLarge Reason = "too_large"

	// ReasonSensitive means the content matched a sensitive-pattern rule.
	ReasonSensitive Reason = "sensitive"
)

// builtinPatterns are the default sensitive-content rules. Matching is
// intentionally loose: a false positive keeps a secret off the wire, a
// false negative leaks it to every connected device.
var builtinPatterns = []*regexp.Regexp{
	// Credential assignments: password=..., api_key: ..., secret => ...
	regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|token|api[_-]?key|access[_-]?key|auth)\b\s*[:=>]+\s*\S+`),
	// Long digit runs resembling card numbers, separators allowed.
	regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`),
	// PEM-style private key blocks.
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
	// Bearer tokens and similar long opaque credentials.
	regexp.MustCompile(`(?i)\bbearer\s+[a-z0-9._~+/-]{20,}`),
	// Email-like strings.
	regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`),
}

// Config holds filter configuration.
type Config struct {
	// MaxContentLength is the maximum content length in runes.
	// Defaults to DefaultMaxContentLength if zero or negative.
	MaxContentLength int

	// Patterns are additional sensitive-content rules, as regular
	// expressions, applied alongside the builtin rules.
	Patterns []string

	// DisableBuiltin turns off the builtin sensitive-content rules,
	// leaving only Patterns active.
	DisableBuiltin bool
}

// Filter decides whether clipboard content may be shared.
type Filter struct {
	maxLength int
	patterns  []*regexp.Regexp
}

// New creates a filter from config. Custom patterns are compiled eagerly
// so a bad rule fails at startup rather than on the sync path.
func New(cfg Config) (*Filter, error) {
	maxLength := cfg.MaxContentLength
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}

	var patterns []*regexp.Regexp
	if !cfg.DisableBuiltin {
		patterns = append(patterns, builtinPatterns...)
	}
	for _, raw := range cfg.Patterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid sensitive pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}

	return &Filter{
		maxLength: maxLength,
		patterns:  patterns,
	}, nil
}

// Check classifies content. It returns the rejection reason and true if
// the content must not be shared, or ReasonNone and false if it may.
func (f *Filter) Check(content string) (Reason, bool) {
	if content == "" || !utf8.ValidString(content) {
		return ReasonEmpty, true
	}

	if utf8.RuneCountInString(content) > f.maxLength {
		return ReasonTooLarge, true
	}

	for _, re := range f.patterns {
		if re.MatchString(content) {
			return ReasonSensitive, true
		}
	}

	return ReasonNone, false
}

// MaxContentLength returns the configured maximum content length in runes.
func (f *Filter) MaxContentLength() int {
	return f.maxLength
}
