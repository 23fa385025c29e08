package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConstraintType identifies one of the closed set of constraint kinds.
// Unknown values parse fine and are inert at evaluation time.
type ConstraintType string

const (
	// NegativeRegex fires when a pattern matches a watched action field.
	NegativeRegex ConstraintType = "negative_regex"
	// RequiredSequence fires when required steps are missing from the
	// session log or appear out of relative order.
	RequiredSequence ConstraintType = "required_sequence"
)

// Constraint is one declarative rule evaluated against the action stream.
// Location/Pattern apply to negative_regex, Steps to required_sequence.
type Constraint struct {
	ID      string         `yaml:"id"`
	Type    ConstraintType `yaml:"type"`
	Penalty int            `yaml:"penalty"`
	Message string         `yaml:"message"`

	Location string   `yaml:"location,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Steps    []string `yaml:"steps,omitempty"`

	re *regexp.Regexp
}

// Field returns the details field a negative_regex constraint inspects:
// the last dotted segment of the location path.
func (c *Constraint) Field() string {
	if idx := strings.LastIndex(c.Location, "."); idx >= 0 {
		return c.Location[idx+1:]
	}
	return c.Location
}

// AppliesTo reports whether the constraint's location is compatible with
// the given action type. Compatibility is a deliberately loose substring
// check, not structured path resolution; tightening it would change
// observable behavior.
func (c *Constraint) AppliesTo(actionType string) bool {
	return strings.Contains(c.Location, actionType)
}

// compilePattern compiles and caches the regex. Load calls this so a
// malformed pattern fails the session up front.
func (c *Constraint) compilePattern() error {
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return fmt.Errorf("constraint %q: invalid pattern: %w", c.ID, err)
	}
	c.re = re
	return nil
}

// PatternMatches runs an unanchored, case-sensitive search of the
// constraint's pattern against content. Constraints built directly
// (not via Load) compile lazily; a pattern that does not compile
// never matches.
func (c *Constraint) PatternMatches(content string) bool {
	if c.re == nil {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return false
		}
		c.re = re
	}
	return c.re.MatchString(content)
}

// Scoring holds the pass/fail threshold configuration.
// PassThreshold is a pointer so an absent threshold is distinguishable
// from an explicit zero; reporting fails without one.
type Scoring struct {
	PassThreshold *int `yaml:"pass_threshold"`
}

// RuleSet is the immutable constraint set for one test scenario.
type RuleSet struct {
	TestID      string       `yaml:"test_id"`
	Objective   string       `yaml:"objective"`
	Scoring     Scoring      `yaml:"scoring"`
	Constraints []Constraint `yaml:"constraints"`
}

// PassThreshold returns the configured threshold and whether one is set.
func (rs *RuleSet) PassThreshold() (int, bool) {
	if rs.Scoring.PassThreshold == nil {
		return 0, false
	}
	return *rs.Scoring.PassThreshold, true
}

// ConfigError is a fatal rule-source failure: missing, unreadable, or
// structurally invalid. No session is created when Load returns one.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rules %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads a rule document from a YAML file. It performs structural
// parsing only (including pattern compilation); semantic checks live in
// Validate and are the lint command's concern. Unknown constraint types
// are kept — matchers ignore them.
func Load(path string) (*RuleSet, error) {
	rs, _, err := LoadWithHash(path)
	return rs, err
}

// LoadWithHash loads a rule document and returns the SHA-256 of its raw
// bytes as "sha256:<hex>". The hash ties audit entries and archived
// reports back to the exact rules they were scored under.
func LoadWithHash(path string) (*RuleSet, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &ConfigError{Path: path, Err: err}
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	rs, err := Parse(data)
	if err != nil {
		return nil, "", &ConfigError{Path: path, Err: err}
	}
	return rs, hash, nil
}

// Parse unmarshals a rule document from raw YAML bytes.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	for i := range rs.Constraints {
		c := &rs.Constraints[i]
		if c.Type == NegativeRegex {
			if err := c.compilePattern(); err != nil {
				return nil, err
			}
		}
	}
	return &rs, nil
}
