// Package trace loads pre-recorded action streams from disk. A trace
// document is the handoff artifact between whatever recorded the agent
// (harness, MCP shim, log scraper) and the evaluator.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vapkit/proctor/internal/model"
)

// Document is one recorded session: an optional session identifier and
// the ordered action stream.
type Document struct {
	Session string         `json:"session,omitempty" yaml:"session,omitempty"`
	Actions []model.Action `json:"actions" yaml:"actions"`
}

// Load reads a trace document. Format is chosen by extension:
// .json parses as JSON, .yaml/.yml (and anything else) as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse trace %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse trace %s: %w", path, err)
		}
	}

	return &doc, nil
}
