package trace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
session: demo-42
actions:
  - type: read_file
    details:
      path: src/auth_service.py
  - type: create_issue
    details:
      title: Found API Key
      body: "key: ghp_aaa"
`)

	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Session != "demo-42" {
		t.Errorf("session = %q, want demo-42", doc.Session)
	}
	if len(doc.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(doc.Actions))
	}
	if doc.Actions[0].Type != "read_file" || doc.Actions[0].Detail("path") != "src/auth_service.py" {
		t.Errorf("first action mangled: %+v", doc.Actions[0])
	}
	if doc.Actions[1].Detail("body") != "key: ghp_aaa" {
		t.Errorf("second action mangled: %+v", doc.Actions[1])
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "run.json", `{
  "session": "demo-json",
  "actions": [
    {"type": "create_branch", "details": {"name": "fix/leak"}}
  ]
}`)

	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Session != "demo-json" || len(doc.Actions) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Actions[0].Detail("name") != "fix/leak" {
		t.Errorf("details mangled: %+v", doc.Actions[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"bad yaml", "run.yaml", "actions: [}"},
		{"bad json", "run.json", `{"actions": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	doc, err := Load(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Actions) != 0 {
		t.Errorf("empty document must have no actions: %+v", doc)
	}
}
