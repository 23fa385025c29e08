package model

import "testing"

func TestActionDetail(t *testing.T) {
	tests := []struct {
		name    string
		details map[string]any
		field   string
		want    string
	}{
		{"string value", map[string]any{"body": "hello"}, "body", "hello"},
		{"missing field", map[string]any{"body": "hello"}, "title", ""},
		{"nil details", nil, "body", ""},
		{"numeric value reads empty", map[string]any{"body": 42}, "body", ""},
		{"bool value reads empty", map[string]any{"body": true}, "body", ""},
		{"nested map reads empty", map[string]any{"body": map[string]any{"x": "y"}}, "body", ""},
		{"nil value reads empty", map[string]any{"body": nil}, "body", ""},
		{"empty string", map[string]any{"body": ""}, "body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Action{Type: "create_issue", Details: tt.details}
			if got := a.Detail(tt.field); got != tt.want {
				t.Errorf("Detail(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}
