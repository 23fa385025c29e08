package rules

import "testing"

func FuzzParse(f *testing.F) {
	// Seed with the starter rule document
	f.Add([]byte(DefaultRulesYAML()))

	// Seed with minimal valid YAML
	f.Add([]byte("test_id: T\nscoring:\n  pass_threshold: 50\n"))

	// Seed with empty
	f.Add([]byte{})

	// Seed with garbage
	f.Add([]byte(`{{{not yaml at all`))

	// Seed with a broken regex
	f.Add([]byte("constraints:\n  - id: x\n    type: negative_regex\n    pattern: \"[unclosed\"\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic on any input
		_, _ = Parse(data)
	})
}
