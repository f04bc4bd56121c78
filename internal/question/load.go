package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// bankFile is the on-disk shape of a template bank.
type bankFile struct {
	Templates []templateFile `json:"templates"`
}

// templateFile mirrors Template but lets "active" default to true.
type templateFile struct {
	Template
	Active *bool `json:"active"`
}

// LoadFile reads a template bank from a YAML or JSON file.
func LoadFile(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template bank: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	return Load(f, ext == ".json")
}

// Load decodes and validates a template bank. YAML is a superset of JSON,
// so isJSON only selects the stricter decoder.
func Load(r io.Reader, isJSON bool) ([]Template, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read template bank: %w", err)
	}

	var doc any
	if isJSON {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	}

	// Normalise through JSON so the schema sees float64 numbers and
	// string-keyed maps regardless of the source format.
	norm, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalise template bank: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(norm, &parsed); err != nil {
		return nil, fmt.Errorf("normalise template bank: %w", err)
	}
	if err := validateDocument(parsed); err != nil {
		return nil, err
	}

	var bank bankFile
	dec := json.NewDecoder(bytes.NewReader(norm))
	if err := dec.Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode template bank: %w", err)
	}

	seen := make(map[int64]bool, len(bank.Templates))
	out := make([]Template, 0, len(bank.Templates))
	for _, tf := range bank.Templates {
		t := tf.Template
		t.Active = tf.Active == nil || *tf.Active
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id %d", t.ID)
		}
		seen[t.ID] = true
		if t.ProgramKind == "" {
			t.ProgramKind = ProgramCode
		}
		out = append(out, t)
	}
	return out, nil
}
