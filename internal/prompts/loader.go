// Package prompts embeds the chain prompt templates and resolves them by file
// and key. Each JSON file maps key -> template text, so prompt wording can be
// tuned without touching chain code.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// table caches each parsed prompt file after first use. The embedded files
// never change at runtime, so entries are parsed at most once.
type table struct {
	mu     sync.Mutex
	parsed map[string]map[string]string
}

var loaded = &table{parsed: make(map[string]map[string]string)}

func (t *table) file(name string) (map[string]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.parsed[name]; ok {
		return m, nil
	}

	raw, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
	}
	m := make(map[string]string)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
	}

	t.parsed[name] = m
	return m, nil
}

// Get returns the template stored under key in the named embedded file.
func Get(filename, key string) (string, error) {
	m, err := loaded.file(filename)
	if err != nil {
		return "", err
	}
	tmpl, ok := m[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return tmpl, nil
}

// MustGet is Get for prompts the chains cannot run without. A missing one is
// a packaging bug, so it panics.
func MustGet(filename, key string) string {
	tmpl, err := Get(filename, key)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Format substitutes {{.Key}} placeholders with values from data. Placeholders
// without a matching key are left intact.
func Format(tmpl string, data map[string]string) string {
	for key, value := range data {
		tmpl = strings.ReplaceAll(tmpl, "{{."+key+"}}", value)
	}
	return tmpl
}
