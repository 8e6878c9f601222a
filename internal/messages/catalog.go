package messages

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// legacySection held messages as "Messages.<id>.Text" in old files.
const legacySection = "Messages"

var newLine = regexp.MustCompile(`\r?(\n|\\n)`)

// Catalog renders messages by id.
type Catalog struct {
	texts map[ID]string
}

// NewCatalog creates a catalog from texts; missing ids fall back to Defaults.
func NewCatalog(texts map[ID]string) *Catalog {
	c := &Catalog{texts: Defaults()}
	for id, text := range texts {
		c.texts[id] = text
	}
	return c
}

// Load reads the catalog from a YAML file and writes the effective texts
// back, so new defaults appear in the file and legacy keys are dropped.
// A missing file yields the defaults.
func Load(path string) (*Catalog, error) {
	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing messages %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading messages %s: %w", path, err)
	}

	legacy, _ := raw[legacySection].(map[string]any)
	defaults := Defaults()
	texts := make(map[ID]string, len(All))
	for _, id := range All {
		text := defaults[id]
		if v, ok := raw[string(id)].(string); ok {
			text = v
		}
		if entry, ok := legacy[string(id)].(map[string]any); ok {
			if v, ok := entry["Text"].(string); ok {
				text = v
			}
		}
		texts[id] = text
	}

	c := &Catalog{texts: texts}
	if err := c.Save(path); err != nil {
		slog.Error("writing messages file", "path", path, "error", err)
	}
	return c, nil
}

// Save writes every text to path.
func (c *Catalog) Save(path string) error {
	out := make(map[string]string, len(c.texts))
	for id, text := range c.texts {
		out[string(id)] = text
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating messages dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing messages %s: %w", path, err)
	}
	return nil
}

// Format returns the text for id with every "{key}" replaced by its value.
// Placeholders are given as key, value pairs.
func (c *Catalog) Format(id ID, placeholders ...string) string {
	text, ok := c.texts[id]
	if !ok {
		return "ERROR:Missing message for '" + string(id) + "'"
	}
	for i := 1; i < len(placeholders); i += 2 {
		text = strings.ReplaceAll(text, "{"+placeholders[i-1]+"}", placeholders[i])
	}
	return text
}

// Recipient receives chat lines.
type Recipient interface {
	SendMessage(line string)
}

// Send formats id and delivers it line by line. Empty messages are not sent.
func (c *Catalog) Send(to Recipient, id ID, placeholders ...string) {
	for _, line := range Lines(c.Format(id, placeholders...)) {
		to.SendMessage(line)
	}
}

// Enabled reports whether id has a non-empty text.
func (c *Catalog) Enabled(id ID) bool {
	return c.texts[id] != ""
}

// Lines splits a message on real or escaped ("\n") line breaks.
// An empty message has no lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return newLine.Split(text, -1)
}
