package messages

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed notifications.json
var defaultMessages []byte

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Render replaces {name} placeholders with the given values
func (m MessageText) Render(vars map[string]string) MessageText {
	if len(vars) == 0 {
		return m
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	return MessageText{Title: r.Replace(m.Title), Body: r.Replace(m.Body)}
}

type Messages struct {
	InvoicePaid    MessageText `json:"invoice_paid"`
	InvoiceOverdue MessageText `json:"invoice_overdue"`
}

// Default returns the texts compiled into the binary
func Default() *Messages {
	var m Messages
	if err := json.Unmarshal(defaultMessages, &m); err != nil {
		panic(fmt.Sprintf("messages: embedded notifications.json is invalid: %v", err))
	}
	return &m
}

// Load reads a notifications JSON file. Keys missing from the file keep
// their built-in text. An empty path returns the defaults.
func Load(path string) (*Messages, error) {
	m := Default()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return m, nil
}
