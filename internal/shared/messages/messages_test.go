package messages

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	m := Default()
	if m.InvoicePaid.Title == "" || m.InvoiceOverdue.Body == "" {
		t.Errorf("embedded messages incomplete: %+v", m)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	content := `{"invoice_paid": {"title": "Paid", "body": "Invoice {period} paid"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.InvoicePaid.Title != "Paid" {
		t.Errorf("InvoicePaid.Title = %q, want Paid", m.InvoicePaid.Title)
	}
	if m.InvoiceOverdue.Title != Default().InvoiceOverdue.Title {
		t.Errorf("InvoiceOverdue should keep the default, got %q", m.InvoiceOverdue.Title)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRender(t *testing.T) {
	got := MessageText{Title: "Fatura {period}", Body: "{card}: {amount}"}.Render(map[string]string{
		"period": "2025-11",
		"card":   "Nubank",
		"amount": "R$ 10,00",
	})
	if got.Title != "Fatura 2025-11" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Body != "Nubank: R$ 10,00" {
		t.Errorf("Body = %q", got.Body)
	}
}
