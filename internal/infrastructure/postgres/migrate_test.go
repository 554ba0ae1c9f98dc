package postgres

import (
	"strings"
	"testing"
)

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames() error = %v", err)
	}
	want := []string{"001_init", "002_billing_changes", "003_budgets"}
	if len(names) < len(want) {
		t.Fatalf("migrations = %v, want at least %d", names, len(want))
	}

	for i, version := range want {
		if got := migrationVersion(names[i]); got != version {
			t.Errorf("migration %d = %q, want %q", i, got, version)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations out of order: %q before %q", names[i-1], names[i])
		}
	}
}

func TestMigrationFiles_NotEmpty(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			t.Errorf("%s is empty", name)
		}
	}
}
