package postgres

import (
	"reflect"
	"testing"
	"time"

	"financeiro/internal/domain/transaction"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "parameters untouched",
			query: "SELECT id FROM cards WHERE user_id = $1",
			want:  "SELECT id FROM cards WHERE user_id = $1",
		},
		{
			name:  "string literal",
			query: "SELECT * FROM invoices WHERE status = 'open'",
			want:  "SELECT * FROM invoices WHERE status = '?'",
		},
		{
			name:  "escaped quote",
			query: "SELECT 'it''s'",
			want:  "SELECT '?'",
		},
		{
			name:  "numeric literal",
			query: "SELECT * FROM purchases LIMIT 10",
			want:  "SELECT * FROM purchases LIMIT ?",
		},
		{
			name:  "whitespace collapsed",
			query: "\n\t\tSELECT  1\n\t\tFROM x\n",
			want:  "SELECT ? FROM x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.query); got != tt.want {
				t.Errorf("sanitizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSQLVerb(t *testing.T) {
	tests := map[string]string{
		"select 1":                      "SELECT",
		"\n\t\tINSERT INTO cards VALUES": "INSERT",
		"COMMIT":                        "COMMIT",
	}
	for query, want := range tests {
		if got := extractSQLVerb(query); got != want {
			t.Errorf("extractSQLVerb(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestFilterClause(t *testing.T) {
	from := time.Date(2025, time.November, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)

	where, args := filterClause(transaction.Filter{UserID: 7})
	if where != "WHERE user_id = $1" || !reflect.DeepEqual(args, []any{int64(7)}) {
		t.Errorf("user only: %q %v", where, args)
	}

	where, args = filterClause(transaction.Filter{UserID: 7, From: from, To: to, Type: transaction.TypeExpense})
	want := "WHERE user_id = $1 AND transaction_date >= $2 AND transaction_date <= $3 AND type = $4"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v", args)
	}
	if got := args[1].(time.Time); !got.Equal(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from not truncated to a date: %v", got)
	}
}

func TestViewLocking(t *testing.T) {
	if got := (&view{}).forUpdate(); got != "" {
		t.Errorf("pool view lock = %q", got)
	}
	if got := (&view{locking: true}).forUpdate(); got != " FOR UPDATE" {
		t.Errorf("tx view lock = %q", got)
	}
}
