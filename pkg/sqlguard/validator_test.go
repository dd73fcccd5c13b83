package sqlguard

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		wantOK     bool
		wantReason string // substring match, empty means don't check
		wantTables []string
	}{
		{
			name:       "simple select on allowed table",
			sql:        "SELECT * FROM members",
			wantOK:     true,
			wantTables: []string{"members"},
		},
		{
			name:       "statement chaining with drop",
			sql:        "SELECT * FROM members; DROP TABLE members",
			wantOK:     false,
			wantReason: "Forbidden keyword detected: drop",
		},
		{
			name:       "update without from clause",
			sql:        "UPDATE members SET name = 'x'",
			wantOK:     false,
			wantReason: "Forbidden keyword detected: update",
		},
		{
			name:       "semicolon comment chaining",
			sql:        "SELECT * FROM members;   -- sneak",
			wantOK:     false,
			wantReason: "Forbidden keyword detected",
		},
		{
			name:       "disallowed table reported",
			sql:        "SELECT * FROM secrets",
			wantOK:     false,
			wantReason: "Disallowed tables referenced: secrets",
		},
		{
			name:       "no select token",
			sql:        "EXPLAIN ANALYZE something",
			wantOK:     false,
			wantReason: "No SELECT statement found.",
		},
		{
			name:       "select without tables",
			sql:        "SELECT 1",
			wantOK:     false,
			wantReason: "No table found in FROM/JOIN clauses.",
		},
		{
			name:       "join across allowed tables",
			sql:        "SELECT m.name, o.total FROM members m JOIN orders o ON o.member_id = m.id",
			wantOK:     true,
			wantTables: []string{"members", "orders"},
		},
		{
			name:       "with clause preceding select",
			sql:        "WITH recent AS (SELECT * FROM orders) SELECT count(*) FROM recent JOIN order_items i ON i.order_id = recent.id",
			wantOK:     false,
			wantReason: "Disallowed tables referenced: recent",
		},
		{
			name:       "schema qualification stripped",
			sql:        "SELECT * FROM public.orders",
			wantOK:     true,
			wantTables: []string{"orders"},
		},
		{
			name:       "quoted identifier stripped",
			sql:        `SELECT * FROM "order_items"`,
			wantOK:     true,
			wantTables: []string{"order_items"},
		},
		{
			name:       "mixed-case quoted table is not the allowed one",
			sql:        `SELECT * FROM "Members"`,
			wantOK:     false,
			wantReason: "Disallowed tables referenced: Members",
		},
		{
			// Known limitation of substring matching: an identifier that
			// embeds a forbidden keyword followed by a space is rejected
			// even though the statement is harmless.
			name:       "false positive on keyword-prefixed alias",
			sql:        `SELECT "update " FROM members`,
			wantOK:     false,
			wantReason: "Forbidden keyword detected: update",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.sql)
			if v.OK != tt.wantOK {
				t.Fatalf("Validate(%q).OK = %v, want %v (reason: %q)", tt.sql, v.OK, tt.wantOK, v.Reason)
			}
			if tt.wantReason != "" && !strings.Contains(v.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want substring %q", v.Reason, tt.wantReason)
			}
			if tt.wantTables != nil && !reflect.DeepEqual(v.Tables, tt.wantTables) {
				t.Errorf("tables = %v, want %v", v.Tables, tt.wantTables)
			}
		})
	}
}

func TestExtractTableNames(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "dedup repeated table",
			sql:  "SELECT * FROM orders o JOIN orders p ON p.id = o.id",
			want: []string{"orders"},
		},
		{
			name: "subquery yields no name",
			sql:  "SELECT * FROM (SELECT 1) t",
			want: nil,
		},
		{
			name: "multiline statement",
			sql:  "SELECT *\nFROM members\nJOIN orders ON orders.member_id = members.id",
			want: []string{"members", "orders"},
		},
		{
			name: "no clauses",
			sql:  "SELECT 1 + 1",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTableNames(tt.sql)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTableNames(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}
