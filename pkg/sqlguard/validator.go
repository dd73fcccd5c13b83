package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// AllowedTables is the fixed whitelist of tables a generated statement may
// reference. Anything outside this set is rejected before execution.
var AllowedTables = []string{"members", "products", "orders", "order_items"}

// Forbidden keywords are matched as lower-cased substrings with a trailing
// space so they don't trip on identifiers like "created_at". An identifier
// that contains one of these followed by a space can still be falsely
// rejected; that is a known limitation of the heuristic, covered by tests.
var forbiddenKeywords = []string{
	"insert ", "update ", "delete ", "drop ", "alter ",
	"truncate ", "grant ", "revoke ", "create ", "copy ",
}

var (
	chainedCommentRegex = regexp.MustCompile(`;\s*--`)
	fromClauseRegex     = regexp.MustCompile(`(?i)from\s+([^\s,;()]+)`)
	joinClauseRegex     = regexp.MustCompile(`(?i)join\s+([^\s,;()]+)`)
)

// Verdict is the outcome of validating a candidate statement. Tables holds
// the extracted table names for downstream schema lookup when OK is true.
type Verdict struct {
	OK     bool
	Reason string
	Tables []string
}

// Validate statically inspects a candidate SQL string. It rejects mutating
// keywords and statement chaining, requires a SELECT token (a WITH prefix is
// fine), and confirms every table referenced in FROM/JOIN clauses belongs to
// AllowedTables. This is a heuristic allow-list gate, not a SQL parser.
func Validate(sql string) Verdict {
	raw := strings.TrimSpace(sql)
	lowered := strings.ToLower(raw)

	for _, kw := range forbiddenKeywords {
		if strings.Contains(lowered, kw) {
			return Verdict{Reason: fmt.Sprintf("Forbidden keyword detected: %s", strings.TrimSpace(kw))}
		}
	}
	if chainedCommentRegex.MatchString(lowered) {
		return Verdict{Reason: "Forbidden keyword detected: ;--"}
	}

	if !selectTokenRegex.MatchString(lowered) {
		return Verdict{Reason: "No SELECT statement found."}
	}

	tables := ExtractTableNames(raw)
	if len(tables) == 0 {
		return Verdict{Reason: "No table found in FROM/JOIN clauses."}
	}

	var disallowed []string
	for _, t := range tables {
		if !isAllowedTable(t) {
			disallowed = append(disallowed, t)
		}
	}
	if len(disallowed) > 0 {
		return Verdict{
			Reason: fmt.Sprintf("Disallowed tables referenced: %s", strings.Join(disallowed, ", ")),
			Tables: tables,
		}
	}

	return Verdict{OK: true, Tables: tables}
}

// ExtractTableNames scans for identifiers following FROM and JOIN keywords.
// Subqueries don't produce a name (the opening paren stops the token), quote
// characters are stripped and schema qualification is reduced to the part
// after the last dot. Order of first appearance is preserved, deduplicated.
func ExtractTableNames(sql string) []string {
	flattened := strings.ReplaceAll(sql, "\n", " ")

	var names []string
	seen := make(map[string]bool)
	collect := func(matches [][]string) {
		for _, m := range matches {
			tbl := strings.Trim(m[1], `"`)
			tbl = strings.ReplaceAll(tbl, "`", "")
			if idx := strings.LastIndex(tbl, "."); idx >= 0 {
				tbl = tbl[idx+1:]
			}
			tbl = strings.ReplaceAll(tbl, `"`, "")
			if tbl == "" || seen[tbl] {
				continue
			}
			seen[tbl] = true
			names = append(names, tbl)
		}
	}

	collect(fromClauseRegex.FindAllStringSubmatch(flattened, -1))
	collect(joinClauseRegex.FindAllStringSubmatch(flattened, -1))
	return names
}

// Comparison is deliberately case-sensitive: a quoted "Members" names a
// different relation than members in Postgres and must not pass the gate.
func isAllowedTable(name string) bool {
	for _, t := range AllowedTables {
		if name == t {
			return true
		}
	}
	return false
}
