package schema

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"simbah-be/internal/pkg/logger"
	"simbah-be/pkg/datastore"

	gocache "github.com/patrickmn/go-cache"
)

const localSchemaCacheKey = "local_schema"

// Introspector resolves the exact column names of a table, preferring a
// local schema description file over a remote information_schema query.
// The parsed local document is memoized briefly so interactive bursts don't
// re-read the file; the per-request schema snippets built from it are not
// cached anywhere.
type Introspector struct {
	executor datastore.Executor
	paths    []string
	cache    *gocache.Cache
	log      logger.ILogger
}

func NewIntrospector(executor datastore.Executor, schemaFilePaths []string, log logger.ILogger) *Introspector {
	if len(schemaFilePaths) == 0 {
		schemaFilePaths = []string{"schema_supabase.txt"}
	}
	return &Introspector{
		executor: executor,
		paths:    schemaFilePaths,
		cache:    gocache.New(5*time.Minute, 10*time.Minute),
		log:      log,
	}
}

// TableColumns returns the ordered column names for table. Remote failure
// degrades to an empty list: the prompt simply lacks that table's columns.
func (in *Introspector) TableColumns(ctx context.Context, table string) []string {
	if cols, ok := in.localColumns(table); ok {
		return cols
	}

	cols, err := in.remoteColumns(ctx, table)
	if err != nil {
		in.log.Warn("SCHEMA", "Could not fetch columns", map[string]interface{}{
			"table": table,
			"error": err.Error(),
		})
		return nil
	}
	return cols
}

// Snippet renders a prompt-ready schema block, one "- table(col, col)" line
// per referenced table.
func (in *Introspector) Snippet(ctx context.Context, tables []string) string {
	lines := make([]string, 0, len(tables))
	for _, t := range tables {
		cols := in.TableColumns(ctx, t)
		lines = append(lines, fmt.Sprintf("- %s(%s)", t, strings.Join(cols, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (in *Introspector) localColumns(table string) ([]string, bool) {
	schema := in.localSchema()
	if schema == nil {
		return nil, false
	}
	cols, ok := schema[table]
	return cols, ok && len(cols) > 0
}

func (in *Introspector) localSchema() map[string][]string {
	if cached, ok := in.cache.Get(localSchemaCacheKey); ok {
		return cached.(map[string][]string)
	}

	for _, p := range in.paths {
		text, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		schema := ParseSchemaDocument(string(text))
		in.cache.Set(localSchemaCacheKey, schema, gocache.DefaultExpiration)
		return schema
	}
	return nil
}

var createTableRegex = regexp.MustCompile(`(?is)create table\s+([a-zA-Z_]\w*)\s*\((.*?)\);`)

var constraintLineRegex = regexp.MustCompile(`(?i)^(primary key|unique|foreign key|constraint)\b`)

// ParseSchemaDocument heuristically parses "create table name ( ... );"
// blocks out of a schema dump. Each non-constraint line contributes its
// first token as a column name.
func ParseSchemaDocument(text string) map[string][]string {
	schema := make(map[string][]string)

	for _, m := range createTableRegex.FindAllStringSubmatch(text, -1) {
		table := m[1]
		var cols []string
		for _, line := range strings.Split(m[2], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			line = strings.TrimRight(line, ",")
			line = strings.TrimSpace(line)
			if constraintLineRegex.MatchString(line) {
				continue
			}
			parts := strings.Fields(line)
			if len(parts) == 0 {
				continue
			}
			col := strings.Trim(parts[0], "\"`")
			if col != "" && !strings.Contains(col, "(") {
				cols = append(cols, col)
			}
		}
		schema[table] = cols
	}

	return schema
}

// remoteColumns asks the datastore's information_schema for the table's
// columns in ordinal position. The table name has already passed the
// allow-list gate, so interpolating it here cannot smuggle arbitrary input.
func (in *Introspector) remoteColumns(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf(
		"select json_agg(t) from (select column_name from information_schema.columns where table_name = '%s' and table_schema = 'public' order by ordinal_position) t",
		table,
	)

	rows, err := in.executor.ExecSQL(ctx, query)
	if err != nil {
		return nil, err
	}
	return columnsFromRows(rows), nil
}

// columnsFromRows flattens the shapes the introspection query comes back in:
// rows keyed by column_name, or a json_agg value holding either plain
// strings or {column_name: ...} objects.
func columnsFromRows(rows []datastore.Row) []string {
	var cols []string
	for _, r := range rows {
		if v, ok := r["column_name"]; ok {
			if s, ok := v.(string); ok && s != "" {
				cols = append(cols, s)
			}
			continue
		}
		agg, ok := r["json_agg"]
		if !ok {
			continue
		}
		items, ok := agg.([]interface{})
		if !ok {
			continue
		}
		for _, item := range items {
			switch t := item.(type) {
			case string:
				if t != "" {
					cols = append(cols, t)
				}
			case map[string]interface{}:
				if s, ok := t["column_name"].(string); ok && s != "" {
					cols = append(cols, s)
				}
			}
		}
	}
	return cols
}
