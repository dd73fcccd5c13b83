package datastore

import "context"

// Row is a single result row keyed by column name.
type Row = map[string]interface{}

// Executor runs a read-only SQL statement against the datastore and returns
// its rows. Implementations must be safe for concurrent use; the handle is
// built once at process start and shared across requests. Read-only-ness is
// a contract of the backing procedure, not enforced here: the sqlguard
// validator is the only gate in front of this call.
type Executor interface {
	ExecSQL(ctx context.Context, query string) ([]Row, error)
}

// NormalizeRows coerces the shapes the exec_sql procedure is known to return
// into a flat row slice:
//
//   - a bare JSON array of row objects
//   - an object wrapping the payload under "result" or "json_agg"
//   - a single row object
//   - null (no rows)
func NormalizeRows(data interface{}) []Row {
	if data == nil {
		return []Row{}
	}

	if obj, ok := data.(map[string]interface{}); ok {
		if inner, ok := obj["result"]; ok {
			return NormalizeRows(inner)
		}
		if inner, ok := obj["json_agg"]; ok {
			return NormalizeRows(inner)
		}
		return []Row{obj}
	}

	arr, ok := data.([]interface{})
	if !ok {
		return []Row{}
	}

	rows := make([]Row, 0, len(arr))
	for _, item := range arr {
		if r, ok := item.(map[string]interface{}); ok {
			rows = append(rows, r)
		}
	}
	return rows
}
