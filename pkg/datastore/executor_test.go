package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestNormalizeRows(t *testing.T) {
	tests := []struct {
		name  string
		input string // JSON as returned by the procedure
		want  []Row
	}{
		{
			name:  "bare array",
			input: `[{"count": 42}]`,
			want:  []Row{{"count": float64(42)}},
		},
		{
			name:  "null payload",
			input: `null`,
			want:  []Row{},
		},
		{
			name:  "result wrapper",
			input: `{"result": [{"name": "a"}, {"name": "b"}]}`,
			want:  []Row{{"name": "a"}, {"name": "b"}},
		},
		{
			name:  "json_agg wrapper",
			input: `{"json_agg": [{"column_name": "id"}]}`,
			want:  []Row{{"column_name": "id"}},
		},
		{
			name:  "single object becomes one row",
			input: `{"total": 7}`,
			want:  []Row{{"total": float64(7)}},
		},
		{
			name:  "scalar is dropped",
			input: `42`,
			want:  []Row{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data interface{}
			if err := json.Unmarshal([]byte(tt.input), &data); err != nil {
				t.Fatalf("bad test input: %v", err)
			}
			got := NormalizeRows(data)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeRows(%s) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSupabaseExecutor(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody rpcRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"count": 42}]`))
	}))
	defer srv.Close()

	exec := NewSupabaseExecutor(srv.URL, "service-key")
	rows, err := exec.ExecSQL(context.Background(), "SELECT count(*) FROM members")
	if err != nil {
		t.Fatalf("ExecSQL returned error: %v", err)
	}

	if gotPath != "/rest/v1/rpc/exec_sql" {
		t.Errorf("path = %q, want /rest/v1/rpc/exec_sql", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody.Query != "SELECT count(*) FROM members" {
		t.Errorf("query payload = %q", gotBody.Query)
	}
	if len(rows) != 1 || rows[0]["count"] != float64(42) {
		t.Errorf("rows = %v", rows)
	}
}

func TestSupabaseExecutorRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"function exec_sql does not exist"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	exec := NewSupabaseExecutor(srv.URL, "service-key")
	if _, err := exec.ExecSQL(context.Background(), "SELECT 1"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestSupabaseExecutorUnconfigured(t *testing.T) {
	exec := NewSupabaseExecutor("", "")
	if _, err := exec.ExecSQL(context.Background(), "SELECT 1"); err == nil {
		t.Fatal("expected configuration error")
	}
}
