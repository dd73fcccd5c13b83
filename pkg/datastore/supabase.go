package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseExecutor submits statements to the privileged exec_sql remote
// procedure exposed through the Supabase REST gateway. The procedure accepts
// {"query": "..."} and returns the result set as JSON.
type SupabaseExecutor struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

var _ Executor = &SupabaseExecutor{}

func NewSupabaseExecutor(baseURL, serviceKey string) *SupabaseExecutor {
	return &SupabaseExecutor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	Query string `json:"query"`
}

func (e *SupabaseExecutor) ExecSQL(ctx context.Context, query string) ([]Row, error) {
	if e.baseURL == "" || e.serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not configured")
	}

	payload, err := json.Marshal(rpcRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc payload: %w", err)
	}

	url := e.baseURL + "/rest/v1/rpc/exec_sql"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", e.serviceKey)
	req.Header.Set("Authorization", "Bearer "+e.serviceKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec_sql rpc failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exec_sql rpc error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var data interface{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("unmarshal rpc response: %w", err)
		}
	}

	return NormalizeRows(data), nil
}
