package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"simbah-be/internal/constant"
	"simbah-be/internal/dto"
	"simbah-be/internal/pkg/logger"
	"simbah-be/pkg/audit"
	"simbah-be/pkg/datastore"
	"simbah-be/pkg/llm"
	"simbah-be/pkg/report"
	"simbah-be/pkg/schema"
	"simbah-be/pkg/sqlguard"

	"github.com/google/uuid"
)

// QueryError carries an HTTP status plus the diagnostic fields the query
// endpoint echoes back (rejection reason, offending SQL, remote detail).
type QueryError struct {
	Status int
	Msg    string
	Reason string
	SQL    string
	Detail string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// QueryResult is either a rendered PDF or a JSON response body.
type QueryResult struct {
	PDF      []byte
	Response *dto.QueryResponse
}

type IQueryService interface {
	Ask(ctx context.Context, request *dto.QueryRequest) (*QueryResult, error)
}

// queryService drives the generate, validate, regenerate, execute, summarize
// pipeline. Every stage is sequential; each depends on the previous one's
// output. The executor handle is the only shared state and is injected at
// construction.
type queryService struct {
	llmProvider  llm.LLMProvider
	introspector *schema.Introspector
	executor     datastore.Executor
	renderer     *report.Renderer
	auditor      audit.Publisher
	log          logger.ILogger
}

func NewQueryService(
	llmProvider llm.LLMProvider,
	introspector *schema.Introspector,
	executor datastore.Executor,
	renderer *report.Renderer,
	auditor audit.Publisher,
	log logger.ILogger,
) IQueryService {
	return &queryService{
		llmProvider:  llmProvider,
		introspector: introspector,
		executor:     executor,
		renderer:     renderer,
		auditor:      auditor,
		log:          log,
	}
}

func (s *queryService) Ask(ctx context.Context, request *dto.QueryRequest) (*QueryResult, error) {
	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, &QueryError{Status: 400, Msg: "Question required"}
	}
	wantPDF := wantsPDF(question, request.Format)
	requestId := uuid.New()

	// GENERATE_SQL
	raw, err := s.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.SQLGenerationPrompt, question),
		llm.WithTemperature(0))
	if err != nil {
		return nil, s.upstreamError(requestId, "generate", err)
	}
	sql := sqlguard.Sanitize(raw)
	s.log.Debug("QUERY", "Sanitized generated SQL", s.fields(requestId, map[string]interface{}{"sql": sql}))

	// VALIDATE, with one strict regeneration on failure
	verdict := sqlguard.Validate(sql)
	if !verdict.OK {
		raw, err = s.llmProvider.Generate(ctx,
			fmt.Sprintf(constant.StrictRegenerationPrompt, strings.Join(sqlguard.AllowedTables, ", "), question),
			llm.WithTemperature(0))
		if err != nil {
			return nil, s.upstreamError(requestId, "strict_regenerate", err)
		}
		sql = sqlguard.Sanitize(raw)
		verdict = sqlguard.Validate(sql)
	}
	if !verdict.OK {
		s.auditor.PublishQueryRejected(ctx, requestId, question, sql, verdict.Reason)
		return nil, &QueryError{Status: 400, Msg: "Generated SQL invalid", Reason: verdict.Reason, SQL: sql}
	}

	// SCHEMA_FETCH + SCHEMA_AWARE_REGENERATE. This pass trims column-not-found
	// errors but is an optimization: any failure keeps the validated candidate.
	snippet := s.introspector.Snippet(ctx, verdict.Tables)
	raw, err = s.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.SchemaAwarePrompt, snippet, question),
		llm.WithTemperature(0))
	if err != nil {
		s.log.Warn("QUERY", "Schema-aware regeneration failed", s.fields(requestId, map[string]interface{}{"error": err.Error()}))
	} else if refined := sqlguard.Sanitize(raw); refined != "" {
		sql = refined
		verdict = sqlguard.Validate(sql)
	}
	if !verdict.OK {
		s.auditor.PublishQueryRejected(ctx, requestId, question, sql, verdict.Reason)
		return nil, &QueryError{Status: 400, Msg: "Generated SQL invalid", Reason: verdict.Reason, SQL: sql}
	}

	// EXECUTE
	rows, err := s.executor.ExecSQL(ctx, sql)
	if err != nil {
		s.log.Error("QUERY", "Exec SQL RPC error", s.fields(requestId, map[string]interface{}{"sql": sql, "error": err.Error()}))
		return nil, &QueryError{Status: 500, Msg: "Database execution error", Detail: err.Error(), SQL: sql, Err: err}
	}
	total := len(rows)
	display := rows
	if len(display) > constant.MaxResponseRows {
		display = display[:constant.MaxResponseRows]
	}

	// SUMMARIZE
	answer, summaryFailed := s.summarize(ctx, requestId, sql, display)

	s.auditor.PublishQueryExecuted(ctx, requestId, question, sql, total, wantPDF)

	// RENDER_PDF | RESPOND_JSON. A failed summary always falls back to JSON
	// so the already-fetched rows reach the caller.
	if wantPDF && !summaryFailed {
		pdfBytes, err := s.renderer.Render(report.Document{
			Title:       constant.ReportTitle,
			GeneratedAt: time.Now(),
			Summary:     answer,
			RowCount:    total,
			Tables:      verdict.Tables,
		})
		if err != nil {
			s.log.Error("QUERY", "Report rendering failed", s.fields(requestId, map[string]interface{}{"error": err.Error()}))
			return nil, &QueryError{Status: 500, Msg: "Report rendering error", Err: err}
		}
		return &QueryResult{PDF: pdfBytes}, nil
	}

	return &QueryResult{Response: &dto.QueryResponse{
		Answer:        answer,
		ExecutedSQL:   sql,
		RowCount:      total,
		Rows:          display,
		SummaryFailed: summaryFailed,
	}}, nil
}

// summarize asks for a short Bahasa Indonesia summary of the capped result
// set. The query has already run by this point, so a failure degrades to an
// empty answer instead of discarding the rows.
func (s *queryService) summarize(ctx context.Context, requestId uuid.UUID, sql string, rows []datastore.Row) (string, bool) {
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		rowsJSON = []byte("[]")
	}

	answer, err := s.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.SummaryPrompt, sql, string(rowsJSON)),
		llm.WithTemperature(0.2))
	if err != nil {
		s.log.Error("QUERY", "Summary generation failed", s.fields(requestId, map[string]interface{}{"error": err.Error()}))
		return "", true
	}
	if strings.TrimSpace(answer) == "" {
		return "(no summary)", false
	}
	return answer, false
}

func (s *queryService) upstreamError(requestId uuid.UUID, stage string, err error) error {
	if errors.Is(err, llm.ErrNotConfigured) {
		return &QueryError{Status: 500, Msg: "Mistral API key not configured"}
	}
	// Upstream status and body stay in the server log; the caller gets a
	// generic message.
	s.log.Error("QUERY", "LLM request failed", s.fields(requestId, map[string]interface{}{
		"stage": stage,
		"error": err.Error(),
	}))
	return &QueryError{Status: 500, Msg: "SQL generation error", Err: err}
}

func (s *queryService) fields(requestId uuid.UUID, details map[string]interface{}) map[string]interface{} {
	details["request_id"] = requestId.String()
	return details
}

// wantsPDF reports whether the caller asked for a PDF, explicitly through
// the format field or implicitly through a trigger word in the question.
func wantsPDF(question, format string) bool {
	if strings.EqualFold(format, "pdf") {
		return true
	}
	lc := strings.ToLower(question)
	for _, trigger := range constant.PDFTriggerWords {
		if strings.Contains(lc, trigger) {
			return true
		}
	}
	return false
}
