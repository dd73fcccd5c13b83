package dto

// QueryRequest is the inbound chatbot question. Format "pdf" forces a PDF
// response; trigger words in the question imply it as well.
type QueryRequest struct {
	Question string `json:"question" validate:"required"`
	Format   string `json:"format,omitempty"`
}

type QueryResponse struct {
	Answer        string                   `json:"answer"`
	ExecutedSQL   string                   `json:"executed_sql"`
	RowCount      int                      `json:"rowCount"`
	Rows          []map[string]interface{} `json:"rows"`
	SummaryFailed bool                     `json:"summary_failed,omitempty"`
}
