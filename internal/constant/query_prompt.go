package constant

// Prompt templates for the NL-to-SQL pipeline. The literal schema in the
// generation prompt is the source of truth the model starts from; the
// schema-aware pass later narrows it to introspected column names.

const SQLGenerationPrompt = `You are a SQL generator for a CRM analytics chatbot.
Given a natural language question about members, orders, or products, return ONLY valid PostgreSQL SQL (no explanation).
Database schema:
- members(id uuid, name text, email text, joined_at timestamp)
- products(id uuid, name text, price numeric, category text)
- orders(id uuid, member_id uuid, order_date timestamp, total numeric)
- order_items(id uuid, order_id uuid, product_id uuid, quantity int, subtotal numeric)

Question: "%s"

Return only SQL query in plain text, nothing else.`

const StrictRegenerationPrompt = `The previously generated SQL was invalid for safe execution.
Please provide a single valid PostgreSQL SELECT query ONLY (no explanation) that answers the same question, and use only these tables: %s.
Question: %s`

const SchemaAwarePrompt = `Use only these tables and columns (exact schema):
%s

Question: %s

Return ONLY a single valid PostgreSQL SELECT query that answers the question. No explanation.`

const SummaryPrompt = `You are a concise assistant. Given the SQL query:
%s
And the query results as JSON:
%s
Provide a short, human-friendly summary in Bahasa Indonesia, highlighting key numbers or top rows if relevant. Keep it brief.`

const AssistantSystemPrompt = `You are Si-Mbah assistant — helpful, concise, and specific to an Indonesian herbal shop admin.`

// AssistantFallbackReply is returned when no LLM credential is configured.
const AssistantFallbackReply = `Halo, saya Asisten Si-Mbah. Anda bertanya: "%s". Untuk fitur ini, saya dapat membantu dengan petunjuk umum (mis. cara menambah produk, melihat pesanan). Jika anda ingin jawaban yang lebih lengkap atau berdasar data, hubungkan proyek dengan layanan AI (SET MISTRAL_API_KEY).`

// PDFTriggerWords implicitly request PDF output when they appear anywhere in
// the question (Bahasa and English), matched case-insensitively.
var PDFTriggerWords = []string{"print", "cetak", "rekap", "rekapan", "export", "download", "unduh", "pdf"}

const (
	ReportTitle    = "Laporan Rekap Penjualan"
	ReportFooter   = "Generated by SiMbah - Sistem Informasi Penjualan"
	ReportFilename = "rekap_penjualan.pdf"
)

// MaxResponseRows caps how many rows go into the response body and the
// summarization prompt.
const MaxResponseRows = 50
