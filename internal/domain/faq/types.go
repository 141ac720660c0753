package faq

import "time"

// Method identifies how a result set was scored.
type Method string

const (
	// MethodTFIDF means only lexical scores were available.
	MethodTFIDF Method = "tfidf"
	// MethodHybrid blends lexical and embedding similarity.
	MethodHybrid Method = "hybrid"
)

// Record is a single FAQ entry as persisted by the store.
type Record struct {
	Identifier string    `json:"questionId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   string    `json:"category"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	AddedBy    string    `json:"addedBy,omitempty"`
}

// HasEmbedding reports whether the record carries a usable vector.
func (r Record) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// ScoredRecord is a ranked search hit.
type ScoredRecord struct {
	Record   Record
	Combined float64
	Lexical  float64
	Semantic float64
	Method   Method
}

// SearchRequest encapsulates a FAQ search query.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

// SearchResult is the transport shape of a ranked hit.
type SearchResult struct {
	Question      string  `json:"question"`
	Answer        string  `json:"answer"`
	Identifier    string  `json:"questionId"`
	Category      string  `json:"category"`
	CombinedScore float64 `json:"combinedScore"`
	LexicalScore  float64 `json:"lexicalScore"`
	SemanticScore float64 `json:"semanticScore"`
	Method        Method  `json:"method"`
}

// SearchResponse is returned to the transports.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"totalResults"`
	Method       Method         `json:"method"`
	DurationMs   int64          `json:"durationMs,omitempty"`
}

// AddRequest carries a candidate FAQ entry.
type AddRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Identifier string `json:"questionId,omitempty"`
	AddedBy    string `json:"addedBy,omitempty"`
}

// Rejection reasons reported by AddRecord.
const (
	ReasonValidation        = "validation"
	ReasonDuplicateExact    = "duplicate_exact"
	ReasonDuplicateFuzzy    = "duplicate_fuzzy"
	ReasonDuplicateSemantic = "duplicate_semantic"
	ReasonStoreUnavailable  = "store_unavailable"
	ReasonUnauthorized      = "unauthorized"
)

// AddResponse is the structured outcome of an add attempt. Failures never surface as errors.
type AddResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Identifier string          `json:"questionId,omitempty"`
	Record     *Record         `json:"faq,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Duplicate  *DuplicateMatch `json:"duplicate,omitempty"`
}

// TrendingQuery represents a frequently asked question.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// ExportRequest selects the rows written to a CSV export.
type ExportRequest struct {
	// Limit > 0 exports the most recent Limit records; otherwise everything ordered by identifier.
	Limit int
}

// ExportResult describes a generated CSV export.
type ExportResult struct {
	Key      string `json:"key"`
	Rows     int    `json:"rows"`
	Location string `json:"location,omitempty"`
	Data     []byte `json:"-"`
}

// Stats summarises the corpus.
type Stats struct {
	Total          int            `json:"total"`
	WithEmbeddings int            `json:"withEmbeddings"`
	Categories     map[string]int `json:"categories"`
	Version        uint64         `json:"version"`
}
