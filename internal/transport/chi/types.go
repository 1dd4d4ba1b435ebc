package chi

import (
	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeUnknownTitle  ErrorCode = "unknown_title"
	ErrorCodeItemNotFound  ErrorCode = "item_not_found"
	ErrorCodeInvalidRange  ErrorCode = "invalid_range"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ItemResponse is a corpus item.
type ItemResponse struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ScoredItem is a recommended item with its cosine similarity.
type ScoredItem struct {
	ItemResponse
	Score float64 `json:"score"`
}

// RecommendationResponse answers a recommendation query.
type RecommendationResponse struct {
	Query ItemResponse `json:"query"`
	K     int          `json:"k"`
	Items []ScoredItem `json:"items"`
}

// TermResponse is one row of the token-frequency table.
type TermResponse struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TermsResponse is the token-frequency table.
type TermsResponse struct {
	Items []TermResponse `json:"items"`
	Total int            `json:"total"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Items  int               `json:"items"`
}

func itemToResponse(it item.Item) ItemResponse {
	return ItemResponse{ID: it.ID(), Title: it.Title(), Fields: it.Fields()}
}

func recommendationToResponse(res recommenduc.Result) RecommendationResponse {
	items := make([]ScoredItem, len(res.Items))
	for i, r := range res.Items {
		items[i] = scoredItem(r)
	}
	return RecommendationResponse{
		Query: itemToResponse(res.Query),
		K:     res.K,
		Items: items,
	}
}

func scoredItem(r domrec.Recommendation) ScoredItem {
	return ScoredItem{ItemResponse: itemToResponse(r.Item), Score: r.Score}
}

func termsToResponse(terms []vectorizer.TermCount, total int) TermsResponse {
	items := make([]TermResponse, len(terms))
	for i, t := range terms {
		items[i] = TermResponse{Term: t.Term, Count: t.Count}
	}
	return TermsResponse{Items: items, Total: total}
}
