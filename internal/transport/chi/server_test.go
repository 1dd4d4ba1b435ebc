package chi

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
)

func newTestRouter(t *testing.T, apiKeys ...string) http.Handler {
	t.Helper()
	items := []item.Item{
		item.Reconstruct(1, "Batman Begins", "action crime batman nolan", map[string]string{"year": "2005"}),
		item.Reconstruct(2, "The Dark Knight", "action crime batman nolan joker", nil),
		item.Reconstruct(3, "Clueless", "comedy romance school", nil),
		item.Reconstruct(4, "Untagged", "the of and", nil),
	}
	ix, err := domrec.Build(items, vectorizer.DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rec := recommenduc.New(ix, nil, recommenduc.Limits{DefaultK: 2, MaxK: 10}, zap.NewNop())
	srv := NewServer(rec, healthuc.New(ix, nil), zap.NewNop())
	return NewRouter(srv, RouterConfig{APIKeys: apiKeys})
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func TestGetRecommendations(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, "/recommendations?title=Batman+Begins&k=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	resp := decode[RecommendationResponse](t, rr)
	if resp.Query.ID != 1 || resp.Query.Fields["year"] != "2005" {
		t.Errorf("unexpected query item: %+v", resp.Query)
	}
	if resp.K != 2 || len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got k=%d len=%d", resp.K, len(resp.Items))
	}
	if resp.Items[0].Title != "The Dark Knight" || resp.Items[1].Title != "Clueless" {
		t.Errorf("unexpected order: %q, %q", resp.Items[0].Title, resp.Items[1].Title)
	}
	want := 4 / (2 * math.Sqrt(5))
	if math.Abs(resp.Items[0].Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", resp.Items[0].Score, want)
	}
}

func TestGetRecommendations_DefaultK(t *testing.T) {
	resp := decode[RecommendationResponse](t, do(t, newTestRouter(t), "/recommendations?title=Clueless"))
	if resp.K != 2 {
		t.Errorf("expected default k 2, got %d", resp.K)
	}
}

func TestGetRecommendations_ZeroVectorQuery(t *testing.T) {
	rr := do(t, newTestRouter(t), "/recommendations?title=Untagged")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	resp := decode[RecommendationResponse](t, rr)
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("expected empty items array, got %v", resp.Items)
	}
}

func TestGetRecommendations_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		code   ErrorCode
	}{
		{"missing title", "/recommendations", http.StatusBadRequest, ErrorCodeBadRequest},
		{"bad k", "/recommendations?title=Clueless&k=two", http.StatusBadRequest, ErrorCodeBadRequest},
		{"negative k", "/recommendations?title=Clueless&k=-1", http.StatusBadRequest, ErrorCodeInvalidRange},
		{"unknown title", "/recommendations?title=Batman", http.StatusNotFound, ErrorCodeUnknownTitle},
		{"unknown item", "/items/42/recommendations", http.StatusNotFound, ErrorCodeItemNotFound},
		{"bad item id", "/items/abc", http.StatusBadRequest, ErrorCodeBadRequest},
		{"no route", "/nope", http.StatusNotFound, ErrorCodeNotFound},
	}
	h := newTestRouter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.target)
			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.status, rr.Body.String())
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tt.code {
				t.Errorf("code: got %s, want %s", resp.Code, tt.code)
			}
		})
	}
}

func TestGetItem(t *testing.T) {
	rr := do(t, newTestRouter(t), "/items/3")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	resp := decode[ItemResponse](t, rr)
	if resp.ID != 3 || resp.Title != "Clueless" {
		t.Errorf("unexpected item: %+v", resp)
	}
}

func TestGetItemRecommendations(t *testing.T) {
	rr := do(t, newTestRouter(t), "/items/2/recommendations?k=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	resp := decode[RecommendationResponse](t, rr)
	if len(resp.Items) != 1 || resp.Items[0].ID != 1 {
		t.Errorf("expected Batman Begins, got %+v", resp.Items)
	}
}

func TestGetTerms(t *testing.T) {
	h := newTestRouter(t)

	resp := decode[TermsResponse](t, do(t, h, "/terms?limit=3"))
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(resp.Items))
	}
	if resp.Total != 8 {
		t.Errorf("expected 8 vocabulary terms, got %d", resp.Total)
	}
	if resp.Items[0].Term != "action" || resp.Items[0].Count != 2 {
		t.Errorf("unexpected first term: %+v", resp.Items[0])
	}

	if rr := do(t, h, "/terms?limit=-1"); rr.Code != http.StatusBadRequest {
		t.Errorf("negative limit: got %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, newTestRouter(t, "secret"), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["index"] != "ok" || resp.Items != 4 {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestAuthRequiredOnAPI(t *testing.T) {
	h := newTestRouter(t, "secret")

	if rr := do(t, h, "/terms"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/terms", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := do(t, newTestRouter(t), "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
}
