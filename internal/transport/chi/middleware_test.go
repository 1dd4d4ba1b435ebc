package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/recdex/internal/domain/item"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	"github.com/kailas-cloud/recdex/internal/domain/vectorizer"
	logpkg "github.com/kailas-cloud/recdex/internal/logger"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := JSONRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/terms", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != ErrorCodeInternalError {
		t.Errorf("unexpected code %s", resp.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("expected panic to be logged")
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var inner bool
	h := chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logpkg.FromContext(r.Context()).Info("inside")
			inner = true
			w.WriteHeader(http.StatusTeapot)
		}),
	))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/terms?limit=1", http.NoBody))

	if !inner {
		t.Fatal("inner handler not called")
	}
	reqID := rr.Header().Get("X-Request-ID")
	if reqID == "" {
		t.Fatal("expected X-Request-ID")
	}

	lines := logs.FilterMessage("http_request").All()
	if len(lines) != 1 {
		t.Fatalf("expected one canonical line, got %d", len(lines))
	}
	fields := lines[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field = %v", fields["status"])
	}
	if fields["request_id"] != reqID {
		t.Errorf("request_id field = %v, want %s", fields["request_id"], reqID)
	}
	if logs.FilterMessage("inside").FilterField(zap.String("request_id", reqID)).Len() != 1 {
		t.Error("request logger must carry request_id")
	}
}

func TestDomainErrorLogCarriesQuery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	items := []item.Item{
		item.Reconstruct(1, "Heat", "crime heist", nil),
		item.Reconstruct(2, "Ronin", "crime heist paris", nil),
	}
	ix, err := domrec.Build(items, vectorizer.DefaultConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rec := recommenduc.New(ix, nil, recommenduc.Limits{}, zap.NewNop())
	h := NewRouter(NewServer(rec, healthuc.New(ix, nil), logger), RouterConfig{Logger: logger})

	rr := do(t, h, "/recommendations?title=Collateral&k=3")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	entries := logs.FilterMessage("domain error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one domain error entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["title"] != "Collateral" || fields["k"] != int64(3) {
		t.Errorf("unexpected fields %v", fields)
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("expected request_id on domain error entry")
	}
}
