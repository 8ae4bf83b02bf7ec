package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// --- GeneralMiddleware (API全般) のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2, // 2 req/sec
		GeneralBurst:    5, // バースト5
		MutationRate:    1, // 未使用
		MutationBurst:   10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handlerCallCount := 0
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    2, // バースト2
		MutationRate:    1,
		MutationBurst:   10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト分（2回）は通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
		req.RemoteAddr = "10.0.0.2:50000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 3回目はレート制限に引っかかる
	req := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	req.RemoteAddr = "10.0.0.2:50000"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfterHeader(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    1, // バースト1
		MutationRate:    1,
		MutationBurst:   10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1回目は通る
	req := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	req.RemoteAddr = "10.0.0.3:50000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// 2回目は429になる
	req2 := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	req2.RemoteAddr = "10.0.0.3:50000"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	retryAfter := w2.Result().Header.Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("expected Retry-After header to be present")
	}

	// Retry-Afterは数値（秒）であること
	retrySeconds, err := strconv.Atoi(retryAfter)
	if err != nil {
		t.Errorf("Retry-After header should be a number, got %q", retryAfter)
	}
	if retrySeconds < 1 {
		t.Errorf("Retry-After = %d, should be at least 1", retrySeconds)
	}

	var body map[string]string
	if err := json.NewDecoder(w2.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode 429 body: %v", err)
	}
	if body["code"] != "rate_limit_exceeded" {
		t.Errorf("code = %q, want %q", body["code"], "rate_limit_exceeded")
	}
}

func TestRateLimitMiddleware_IsolatesClientRateLimits(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    1, // バースト1
		MutationRate:    1,
		MutationBurst:   10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// クライアントAの1回目は通る
	reqA := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	reqA.RemoteAddr = "10.0.1.1:50000"
	wA := httptest.NewRecorder()
	handler.ServeHTTP(wA, reqA)

	if wA.Result().StatusCode != http.StatusOK {
		t.Errorf("client A first request: status = %d, want %d", wA.Result().StatusCode, http.StatusOK)
	}

	// クライアントAの2回目は429
	reqA2 := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	reqA2.RemoteAddr = "10.0.1.1:50000"
	wA2 := httptest.NewRecorder()
	handler.ServeHTTP(wA2, reqA2)

	if wA2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("client A second request: status = %d, want %d", wA2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// クライアントBの1回目は通る（クライアントAのレートに影響されない）
	reqB := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	reqB.RemoteAddr = "10.0.1.2:50000"
	wB := httptest.NewRecorder()
	handler.ServeHTTP(wB, reqB)

	if wB.Result().StatusCode != http.StatusOK {
		t.Errorf("client B first request: status = %d, want %d", wB.Result().StatusCode, http.StatusOK)
	}
}

// --- MutationMiddleware (更新系) のテスト ---

func TestMutationRateLimitMiddleware_IndependentFromGeneral(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		MutationRate:    1,
		MutationBurst:   1,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	generalHandler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mutationHandler := rl.MutationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// API全般のバーストを使い切る
	reqG := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	reqG.RemoteAddr = "10.0.2.1:50000"
	wG := httptest.NewRecorder()
	generalHandler.ServeHTTP(wG, reqG)

	if wG.Result().StatusCode != http.StatusOK {
		t.Fatalf("general request: status = %d, want %d", wG.Result().StatusCode, http.StatusOK)
	}

	// 更新系バケットは独立しているため、同一クライアントでも通る
	reqM := httptest.NewRequest(http.MethodPost, "/library-api/books/borrow", nil)
	reqM.RemoteAddr = "10.0.2.1:50000"
	wM := httptest.NewRecorder()
	mutationHandler.ServeHTTP(wM, reqM)

	if wM.Result().StatusCode != http.StatusOK {
		t.Errorf("mutation request: status = %d, want %d", wM.Result().StatusCode, http.StatusOK)
	}

	// 更新系の2回目は429
	reqM2 := httptest.NewRequest(http.MethodPost, "/library-api/books/return", nil)
	reqM2.RemoteAddr = "10.0.2.1:50000"
	wM2 := httptest.NewRecorder()
	mutationHandler.ServeHTTP(wM2, reqM2)

	if wM2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("mutation second request: status = %d, want %d", wM2.Result().StatusCode, http.StatusTooManyRequests)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		MutationRate:    1,
		MutationBurst:   1,
		CleanupInterval: 10 * time.Millisecond,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	// エントリを作成
	rl.getOrCreateGeneralLimiter("10.0.3.1")
	rl.getOrCreateMutationLimiter("10.0.3.1")

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("general limiter count = %d, want 1", rl.GeneralLimiterCount())
	}

	// TTL（CleanupInterval×2）を超えて待つとクリーンアップされる
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rl.GeneralLimiterCount() == 0 && rl.MutationLimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("stale entries were not cleaned up: general = %d, mutation = %d",
		rl.GeneralLimiterCount(), rl.MutationLimiterCount())
}

func TestClientKey_StripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/library-api/books", nil)
	req.RemoteAddr = "192.0.2.10:45678"

	if got := clientKey(req); got != "192.0.2.10" {
		t.Errorf("clientKey = %q, want %q", got, "192.0.2.10")
	}

	// ポートなしのアドレスはそのまま返す
	req.RemoteAddr = "192.0.2.11"
	if got := clientKey(req); got != "192.0.2.11" {
		t.Errorf("clientKey = %q, want %q", got, "192.0.2.11")
	}
}
