package solver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"solverBridge/internal/model"
)

func testClient(t *testing.T, endpoint string, maxRetries int) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Endpoint:     endpoint,
		Address:      common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Timeout:      time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func testAuction() *model.Auction {
	id := "1"
	return &model.Auction{
		ID:                &id,
		Tokens:            map[string]model.Token{},
		Orders:            []model.Order{},
		Liquidity:         []model.Liquidity{},
		EffectiveGasPrice: "0",
	}
}

func TestSolvePostsAuction(t *testing.T) {
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"solutions":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	body, err := client.Solve(context.Background(), testAuction())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if string(body) != `{"solutions":[]}` {
		t.Fatalf("body = %s", body)
	}
	if gotPath != "/solve" {
		t.Fatalf("path = %s, want /solve", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %s", gotContentType)
	}
}

func TestSolveRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"solutions":[]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 5)
	if _, err := client.Solve(context.Background(), testAuction()); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestSolveDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad auction", http.StatusBadRequest)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 5)
	_, err := client.Solve(context.Background(), testAuction())
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("err = %v, want 400 rejection", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retries)", calls)
	}
}

func TestSolveGivesUpAfterMaxRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	if _, err := client.Solve(context.Background(), testAuction()); err == nil {
		t.Fatalf("expected failure after retries")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}
