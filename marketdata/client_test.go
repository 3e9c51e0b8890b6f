package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, "^KS11", timeout)
}

func TestFetchContextDegradesErroringSections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/market/context" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ticker"); got != "005930.KS" {
			t.Errorf("unexpected ticker %q", got)
		}
		if got := r.URL.Query().Get("market_index"); got != "^KS11" {
			t.Errorf("unexpected market_index %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"chart_indicators": {"rsi_14": "28.10", "rsi_status": "Oversold (RSI < 30)"},
			"financial_indicators": {"error": "Failed to get financial info."},
			"related_news": [{"title": "반도체 업황 둔화 우려"}],
			"market_indicators": {"index_name": "KOSPI", "status": "FALLING", "change_percent": "-1.80%"}
		}`))
	}))
	defer srv.Close()

	snap, err := newTestClient(srv.URL, time.Second).FetchContext(context.Background(), "005930.KS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !snap.Chart.OK() {
		t.Errorf("expected healthy chart section, got error %q", snap.Chart.Err)
	}
	if snap.Financial.OK() || snap.Financial.Err != "Failed to get financial info." {
		t.Errorf("expected financial error marker, got %+v", snap.Financial)
	}
	if !snap.News.OK() || !snap.Market.OK() {
		t.Errorf("expected healthy news and market sections, got %+v / %+v", snap.News, snap.Market)
	}

	chart, ok := snap.ChartIndicators()
	if !ok || chart.RSIStatus != "Oversold (RSI < 30)" {
		t.Errorf("chart decode lost data: %+v", chart)
	}
}

func TestFetchContextMissingSectionBecomesErroring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"chart_indicators": {"rsi_14": "50.00"},
			"related_news": null
		}`))
	}))
	defer srv.Close()

	snap, err := newTestClient(srv.URL, time.Second).FetchContext(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.News.OK() {
		t.Error("null section should be erroring")
	}
	if snap.Financial.OK() || snap.Market.OK() {
		t.Error("absent sections should be erroring")
	}
	if !snap.Chart.OK() {
		t.Errorf("present section should be healthy, got error %q", snap.Chart.Err)
	}
}

func TestFetchContextNonOKStatusIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).FetchContext(context.Background(), "AAPL")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchContextMalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).FetchContext(context.Background(), "AAPL")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchContextSlowServerIsTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	_, err := newTestClient(srv.URL, 50*time.Millisecond).FetchContext(context.Background(), "AAPL")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestParseSectionListPayload(t *testing.T) {
	sec := parseSection(json.RawMessage(`[{"title": "금리 동결"}, {"title": "환율 급등"}]`))
	if !sec.OK() {
		t.Fatalf("expected healthy section, got error %q", sec.Err)
	}
	snap := &Snapshot{News: sec}
	news, ok := snap.NewsItems()
	if !ok || len(news) != 2 || news[0].Title != "금리 동결" {
		t.Errorf("news decode lost data: %+v", news)
	}
}
