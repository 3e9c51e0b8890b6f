package feedback

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"invest-retro/llm"
)

const validResponse = `{"analysis":"a","questions":"q","primary_type":"기타","secondary_type":null}`

type fakeAttempt struct {
	raw string
	err error
}

// fakeChat replays one scripted result per attempt; the last entry repeats
type fakeChat struct {
	attempts []fakeAttempt
	calls    int
}

func (f *fakeChat) ChatCompletionJSON(ctx context.Context, _ []llm.Message) (string, error) {
	idx := f.calls
	if idx >= len(f.attempts) {
		idx = len(f.attempts) - 1
	}
	f.calls++
	a := f.attempts[idx]
	return a.raw, a.err
}

func newTestInvoker(client ChatClient, maxRetries int) (*Invoker, *[]time.Duration) {
	inv := NewInvoker(client, maxRetries, 100*time.Millisecond, time.Second, false)
	var sleeps []time.Duration
	inv.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return inv, &sleeps
}

func TestClassifyRecoversFromTimeouts(t *testing.T) {
	chat := &fakeChat{attempts: []fakeAttempt{
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
		{raw: validResponse},
	}}
	inv, sleeps := newTestInvoker(chat, 3)

	out, err := inv.Classify(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PrimaryType != "기타" {
		t.Errorf("expected primary 기타, got %q", out.PrimaryType)
	}
	if chat.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", chat.calls)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(*sleeps))
	}
	if (*sleeps)[1] <= (*sleeps)[0] {
		t.Errorf("expected strictly increasing backoff, got %v then %v", (*sleeps)[0], (*sleeps)[1])
	}
}

func TestClassifyExhaustsRetriesOnTimeout(t *testing.T) {
	chat := &fakeChat{attempts: []fakeAttempt{{err: context.DeadlineExceeded}}}
	inv, _ := newTestInvoker(chat, 3)

	_, err := inv.Classify(context.Background(), nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if chat.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", chat.calls)
	}
}

func TestClassifyBadRequestIsTerminal(t *testing.T) {
	chat := &fakeChat{attempts: []fakeAttempt{
		{err: &llm.APIError{StatusCode: http.StatusBadRequest, Body: "bad prompt"}},
	}}
	inv, sleeps := newTestInvoker(chat, 3)

	_, err := inv.Classify(context.Background(), nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if chat.calls != 1 {
		t.Errorf("expected a single attempt, got %d", chat.calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no backoff, got %d sleeps", len(*sleeps))
	}
}

func TestClassifyExhaustsRetriesOnRateLimit(t *testing.T) {
	chat := &fakeChat{attempts: []fakeAttempt{
		{err: &llm.APIError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}},
	}}
	inv, _ := newTestInvoker(chat, 3)

	_, err := inv.Classify(context.Background(), nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if chat.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", chat.calls)
	}
}

func TestClassifyRetriesMalformedResponse(t *testing.T) {
	chat := &fakeChat{attempts: []fakeAttempt{
		{raw: "sorry, here is my analysis in prose"},
		{raw: validResponse},
	}}
	inv, sleeps := newTestInvoker(chat, 3)

	out, err := inv.Classify(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PrimaryType != "기타" {
		t.Errorf("expected primary 기타, got %q", out.PrimaryType)
	}
	if chat.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", chat.calls)
	}
	if len(*sleeps) != 1 {
		t.Errorf("expected 1 backoff sleep, got %d", len(*sleeps))
	}
}
