package feedback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"invest-retro/llm"
)

// Terminal failure kinds surfaced when the retry budget is exhausted
var (
	ErrTimeout     = errors.New("ai response timeout exceeded")
	ErrRateLimited = errors.New("ai request rate limit exceeded")
	ErrBadRequest  = errors.New("ai request rejected by provider")
)

// ChatClient is the slice of the LLM client the invoker needs
type ChatClient interface {
	ChatCompletionJSON(ctx context.Context, messages []llm.Message) (string, error)
}

// Invoker drives the model call with a hard per-attempt timeout and a
// bounded retry loop with linear backoff. Transient failures (timeouts,
// rate limits, malformed responses, transport errors) are retried;
// malformed-request rejections are terminal on the first occurrence.
type Invoker struct {
	client         ChatClient
	maxRetries     int
	retryDelay     time.Duration
	timeout        time.Duration
	strictTaxonomy bool
	sleep          func(time.Duration) // injectable for tests
}

// NewInvoker creates a new Invoker
func NewInvoker(client ChatClient, maxRetries int, retryDelay, timeout time.Duration, strictTaxonomy bool) *Invoker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Invoker{
		client:         client,
		maxRetries:     maxRetries,
		retryDelay:     retryDelay,
		timeout:        timeout,
		strictTaxonomy: strictTaxonomy,
		sleep:          time.Sleep,
	}
}

// Classify runs the compiled prompt through the model and returns its
// validated structured output. Attempts are numbered 0..maxRetries-1;
// between retryable failures the invoker sleeps retryDelay*(attempt+1).
func (i *Invoker) Classify(ctx context.Context, messages []llm.Message) (*Output, error) {
	for attempt := 0; attempt < i.maxRetries; attempt++ {
		last := attempt == i.maxRetries-1

		out, err := i.attempt(ctx, messages)
		if err == nil {
			if attempt > 0 {
				log.Printf("AI classification succeeded on attempt %d/%d", attempt+1, i.maxRetries)
			}
			return out, nil
		}

		var apiErr *llm.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.IsBadRequest():
			// Malformed request - retrying cannot help
			log.Printf("AI request rejected as bad request: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)

		case errors.As(err, &apiErr) && apiErr.IsRateLimit():
			if last {
				return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, i.maxRetries)
			}
			log.Printf("AI rate limited on attempt %d/%d, backing off", attempt+1, i.maxRetries)

		case isTimeout(err):
			if last {
				return nil, fmt.Errorf("%w after %d attempts", ErrTimeout, i.maxRetries)
			}
			log.Printf("AI call timed out on attempt %d/%d, backing off", attempt+1, i.maxRetries)

		default:
			// Transport errors and malformed model output land here; both
			// are worth another attempt
			if last {
				return nil, fmt.Errorf("ai analysis failed after %d attempts: %w", i.maxRetries, err)
			}
			log.Printf("AI call failed on attempt %d/%d: %v", attempt+1, i.maxRetries, err)
		}

		i.sleep(i.retryDelay * time.Duration(attempt+1))
	}

	// Unreachable: the last attempt always returns
	return nil, fmt.Errorf("ai analysis failed: retry budget exhausted")
}

// attempt issues one model call under the hard timeout and validates the
// response
func (i *Invoker) attempt(ctx context.Context, messages []llm.Message) (*Output, error) {
	cctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	raw, err := i.client.ChatCompletionJSON(cctx, messages)
	if err != nil {
		return nil, err
	}
	return ParseOutput(raw, i.strictTaxonomy)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
