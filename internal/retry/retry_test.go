package retry

import (
	"context"
	"testing"
	"time"
)

func TestDelaySequenceWithoutJitter(t *testing.T) {
	opts := DefaultOptions()
	opts.JitterFraction = 0
	want := []time.Duration{
		500 * time.Millisecond,
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
	}
	for i, w := range want {
		got := delayForAttempt(opts, i+1)
		if got != w {
			t.Errorf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}
}

func TestDelayClampedToMax(t *testing.T) {
	opts := DefaultOptions()
	got := delayForAttempt(opts, 10)
	if got != opts.MaxDelay {
		t.Errorf("got %v, want %v", got, opts.MaxDelay)
	}
}

func TestJitterWithinBound(t *testing.T) {
	opts := DefaultOptions()
	base := 500 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := jitter(opts, base)
		if d < base || d > base+time.Duration(float64(base)*opts.JitterFraction) {
			t.Fatalf("jitter %v out of bound around base %v", d, base)
		}
	}
}

func TestWithRetrySucceedsAfterRetryableFailures(t *testing.T) {
	opts := DefaultOptions()
	opts.BaseDelay = time.Millisecond
	opts.MaxDelay = 5 * time.Millisecond

	attempts := 0
	result, err := WithRetry(context.Background(), opts, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", &HTTPError{StatusCode: 429}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("got %q", result)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithRetryStopsOnNonRetryableError(t *testing.T) {
	opts := DefaultOptions()
	attempts := 0
	_, err := WithRetry(context.Background(), opts, func(ctx context.Context) (string, error) {
		attempts++
		return "", &HTTPError{StatusCode: 400}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxAttempts = 3
	opts.BaseDelay = time.Millisecond
	opts.MaxDelay = 5 * time.Millisecond

	attempts := 0
	_, err := WithRetry(context.Background(), opts, func(ctx context.Context) (string, error) {
		attempts++
		return "", &HTTPError{StatusCode: 503}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&HTTPError{StatusCode: 429}, true},
		{&HTTPError{StatusCode: 500}, true},
		{&HTTPError{StatusCode: 404}, false},
		{&HTTPError{Message: "ECONNRESET"}, true},
		{&HTTPError{Message: "socket hang up"}, true},
		{&HTTPError{Message: "bad request"}, false},
	}
	for _, c := range cases {
		if got := IsRetryableError(c.err); got != c.want {
			t.Errorf("IsRetryableError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestParseHTTPErrorUnwrapsJSONBody(t *testing.T) {
	err := jsonBodyError(`{"statusCode":429,"message":"rate limited"}`)
	parsed := ParseHTTPError(err)
	if parsed.StatusCode != 429 || parsed.Message != "rate limited" {
		t.Fatalf("got %+v", parsed)
	}
}

type plainError string

func (e plainError) Error() string { return string(e) }

func jsonBodyError(body string) error {
	return plainError(body)
}
