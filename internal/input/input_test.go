package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errTooBig = errors.New("too big")

type recorder struct {
	bound uint64
	got   []uint64
	fail  error
}

func (r *recorder) Submit(n uint64) error {
	if r.fail != nil {
		return r.fail
	}
	if n > r.bound {
		return fmt.Errorf("%w: %d", errTooBig, n)
	}
	r.got = append(r.got, n)
	return nil
}

func TestLoopStopsAtZero(t *testing.T) {
	rec := &recorder{bound: 10000}
	loop := New(strings.NewReader("4 6\n0\n9 10\n"), errTooBig)

	stats, err := loop.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(rec.got) != 2 || rec.got[0] != 4 || rec.got[1] != 6 {
		t.Errorf("expected [4 6], got %v", rec.got)
	}
	if !stats.Terminated {
		t.Error("expected loop to terminate on 0")
	}
	if stats.Read != 2 || stats.Submitted != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestLoopSkipsOutOfRange(t *testing.T) {
	rec := &recorder{bound: 10000}
	loop := New(strings.NewReader("10001 6 0"), errTooBig)

	stats, err := loop.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(rec.got) != 1 || rec.got[0] != 6 {
		t.Errorf("expected [6], got %v", rec.got)
	}
	if stats.OutOfRange != 1 {
		t.Errorf("expected 1 out of range, got %d", stats.OutOfRange)
	}
}

func TestLoopSkipsInvalidTokens(t *testing.T) {
	rec := &recorder{bound: 10000}
	loop := New(strings.NewReader("abc -3 7 1.5 0"), errTooBig)

	stats, err := loop.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Invalid != 3 {
		t.Errorf("expected 3 invalid tokens, got %d", stats.Invalid)
	}
	if len(rec.got) != 1 || rec.got[0] != 7 {
		t.Errorf("expected [7], got %v", rec.got)
	}
}

func TestLoopEOFWithoutZero(t *testing.T) {
	rec := &recorder{bound: 10000}
	loop := New(strings.NewReader("5 5 5"), errTooBig)

	stats, err := loop.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Terminated {
		t.Error("expected EOF termination, not 0")
	}
	if stats.Submitted != 3 {
		t.Errorf("expected 3 submitted, got %d", stats.Submitted)
	}
}

func TestLoopSubmitError(t *testing.T) {
	rec := &recorder{bound: 10000, fail: errors.New("pool closed")}
	loop := New(strings.NewReader("5 0"), errTooBig)

	if _, err := loop.Run(context.Background(), rec); err == nil {
		t.Error("expected error from failing submitter")
	}
}

func TestLoopCancelled(t *testing.T) {
	rec := &recorder{bound: 10000}
	loop := New(strings.NewReader("1 2 3 0"), errTooBig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loop.Run(ctx, rec)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(rec.got) != 0 {
		t.Errorf("expected nothing submitted, got %v", rec.got)
	}
}

func TestLoopPrompt(t *testing.T) {
	rec := &recorder{bound: 10000}
	prompt := &bytes.Buffer{}
	loop := New(strings.NewReader("3 0"), errTooBig)
	loop.prompt = prompt

	if _, err := loop.Run(context.Background(), rec); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Count(prompt.String(), "> "); got != 2 {
		t.Errorf("expected 2 prompts, got %d", got)
	}
}
