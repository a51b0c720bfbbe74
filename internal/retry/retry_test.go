package retry

import (
	"context"
	"errors"
	"testing"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	v, attempts, err := Do(context.Background(), 3, 0, func() (int, error) { return 42, nil })
	if err != nil || v != 42 || attempts != 1 {
		t.Errorf("got v=%d attempts=%d err=%v", v, attempts, err)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	_, attempts, err := Do(context.Background(), 3, 0, func() (int, error) {
		calls++
		return 0, boom
	})
	if calls != 3 || attempts != 3 {
		t.Errorf("expected 3 calls, got %d (attempts %d)", calls, attempts)
	}
	if !errors.Is(err, boom) {
		t.Errorf("the final error must surface, got %v", err)
	}
}

func TestDo_RecoversMidway(t *testing.T) {
	calls := 0
	v, attempts, err := Do(context.Background(), 3, 0, func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil || v != "ok" || attempts != 2 {
		t.Errorf("got v=%q attempts=%d err=%v", v, attempts, err)
	}
}

func TestDo_StopAborts(t *testing.T) {
	calls := 0
	fatal := errors.New("bad request")
	_, attempts, err := Do(context.Background(), 3, 0, func() (int, error) {
		calls++
		return 0, Stop(fatal)
	})
	if calls != 1 || attempts != 1 {
		t.Errorf("Stop must abort immediately, got %d calls", calls)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("the wrapped error must surface unwrapped, got %v", err)
	}
}
