package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewDaily_RejectsBadTime(t *testing.T) {
	if _, err := NewDaily(zap.NewNop(), "9am", func(context.Context) {}); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := NewDaily(zap.NewNop(), "09:00", func(context.Context) {}); err != nil {
		t.Fatalf("valid time rejected: %v", err)
	}
}

func TestDaily_NextRun(t *testing.T) {
	d, err := NewDaily(zap.NewNop(), "09:00", func(context.Context) {})
	if err != nil {
		t.Fatalf("new daily: %v", err)
	}

	morning := time.Date(2026, 8, 31, 7, 30, 0, 0, time.UTC)
	next := d.nextRun(morning)
	if next.Day() != 31 || next.Hour() != 9 || next.Minute() != 0 {
		t.Fatalf("before trigger time: expected same-day 09:00, got %v", next)
	}

	evening := time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC)
	next = d.nextRun(evening)
	if next.Day() != 1 || next.Month() != time.September || next.Hour() != 9 {
		t.Fatalf("after trigger time: expected next-day 09:00, got %v", next)
	}

	exactly := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	if next = d.nextRun(exactly); !next.After(exactly) {
		t.Fatalf("at trigger time: next run must be in the future, got %v", next)
	}
}

func TestDaily_StopBeforeFire(t *testing.T) {
	fired := make(chan struct{}, 1)
	d, err := NewDaily(zap.NewNop(), "09:00", func(context.Context) {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("new daily: %v", err)
	}

	d.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.StopWithContext(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case <-fired:
		t.Fatalf("job fired before its scheduled time")
	default:
	}
}
