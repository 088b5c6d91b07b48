package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/airpool/internal/models"
)

// fakeRecorder implements EventRecorder for tests
type fakeRecorder struct {
	failSet  int // number of times to fail Set before succeeding
	failIncr int // number of times to fail IncrAirport before succeeding
	setCalls int
	incCalls int
	lastKey  string
}

func (f *fakeRecorder) Set(ctx context.Context, key string, value []byte) error {
	f.setCalls++
	f.lastKey = key
	if f.setCalls <= f.failSet {
		return errors.New("set fail")
	}
	return nil
}

func (f *fakeRecorder) IncrAirport(ctx context.Context, eventType, airport string) error {
	f.incCalls++
	if f.incCalls <= f.failIncr {
		return errors.New("incr fail")
	}
	return nil
}

func testEvent() *models.RideEvent {
	return &models.RideEvent{
		Type:      "requested",
		RequestID: "req1",
		UserID:    "u1",
		Airport:   "JFK",
		At:        time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC),
	}
}

func TestRecordEventWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := &fakeRecorder{failSet: 1, failIncr: 1}
	ctx := context.Background()
	start := time.Now()
	if err := recordEventWithRetry(ctx, f, testEvent(), 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.setCalls < 2 || f.incCalls < 2 {
		t.Fatalf("expected retries, got set=%d incr=%d", f.setCalls, f.incCalls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
}

func TestRecordEventWithRetry_FailsWhenExhausted(t *testing.T) {
	f := &fakeRecorder{failSet: 5}
	if err := recordEventWithRetry(context.Background(), f, testEvent(), 3, 5*time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
}

func TestRecordEventWithRetry_KeyIncludesRequestAndTime(t *testing.T) {
	f := &fakeRecorder{}
	ev := testEvent()
	if err := recordEventWithRetry(context.Background(), f, ev, 1, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	want := "rideevent:req1:1704128400000000000"
	if f.lastKey != want {
		t.Fatalf("key %q, want %q", f.lastKey, want)
	}
}
