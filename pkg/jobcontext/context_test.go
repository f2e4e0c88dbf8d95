package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJobBegin_PopulatesMetadata(t *testing.T) {
	wantID := uuid.New()
	before := time.Now()

	ctx, cancel := JobBegin(context.Background(), wantID, "transcription", 3)
	defer cancel()

	gotID, ok := GetJobID(ctx)
	if !ok || gotID != wantID {
		t.Errorf("GetJobID = (%v, %v), want (%v, true)", gotID, ok, wantID)
	}
	jobType, ok := GetJobType(ctx)
	if !ok || jobType != "transcription" {
		t.Errorf("GetJobType = (%q, %v), want (%q, true)", jobType, ok, "transcription")
	}
	if got := GetWorkerID(ctx); got != 3 {
		t.Errorf("GetWorkerID = %d, want 3", got)
	}
	if got := GetRetryAttempt(ctx); got != 0 {
		t.Errorf("GetRetryAttempt = %d, want 0", got)
	}
	if got := GetMaxRetries(ctx); got != 3 {
		t.Errorf("GetMaxRetries = %d, want 3", got)
	}
	startedAt, ok := GetJobStartTime(ctx)
	if !ok || startedAt.Before(before) {
		t.Errorf("GetJobStartTime = (%v, %v), want a time at or after %v", startedAt, ok, before)
	}
}

func TestAccessors_DefaultsOnBareContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetJobID(ctx); ok {
		t.Error("GetJobID on bare context should report absent")
	}
	if got := GetWorkerID(ctx); got != -1 {
		t.Errorf("GetWorkerID = %d, want -1", got)
	}
	if got := GetMaxRetries(ctx); got != 3 {
		t.Errorf("GetMaxRetries = %d, want default 3", got)
	}
}

func TestJobEnd_Success(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "transcription", 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("JobEnd: %v", err)
	}
	if calls != 1 {
		t.Errorf("job func called %d times, want 1", calls)
	}
}

func TestJobEnd_NonRetryableFailsImmediately(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "transcription", 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return errors.New("invalid payload")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("job func called %d times, want 1 (no retry on non-retryable error)", calls)
	}
}

func TestJobEnd_RecoversPanic(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "transcription", 0)
	defer cancel()

	err := JobEnd(ctx, func(context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []error{
		errors.New("connection refused"),
		errors.New("i/o timeout"),
		errors.New("deadlock detected"),
		errors.New("429 too many requests"),
		errors.New("service unavailable"),
	}
	for _, err := range retryable {
		if !IsRetryableError(err) {
			t.Errorf("IsRetryableError(%q) = false, want true", err)
		}
	}

	notRetryable := []error{
		nil,
		errors.New("invalid recording url"),
		errors.New("record not found"),
	}
	for _, err := range notRetryable {
		if IsRetryableError(err) {
			t.Errorf("IsRetryableError(%v) = true, want false", err)
		}
	}
}
