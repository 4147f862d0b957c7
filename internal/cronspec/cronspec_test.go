package cronspec

import (
	"testing"
	"time"
)

func TestValidateAcceptsStandardExpression(t *testing.T) {
	if err := Validate("*/15 * * * *"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMalformedExpression(t *testing.T) {
	if err := Validate("not a cron expr"); err == nil {
		t.Fatalf("expected error for malformed expression")
	}
}

func TestNextComputesNextFireStrictlyAfterFrom(t *testing.T) {
	from := time.Date(2026, 7, 31, 12, 5, 0, 0, time.UTC)
	next := Next("0 * * * *", from)
	want := time.Date(2026, 7, 31, 13, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextOnInvalidExpressionReturnsZero(t *testing.T) {
	next := Next("bogus", time.Now())
	if !next.IsZero() {
		t.Fatalf("expected zero time for invalid expression, got %v", next)
	}
}
