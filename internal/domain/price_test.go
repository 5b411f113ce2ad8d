package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRoundData_Validate(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	tests := []struct {
		name    string
		round   RoundData
		wantErr error
	}{
		{
			name:  "fresh answer",
			round: RoundData{RoundID: 5, Answer: decimal.NewFromInt(200000000000), UpdatedAt: now.Add(-time.Minute), AnsweredInRound: 5},
		},
		{
			name:  "exactly at window boundary",
			round: RoundData{RoundID: 5, Answer: decimal.NewFromInt(1), UpdatedAt: now.Add(-window), AnsweredInRound: 5},
		},
		{
			name:    "zero answer",
			round:   RoundData{RoundID: 5, Answer: decimal.Zero, UpdatedAt: now, AnsweredInRound: 5},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "negative answer checked before staleness",
			round:   RoundData{RoundID: 5, Answer: decimal.NewFromInt(-1), UpdatedAt: now.Add(-2 * window), AnsweredInRound: 1},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "stale answer",
			round:   RoundData{RoundID: 5, Answer: decimal.NewFromInt(1), UpdatedAt: now.Add(-window - time.Second), AnsweredInRound: 5},
			wantErr: ErrStalePrice,
		},
		{
			name:    "stale checked before round data",
			round:   RoundData{RoundID: 5, Answer: decimal.NewFromInt(1), UpdatedAt: now.Add(-2 * window), AnsweredInRound: 4},
			wantErr: ErrStalePrice,
		},
		{
			name:    "incomplete round",
			round:   RoundData{RoundID: 5, Answer: decimal.NewFromInt(1), UpdatedAt: now, AnsweredInRound: 4},
			wantErr: ErrInvalidRoundData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.round.Validate(now, window)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBalance_ValidateDebit(t *testing.T) {
	b := &Balance{Amount: decimal.NewFromInt(100)}

	if err := b.ValidateDebit(decimal.NewFromInt(100)); err != nil {
		t.Fatalf("expected exact balance debit to pass, got %v", err)
	}
	if err := b.ValidateDebit(decimal.NewFromInt(101)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range AllRoles() {
		if !r.IsValid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if Role("operator").IsValid() {
		t.Fatal("expected unknown role to be invalid")
	}
}
