package scheduler_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetvault/internal/infrastructure/scheduler"
	"github.com/iho/assetvault/internal/usecase"
)

type stubReconciler struct {
	report *usecase.ReconciliationReport
	err    error
	calls  int
}

func (s *stubReconciler) Check(ctx context.Context) (*usecase.ReconciliationReport, error) {
	s.calls++
	return s.report, s.err
}

func TestReconciliationJobLogsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		report  *usecase.ReconciliationReport
		err     error
		wantErr bool
		wantLog string
	}{
		{
			name:    "consistent",
			report:  &usecase.ReconciliationReport{Consistent: true, TotalValueUSD: decimal.NewFromInt(42)},
			wantLog: "ledger reconciled",
		},
		{
			name:    "discrepancy",
			report:  &usecase.ReconciliationReport{Consistent: false, TotalValueUSD: decimal.Zero},
			wantLog: "ledger reconciliation found discrepancies",
		},
		{
			name:    "check fails",
			err:     errors.New("db down"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := &stubReconciler{report: tt.report, err: tt.err}

			err := scheduler.ReconciliationJob(r, zerolog.New(&buf))(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, r.calls)
			assert.True(t, strings.Contains(buf.String(), tt.wantLog), buf.String())
		})
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := scheduler.New(zerolog.Nop(), time.Second)

	_, err := s.AddJob("broken", "not a schedule", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}

func TestAddReconciliationRegistersEntry(t *testing.T) {
	s := scheduler.New(zerolog.Nop(), time.Second)

	_, err := s.AddReconciliation("@every 5m", &stubReconciler{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduledJobRuns(t *testing.T) {
	s := scheduler.New(zerolog.Nop(), time.Second)

	ran := make(chan struct{}, 1)
	_, err := s.AddJob("tick", "@every 1s", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
