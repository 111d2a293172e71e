package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/service"
	"github.com/stretchr/testify/assert"
)

type countingRescanner struct{ calls int }

func (c *countingRescanner) RecalculateAll(context.Context) (service.RescanResult, error) {
	c.calls++
	return service.RescanResult{Scanned: 1}, nil
}

func TestStart_RejectsBadCron(t *testing.T) {
	s := New(&countingRescanner{}, nil, "not a cron", zerolog.Nop())
	assert.Error(t, s.Start(context.Background()))
}

func TestRescan_WithoutLock(t *testing.T) {
	r := &countingRescanner{}
	s := New(r, nil, "0 3 * * *", zerolog.Nop())

	s.rescan(context.Background())

	assert.Equal(t, 1, r.calls)
}

func TestRescan_CancelledContext(t *testing.T) {
	r := &countingRescanner{}
	s := New(r, nil, "0 3 * * *", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.rescan(ctx)

	assert.Zero(t, r.calls)
}
