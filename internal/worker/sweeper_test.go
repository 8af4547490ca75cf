package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireReservations(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func newTestSweeper(t *testing.T, e Expirer, now time.Time) *Sweeper {
	s := NewSweeper(e, SweeperConfig{Interval: time.Second}, zaptest.NewLogger(t))
	s.now = func() time.Time { return now }
	return s
}

func TestRunOnceCountsReleased(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := new(mockExpirer)
	e.On("ExpireReservations", mock.Anything, now).Return(3, nil).Once()
	e.On("ExpireReservations", mock.Anything, now).Return(0, nil).Once()

	s := newTestSweeper(t, e, now)
	assert.Equal(t, 3, s.RunOnce(context.Background()))
	assert.Equal(t, 0, s.RunOnce(context.Background()))

	released, last := s.Stats()
	assert.Equal(t, int64(3), released)
	assert.Equal(t, now, last)
	e.AssertExpectations(t)
}

func TestRunOnceKeepsPartialCountOnError(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := new(mockExpirer)
	e.On("ExpireReservations", mock.Anything, now).Return(2, errors.New("db gone"))

	s := newTestSweeper(t, e, now)
	assert.Equal(t, 2, s.RunOnce(context.Background()))
	released, _ := s.Stats()
	assert.Equal(t, int64(2), released)
}

func TestRunOnceSkipsCancelledContext(t *testing.T) {
	e := new(mockExpirer)
	s := newTestSweeper(t, e, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, s.RunOnce(ctx))
	e.AssertNotCalled(t, "ExpireReservations", mock.Anything, mock.Anything)
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	e := new(mockExpirer)
	called := make(chan struct{}, 1)
	e.On("ExpireReservations", mock.Anything, mock.Anything).Return(0, nil).Run(func(mock.Arguments) {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	s := NewSweeper(e, SweeperConfig{Interval: time.Hour}, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx), "second start must fail")

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not run at start")
	}
	s.Stop()
	s.Stop()
}

func TestNewSweeperDefaults(t *testing.T) {
	s := NewSweeper(new(mockExpirer), SweeperConfig{}, nil)
	assert.Equal(t, time.Minute, s.config.Interval)
	assert.NotNil(t, s.log)
}
