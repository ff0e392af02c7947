package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSkipsEmptySpec(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(Job{Name: "sweep", Run: func(context.Context) error { return nil }}))
	assert.Equal(t, 0, s.Entries())
}

func TestAddRejectsInvalidSpec(t *testing.T) {
	s := New()
	err := s.Add(Job{Name: "sweep", Spec: "every now and then", Run: func(context.Context) error { return nil }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep")
}

func TestScheduledJobRuns(t *testing.T) {
	s := New()
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add(Job{
		Name: "tick",
		Spec: "@every 1s",
		Run: func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	}))
	assert.Equal(t, 1, s.Entries())

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
