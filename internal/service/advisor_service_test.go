package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dzakyhdr/learntrack-api/pkg/ai"
)

func TestAdvisorServiceNilAdvisorAlwaysUnavailable(t *testing.T) {
	svc := NewAdvisorService(nil, zerolog.Nop())

	_, err := svc.StudyPlan(context.Background(), ai.UserProfile{}, nil)
	require.ErrorIs(t, err, ErrAdvisorUnavailable)

	_, err = svc.SuggestMilestones(context.Background(), ai.MilestoneRequest{Title: "x"})
	require.ErrorIs(t, err, ErrAdvisorUnavailable)
}

func TestAdvisorServiceBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	failing := &stubAdvisor{err: errors.New("upstream down")}
	svc := NewAdvisorService(failing, zerolog.Nop()).(*advisorService)

	ctx := context.Background()
	for i := 0; i < breakerThreshold; i++ {
		_, err := svc.SuggestMilestones(ctx, ai.MilestoneRequest{Title: "x"})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrAdvisorUnavailable)
	}
	require.Equal(t, breakerThreshold, failing.calls)

	// Breaker is open: the advisor is not called again.
	_, err := svc.SuggestMilestones(ctx, ai.MilestoneRequest{Title: "x"})
	require.ErrorIs(t, err, ErrAdvisorUnavailable)
	require.Equal(t, breakerThreshold, failing.calls)
}

func TestAdvisorServiceHalfOpenProbeRecovers(t *testing.T) {
	failing := &stubAdvisor{err: errors.New("upstream down")}
	svc := NewAdvisorService(failing, zerolog.Nop()).(*advisorService)

	current := time.Now()
	svc.now = func() time.Time { return current }

	ctx := context.Background()
	for i := 0; i < breakerThreshold; i++ {
		_, _ = svc.SuggestMilestones(ctx, ai.MilestoneRequest{Title: "x"})
	}
	_, err := svc.SuggestMilestones(ctx, ai.MilestoneRequest{Title: "x"})
	require.ErrorIs(t, err, ErrAdvisorUnavailable)

	// Past the cooldown a single probe goes through; success closes the
	// breaker again.
	current = current.Add(breakerCooldown + time.Second)
	failing.err = nil
	failing.milestones = []ai.MilestoneSuggestion{{Title: "recovered"}}

	suggestions, err := svc.SuggestMilestones(ctx, ai.MilestoneRequest{Title: "x"})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	suggestions, err = svc.SuggestMilestones(ctx, ai.MilestoneRequest{Title: "x"})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
}
