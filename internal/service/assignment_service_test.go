package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/supply-desk-api/internal/models"
	"github.com/noah-isme/supply-desk-api/internal/repository"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

type staticRoster struct {
	handlers []models.Participant
	err      error
}

func (r staticRoster) Handlers(_ context.Context) ([]models.Participant, error) {
	return r.handlers, r.err
}

type fakeCounter struct {
	tick int64
}

func (c *fakeCounter) Next(_ context.Context, _ string) (int64, error) {
	c.tick++
	return c.tick, nil
}

type staticLoads struct {
	loads []repository.HandlerLoad
}

func (l staticLoads) OpenCountsByHandler(_ context.Context) ([]repository.HandlerLoad, error) {
	return l.loads, nil
}

func roster(ids ...string) []models.Participant {
	out := make([]models.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Participant{ID: id, DisplayName: id, Role: models.RoleHandler})
	}
	return out
}

func TestAssignmentManualProposesNobody(t *testing.T) {
	svc := NewAssignmentService(staticRoster{handlers: roster("h1", "h2")}, nil)

	assert.Equal(t, PolicyManual, svc.Policy())
	proposal, err := svc.Propose(context.Background())
	require.NoError(t, err)
	assert.Nil(t, proposal)
}

func TestAssignmentEmptyRoster(t *testing.T) {
	svc := NewAssignmentService(staticRoster{}, ManualPolicy{})

	_, err := svc.Propose(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAssignmentRoundRobinRotates(t *testing.T) {
	svc := NewAssignmentService(staticRoster{handlers: roster("h1", "h2", "h3")}, NewRoundRobinPolicy(&fakeCounter{}))
	ctx := context.Background()

	var picked []string
	for i := 0; i < 4; i++ {
		proposal, err := svc.Propose(ctx)
		require.NoError(t, err)
		require.NotNil(t, proposal)
		picked = append(picked, proposal.ID)
	}
	assert.Equal(t, []string{"h1", "h2", "h3", "h1"}, picked)
}

func TestAssignmentLeastLoaded(t *testing.T) {
	policy := NewLeastLoadedPolicy(staticLoads{loads: []repository.HandlerLoad{
		{HandlerID: "h1", Open: 3},
		{HandlerID: "h2", Open: 1},
	}})
	svc := NewAssignmentService(staticRoster{handlers: roster("h1", "h2")}, policy)

	proposal, err := svc.Propose(context.Background())
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, "h2", proposal.ID)
}

func TestAssignmentLeastLoadedPrefersIdleHandler(t *testing.T) {
	policy := NewLeastLoadedPolicy(staticLoads{loads: []repository.HandlerLoad{
		{HandlerID: "h1", Open: 2},
	}})
	svc := NewAssignmentService(staticRoster{handlers: roster("h1", "h2")}, policy)

	proposal, err := svc.Propose(context.Background())
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, "h2", proposal.ID)
}

func TestAssignmentCandidates(t *testing.T) {
	svc := NewAssignmentService(staticRoster{handlers: roster("h1", "h2")}, ManualPolicy{})

	candidates, err := svc.Candidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}
