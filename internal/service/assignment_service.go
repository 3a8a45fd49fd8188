package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/supply-desk-api/internal/models"
	"github.com/noah-isme/supply-desk-api/internal/repository"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

// Policy names accepted by ASSIGNMENT_POLICY.
const (
	PolicyManual      = "manual"
	PolicyRoundRobin  = "round_robin"
	PolicyLeastLoaded = "least_loaded"
)

type handlerRoster interface {
	Handlers(ctx context.Context) ([]models.Participant, error)
}

// SelectionPolicy decides which handler, if any, a new request should go to.
// Propose may return nil without error, meaning the choice is left to a human.
type SelectionPolicy interface {
	Name() string
	Propose(ctx context.Context, candidates []models.Participant) (*models.Participant, error)
}

// AssignmentService enumerates assignment candidates and, depending on the
// configured policy, proposes one of them. The lifecycle engine's Assign
// contract never depends on how the handler id was chosen.
type AssignmentService struct {
	roster handlerRoster
	policy SelectionPolicy
}

// NewAssignmentService constructs the service with the given policy.
func NewAssignmentService(roster handlerRoster, policy SelectionPolicy) *AssignmentService {
	if policy == nil {
		policy = ManualPolicy{}
	}
	return &AssignmentService{roster: roster, policy: policy}
}

// Candidates returns the handlers eligible for assignment.
func (s *AssignmentService) Candidates(ctx context.Context) ([]models.Participant, error) {
	return s.roster.Handlers(ctx)
}

// Propose runs the selection policy over the current roster.
func (s *AssignmentService) Propose(ctx context.Context) (*models.Participant, error) {
	candidates, err := s.roster.Handlers(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no handlers registered")
	}
	return s.policy.Propose(ctx, candidates)
}

// Policy returns the active policy name.
func (s *AssignmentService) Policy() string {
	return s.policy.Name()
}

// ManualPolicy offers the full candidate set and lets a human pick.
type ManualPolicy struct{}

func (ManualPolicy) Name() string { return PolicyManual }

func (ManualPolicy) Propose(ctx context.Context, candidates []models.Participant) (*models.Participant, error) {
	return nil, nil
}

// sequenceCounter hands out monotonically increasing ticks for rotation.
type sequenceCounter interface {
	Next(ctx context.Context, key string) (int64, error)
}

// RedisSequenceCounter backs rotation with a shared Redis counter so multiple
// gateway instances rotate through the same sequence.
type RedisSequenceCounter struct {
	client *redis.Client
}

// NewRedisSequenceCounter wraps the provided client.
func NewRedisSequenceCounter(client *redis.Client) *RedisSequenceCounter {
	return &RedisSequenceCounter{client: client}
}

func (c *RedisSequenceCounter) Next(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// RoundRobinPolicy rotates through the roster in display-name order.
type RoundRobinPolicy struct {
	counter sequenceCounter
}

// NewRoundRobinPolicy constructs the policy.
func NewRoundRobinPolicy(counter sequenceCounter) *RoundRobinPolicy {
	return &RoundRobinPolicy{counter: counter}
}

func (p *RoundRobinPolicy) Name() string { return PolicyRoundRobin }

func (p *RoundRobinPolicy) Propose(ctx context.Context, candidates []models.Participant) (*models.Participant, error) {
	tick, err := p.counter.Next(ctx, "assignment:round_robin")
	if err != nil {
		return nil, fmt.Errorf("advance rotation counter: %w", err)
	}
	chosen := candidates[int((tick-1)%int64(len(candidates)))]
	return &chosen, nil
}

type handlerLoadSource interface {
	OpenCountsByHandler(ctx context.Context) ([]repository.HandlerLoad, error)
}

// LeastLoadedPolicy picks the handler with the fewest open requests, breaking
// ties by roster order.
type LeastLoadedPolicy struct {
	loads handlerLoadSource
}

// NewLeastLoadedPolicy constructs the policy.
func NewLeastLoadedPolicy(loads handlerLoadSource) *LeastLoadedPolicy {
	return &LeastLoadedPolicy{loads: loads}
}

func (p *LeastLoadedPolicy) Name() string { return PolicyLeastLoaded }

func (p *LeastLoadedPolicy) Propose(ctx context.Context, candidates []models.Participant) (*models.Participant, error) {
	loads, err := p.loads.OpenCountsByHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("load handler counts: %w", err)
	}
	open := make(map[string]int, len(loads))
	for _, load := range loads {
		open[load.HandlerID] = load.Open
	}

	best := candidates[0]
	bestOpen := open[best.ID]
	for _, candidate := range candidates[1:] {
		if open[candidate.ID] < bestOpen {
			best = candidate
			bestOpen = open[candidate.ID]
		}
	}
	return &best, nil
}
