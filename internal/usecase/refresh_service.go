package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/dugoutlabs/ballclub/internal/domain/team"
)

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"

	defaultRefreshWorkers = 4
	maxRefreshWorkers     = 16
)

type RefreshInput struct {
	MaxWorkers int
}

type RefreshResult struct {
	TeamCount    int                 `json:"team_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Tasks        []RefreshTaskResult `json:"tasks"`
}

type RefreshTaskResult struct {
	TeamID     string `json:"team_id"`
	Status     string `json:"status"`
	Players    int    `json:"players"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// RefreshService rebuilds roster snapshots for every visible team, fanning
// the composite reads out over a bounded worker pool. It backs the internal
// warm-up job; it is not part of any user-facing flow.
type RefreshService struct {
	teamRepo team.Repository
	roster   *RosterService
	logger   *slog.Logger
}

func NewRefreshService(teamRepo team.Repository, roster *RosterService, logger *slog.Logger) *RefreshService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RefreshService{
		teamRepo: teamRepo,
		roster:   roster,
		logger:   logger,
	}
}

func (s *RefreshService) RefreshSnapshots(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list teams for refresh: %w", err)
	}

	workerCount := normalizeRefreshWorkerCount(input.MaxWorkers, len(teams))
	result := RefreshResult{
		TeamCount:   len(teams),
		WorkerCount: workerCount,
		Tasks:       make([]RefreshTaskResult, 0, len(teams)),
	}
	if len(teams) == 0 {
		return result, nil
	}

	results := make(chan RefreshTaskResult, len(teams))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, item := range teams {
		item := item
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RefreshTaskResult{TeamID: item.ID}

			combined, fetchErr := s.roster.FetchTeamAndRoster(ctx, item.ID)
			if fetchErr != nil {
				row.Status = refreshStatusFailed
				row.Message = fetchErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = refreshStatusSuccess
				row.Players = len(combined.Players)
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()

			results <- row
		}); err != nil {
			workers.Done()
			return RefreshResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].TeamID < result.Tasks[j].TeamID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "snapshot refresh finished",
		"teams", result.TeamCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"workers", result.WorkerCount,
	)

	return result, nil
}

func normalizeRefreshWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = defaultRefreshWorkers
	}
	if count > maxRefreshWorkers {
		count = maxRefreshWorkers
	}
	if taskCount > 0 && count > taskCount {
		count = taskCount
	}
	if count < 1 {
		count = 1
	}
	return count
}
