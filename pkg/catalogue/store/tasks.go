package store

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func (s *GORMStore) CreateTask(ctx context.Context, t *models.Task) (string, error) {
	if t.MaxAttempts == 0 {
		t.MaxAttempts = models.DefaultMaxAttempts
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	return createWithID(s.db, ctx, t, func(t *models.Task, id string) { t.ID = id }, t.ID, nil)
}

func (s *GORMStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getByField[models.Task](s.db, ctx, "id", id, models.ErrTaskNotFound)
}

func (s *GORMStore) UpdateTask(ctx context.Context, t *models.Task) error {
	return updateFull(s.db, ctx, t.ID, t, models.ErrTaskNotFound)
}

// Ready returns up to limit tasks due for dispatch: pending or retry,
// next_execution_time unset or in the past, and with no unfinished
// dependency. On Postgres the selection locks the returned rows with
// SKIP LOCKED so two orchestrator replicas never race on the same task;
// SQLite runs single-writer and has no equivalent clause, so a plain
// transaction suffices there (§4.6, C5).
func (s *GORMStore) Ready(ctx context.Context, limit int) ([]*models.Task, error) {
	var tasks []*models.Task
	err := s.withDeadlockRetry(ctx, func(tx *gorm.DB) error {
		q := tx.WithContext(ctx).
			Where("status IN ?", []models.TaskStatus{models.TaskPending, models.TaskRetry}).
			Where("next_execution_time IS NULL OR next_execution_time <= ?", time.Now().UTC()).
			Where("depends_on_task_id IS NULL OR depends_on_task_id IN (?)",
				tx.Model(&models.Task{}).Select("id").Where("status = ?", models.TaskCompleted)).
			Order("created_at ASC").
			Limit(limit)
		if s.config.Type == DatabaseTypePostgres {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		return q.Find(&tasks).Error
	})
	return tasks, err
}

func (s *GORMStore) AwaitingDependency(ctx context.Context, dependsOnTaskID string) ([]*models.Task, error) {
	return listAll[models.Task](s.db, ctx, "created_at", nil, "depends_on_task_id = ?", dependsOnTaskID)
}

func (s *GORMStore) SiblingsOf(ctx context.Context, permissionRequestID string) ([]*models.Task, error) {
	return listAll[models.Task](s.db, ctx, "created_at", nil, "permission_request_id = ?", permissionRequestID)
}

func (s *GORMStore) ListByRequest(ctx context.Context, permissionRequestID string) ([]*models.Task, error) {
	return listAll[models.Task](s.db, ctx, "created_at", nil, "permission_request_id = ?", permissionRequestID)
}

func (s *GORMStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]models.TaskStatus{models.TaskCompleted, models.TaskFailed, models.TaskCancelled}, cutoff).
		Delete(&models.Task{})
	return res.RowsAffected, res.Error
}

// withDeadlockRetry runs fn inside a transaction, retrying with exponential
// backoff (0.1s, doubling; at most models.DefaultMaxAttempts attempts in all)
// when Postgres reports a serialization failure or deadlock (SQLSTATE
// 40001/40P01), which can happen when two orchestrator replicas both scan for
// ready tasks at once.
func (s *GORMStore) withDeadlockRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 100 * time.Millisecond
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, models.DefaultMaxAttempts-1), ctx)

	return backoff.Retry(func() error {
		err := s.db.WithContext(ctx).Transaction(fn)
		if err != nil && isDeadlockError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, b)
}

func isDeadlockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") || strings.Contains(msg, "could not serialize access")
}
