package postgres

import (
	"database/sql"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type taskRow struct {
	ID         string       `db:"id"`
	Type       string       `db:"type"`
	SessionID  string       `db:"session_id"`
	DueAt      time.Time    `db:"due_at"`
	Minutes    int          `db:"minutes"`
	Executed   bool         `db:"executed"`
	ExecutedAt sql.NullTime `db:"executed_at"`
}

func (s *Store) SaveTask(task models.ScheduledTask) error {
	_, err := s.db.NamedExec(`
		INSERT INTO scheduled_tasks (id, type, session_id, due_at, minutes, executed, executed_at)
		VALUES (:id, :type, :session_id, :due_at, :minutes, :executed, :executed_at)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, session_id = EXCLUDED.session_id,
		       due_at = EXCLUDED.due_at, minutes = EXCLUDED.minutes, executed = EXCLUDED.executed,
		       executed_at = EXCLUDED.executed_at`,
		taskRow{
			ID:         task.ID,
			Type:       string(task.Type),
			SessionID:  task.SessionID,
			DueAt:      task.DueAt,
			Minutes:    task.Minutes,
			Executed:   task.Executed,
			ExecutedAt: nullTime(task.ExecutedAt),
		})
	return qerrors.IO(err, "failed to save task")
}

func (s *Store) GetPendingTasks() ([]models.ScheduledTask, error) {
	var rows []taskRow
	err := s.db.Select(&rows, `
		SELECT id, type, session_id, due_at, minutes, executed, executed_at
		FROM scheduled_tasks WHERE NOT executed ORDER BY due_at, id`)
	if err != nil {
		return nil, qerrors.IO(err, "failed to read tasks")
	}
	tasks := make([]models.ScheduledTask, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, models.ScheduledTask{
			ID:         row.ID,
			Type:       models.TaskType(row.Type),
			SessionID:  row.SessionID,
			DueAt:      row.DueAt.UTC(),
			Minutes:    row.Minutes,
			Executed:   row.Executed,
			ExecutedAt: timePtr(row.ExecutedAt),
		})
	}
	return tasks, nil
}

func (s *Store) MarkTaskExecuted(id string, at time.Time) error {
	res, err := s.db.Exec("UPDATE scheduled_tasks SET executed = TRUE, executed_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return qerrors.IO(err, "failed to mark task executed")
	}
	return affectedOne(res, "task", id)
}
