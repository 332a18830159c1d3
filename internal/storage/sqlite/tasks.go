package sqlite

import (
	"database/sql"
	"time"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

func (s *Store) SaveTask(task models.ScheduledTask) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO scheduled_tasks (id, type, session_id, due_at, minutes, executed, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID, string(task.Type), task.SessionID, formatTime(task.DueAt), task.Minutes,
		task.Executed, formatNullTime(task.ExecutedAt),
	)
	return qerrors.IO(err, "failed to save task")
}

// GetPendingTasks returns unexecuted tasks ordered by due time, then ID.
func (s *Store) GetPendingTasks() ([]models.ScheduledTask, error) {
	rows, err := s.db.Query(`
		SELECT id, type, session_id, due_at, minutes, executed, executed_at
		FROM scheduled_tasks WHERE executed = 0 ORDER BY due_at, id`)
	if err != nil {
		return nil, qerrors.IO(err, "failed to read tasks")
	}
	defer rows.Close()

	var tasks []models.ScheduledTask
	for rows.Next() {
		var (
			task       models.ScheduledTask
			taskType   string
			dueAt      string
			executedAt sql.NullString
		)
		if err := rows.Scan(&task.ID, &taskType, &task.SessionID, &dueAt, &task.Minutes, &task.Executed, &executedAt); err != nil {
			return nil, qerrors.IO(err, "failed to read tasks")
		}
		task.Type = models.TaskType(taskType)
		if task.DueAt, err = parseTime(dueAt); err != nil {
			return nil, qerrors.IO(err, "failed to parse task due time")
		}
		if task.ExecutedAt, err = parseNullTime(executedAt); err != nil {
			return nil, qerrors.IO(err, "failed to parse task execution time")
		}
		tasks = append(tasks, task)
	}
	return tasks, qerrors.IO(rows.Err(), "failed to read tasks")
}

func (s *Store) MarkTaskExecuted(id string, at time.Time) error {
	res, err := s.db.Exec(
		"UPDATE scheduled_tasks SET executed = 1, executed_at = ? WHERE id = ?",
		formatTime(at), id,
	)
	if err != nil {
		return qerrors.IO(err, "failed to mark task executed")
	}
	return affectedOne(res, "task", id)
}
