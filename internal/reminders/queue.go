// Package reminders runs deferred housekeeping: session reminders, break and
// snooze follow-ups, and missed-session sweeps.
package reminders

import (
	"container/heap"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/logger"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/storage"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/utils"
)

// Handler performs one due task.
type Handler func(models.ScheduledTask) error

// taskHeap orders tasks by DueAt, then ID.
type taskHeap []models.ScheduledTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if !h[i].DueAt.Equal(h[j].DueAt) {
		return h[i].DueAt.Before(h[j].DueAt)
	}
	return h[i].ID < h[j].ID
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(models.ScheduledTask)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is a time-ordered queue of ScheduledTasks. Each task is dispatched
// at most once; a TaskStore, when given, makes pending tasks survive
// restarts.
type Queue struct {
	mu      sync.Mutex
	tasks   taskHeap
	queued  map[string]bool
	store   storage.TaskStore
	handler Handler
	log     *log.Logger
}

func NewQueue(store storage.TaskStore, handler Handler) *Queue {
	return &Queue{
		queued:  make(map[string]bool),
		store:   store,
		handler: handler,
		log:     logger.Named("reminders"),
	}
}

// Restore loads pending tasks from the store.
func (q *Queue) Restore() error {
	if q.store == nil {
		return nil
	}
	pending, err := q.store.GetPendingTasks()
	if err != nil {
		return qerrors.IO(err, "loading pending tasks")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, task := range pending {
		q.pushLocked(task)
	}
	return nil
}

// Push persists and enqueues task. Pushing an ID that is already queued
// replaces nothing and is not an error.
func (q *Queue) Push(task models.ScheduledTask) error {
	if task.ID == "" {
		return qerrors.Validation("task id is required")
	}
	if task.Executed {
		return qerrors.Validation("task %s is already executed", task.ID)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queued[task.ID] {
		return nil
	}
	if q.store != nil {
		if err := q.store.SaveTask(task); err != nil {
			return qerrors.IO(err, "saving task")
		}
	}
	q.pushLocked(task)
	return nil
}

func (q *Queue) pushLocked(task models.ScheduledTask) {
	if q.queued[task.ID] {
		return
	}
	q.queued[task.ID] = true
	heap.Push(&q.tasks, task)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len()
}

// Next returns the earliest pending task without removing it.
func (q *Queue) Next() (models.ScheduledTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks.Len() == 0 {
		return models.ScheduledTask{}, false
	}
	return q.tasks[0], true
}

// Tick dispatches every task due at or before now, in DueAt order, and
// returns them marked executed. Handler failures are logged; the task still
// counts as executed. A tick with nothing due does nothing.
func (q *Queue) Tick(now time.Time) ([]models.ScheduledTask, error) {
	cutoff := utils.ToWallClock(now)

	q.mu.Lock()
	var due []models.ScheduledTask
	for q.tasks.Len() > 0 && !q.tasks[0].DueAt.After(cutoff) {
		task := heap.Pop(&q.tasks).(models.ScheduledTask)
		delete(q.queued, task.ID)
		due = append(due, task)
	}
	q.mu.Unlock()

	executed := make([]models.ScheduledTask, 0, len(due))
	for i, task := range due {
		if q.handler != nil {
			if err := q.handler(task); err != nil {
				q.log.Warn("task failed", "id", task.ID, "type", task.Type, "error", err)
			}
		}
		at := now
		task.Executed = true
		task.ExecutedAt = &at
		if q.store != nil {
			if err := q.store.MarkTaskExecuted(task.ID, at); err != nil {
				q.requeue(due[i+1:])
				return executed, qerrors.IO(err, "marking task executed")
			}
		}
		executed = append(executed, task)
	}
	return executed, nil
}

// requeue puts back tasks a failed tick never reached.
func (q *Queue) requeue(tasks []models.ScheduledTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, task := range tasks {
		q.pushLocked(task)
	}
}
