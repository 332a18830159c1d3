package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

type sessionRow struct {
	ID             string       `db:"id"`
	Title          string       `db:"title"`
	Date           string       `db:"date"`
	Time           string       `db:"time"`
	DurationMin    int          `db:"duration_min"`
	Category       string       `db:"category"`
	Notes          string       `db:"notes"`
	Status         string       `db:"status"`
	RecurringGroup string       `db:"recurring_group"`
	Notifications  bool         `db:"notifications"`
	CreatedAt      time.Time    `db:"created_at"`
	StartedAt      sql.NullTime `db:"started_at"`
	CompletedAt    sql.NullTime `db:"completed_at"`
}

const sessionColumns = `id, title, date, time, duration_min, category, notes, status,
	recurring_group, notifications, created_at, started_at, completed_at`

func toRow(s models.Session) sessionRow {
	return sessionRow{
		ID:             s.ID,
		Title:          s.Title,
		Date:           s.Date,
		Time:           s.Time,
		DurationMin:    s.DurationMin,
		Category:       s.Category,
		Notes:          s.Notes,
		Status:         string(s.Status),
		RecurringGroup: s.RecurringGroup,
		Notifications:  s.Notifications,
		CreatedAt:      s.CreatedAt,
		StartedAt:      nullTime(s.StartedAt),
		CompletedAt:    nullTime(s.CompletedAt),
	}
}

func (r sessionRow) session() models.Session {
	return models.Session{
		ID:             r.ID,
		Title:          r.Title,
		Date:           r.Date,
		Time:           r.Time,
		DurationMin:    r.DurationMin,
		Category:       r.Category,
		Notes:          r.Notes,
		Status:         models.SessionStatus(r.Status),
		RecurringGroup: r.RecurringGroup,
		Notifications:  r.Notifications,
		CreatedAt:      r.CreatedAt.UTC(),
		StartedAt:      timePtr(r.StartedAt),
		CompletedAt:    timePtr(r.CompletedAt),
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func (s *Store) GetAllSessions() ([]models.Session, error) {
	var rows []sessionRow
	if err := s.db.Select(&rows, "SELECT "+sessionColumns+" FROM sessions ORDER BY seq"); err != nil {
		return nil, qerrors.IO(err, "failed to read sessions")
	}
	sessions := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.session())
	}
	return sessions, nil
}

func (s *Store) GetSession(id string) (models.Session, error) {
	var row sessionRow
	err := s.db.Get(&row, "SELECT "+sessionColumns+" FROM sessions WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, qerrors.NotFound("session", id)
	}
	if err != nil {
		return models.Session{}, qerrors.IO(err, "failed to read session")
	}
	return row.session(), nil
}

const insertSession = `
	INSERT INTO sessions (` + sessionColumns + `)
	VALUES (:id, :title, :date, :time, :duration_min, :category, :notes, :status,
	        :recurring_group, :notifications, :created_at, :started_at, :completed_at)`

func insertSessions(tx *sqlx.Tx, sessions []models.Session) error {
	for _, sess := range sessions {
		if _, err := tx.NamedExec(insertSession, toRow(sess)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AppendSessions(sessions []models.Session) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return qerrors.IO(err, "failed to append sessions")
	}
	defer tx.Rollback()

	if err := insertSessions(tx, sessions); err != nil {
		return qerrors.IO(err, "failed to append sessions")
	}
	return qerrors.IO(tx.Commit(), "failed to append sessions")
}

func (s *Store) UpdateSession(sess models.Session) error {
	res, err := s.db.NamedExec(`
		UPDATE sessions SET title = :title, date = :date, time = :time, duration_min = :duration_min,
		       category = :category, notes = :notes, status = :status, recurring_group = :recurring_group,
		       notifications = :notifications, created_at = :created_at, started_at = :started_at,
		       completed_at = :completed_at
		WHERE id = :id`, toRow(sess))
	if err != nil {
		return qerrors.IO(err, "failed to update session")
	}
	return affectedOne(res, "session", sess.ID)
}

func (s *Store) RemoveSession(id string) error {
	res, err := s.db.Exec("DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return qerrors.IO(err, "failed to remove session")
	}
	return affectedOne(res, "session", id)
}

func (s *Store) ReplaceAllSessions(sessions []models.Session) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return qerrors.IO(err, "failed to replace sessions")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return qerrors.IO(err, "failed to replace sessions")
	}
	if err := insertSessions(tx, sessions); err != nil {
		return qerrors.IO(err, "failed to replace sessions")
	}
	return qerrors.IO(tx.Commit(), "failed to replace sessions")
}

func affectedOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return qerrors.IO(err, "failed to read affected rows")
	}
	if n == 0 {
		return qerrors.NotFound(kind, id)
	}
	return nil
}
