package sqlite

import (
	"database/sql"
	"errors"

	qerrors "github.com/r91781585-tech/quiet-hours-scheduler/internal/errors"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/models"
)

const sessionColumns = `id, title, date, time, duration_min, category, notes, status,
	recurring_group, notifications, created_at, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var (
		sess                   models.Session
		status, createdAt      string
		startedAt, completedAt sql.NullString
	)
	err := row.Scan(
		&sess.ID, &sess.Title, &sess.Date, &sess.Time, &sess.DurationMin, &sess.Category, &sess.Notes, &status,
		&sess.RecurringGroup, &sess.Notifications, &createdAt, &startedAt, &completedAt,
	)
	if err != nil {
		return models.Session{}, err
	}

	sess.Status = models.SessionStatus(status)
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Session{}, err
	}
	if sess.StartedAt, err = parseNullTime(startedAt); err != nil {
		return models.Session{}, err
	}
	if sess.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetAllSessions() ([]models.Session, error) {
	rows, err := s.db.Query("SELECT " + sessionColumns + " FROM sessions ORDER BY seq")
	if err != nil {
		return nil, qerrors.IO(err, "failed to read sessions")
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, qerrors.IO(err, "failed to read sessions")
		}
		sessions = append(sessions, sess)
	}
	return sessions, qerrors.IO(rows.Err(), "failed to read sessions")
}

func (s *Store) GetSession(id string) (models.Session, error) {
	row := s.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, qerrors.NotFound("session", id)
	}
	if err != nil {
		return models.Session{}, qerrors.IO(err, "failed to read session")
	}
	return sess, nil
}

// AppendSessions inserts all sessions in one transaction, after any
// existing ones.
func (s *Store) AppendSessions(sessions []models.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return qerrors.IO(err, "failed to append sessions")
	}
	defer tx.Rollback()

	if err := insertSessions(tx, sessions); err != nil {
		return qerrors.IO(err, "failed to append sessions")
	}
	return qerrors.IO(tx.Commit(), "failed to append sessions")
}

func insertSessions(tx *sql.Tx, sessions []models.Session) error {
	var seq int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM sessions").Scan(&seq); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sessions (seq, ` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sess := range sessions {
		seq++
		_, err := stmt.Exec(
			seq, sess.ID, sess.Title, sess.Date, sess.Time, sess.DurationMin, sess.Category, sess.Notes, string(sess.Status),
			sess.RecurringGroup, sess.Notifications, formatTime(sess.CreatedAt),
			formatNullTime(sess.StartedAt), formatNullTime(sess.CompletedAt),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpdateSession(sess models.Session) error {
	res, err := s.db.Exec(`
		UPDATE sessions SET title = ?, date = ?, time = ?, duration_min = ?, category = ?, notes = ?,
		       status = ?, recurring_group = ?, notifications = ?, created_at = ?, started_at = ?, completed_at = ?
		WHERE id = ?`,
		sess.Title, sess.Date, sess.Time, sess.DurationMin, sess.Category, sess.Notes,
		string(sess.Status), sess.RecurringGroup, sess.Notifications, formatTime(sess.CreatedAt),
		formatNullTime(sess.StartedAt), formatNullTime(sess.CompletedAt), sess.ID,
	)
	if err != nil {
		return qerrors.IO(err, "failed to update session")
	}
	return affectedOne(res, "session", sess.ID)
}

func (s *Store) RemoveSession(id string) error {
	res, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return qerrors.IO(err, "failed to remove session")
	}
	return affectedOne(res, "session", id)
}

func (s *Store) ReplaceAllSessions(sessions []models.Session) error {
	tx, err := s.db.Begin()
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
