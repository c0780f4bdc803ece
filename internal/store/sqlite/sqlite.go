// Package sqlite provides a SessionRepository backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/branchling/internal/store"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

// DBFilename is the name of the file created in the storage directory.
const DBFilename = "sessions.db"

// NewSessionsDB opens (creating if needed) the sessions database in
// storageDir.
func NewSessionsDB(storageDir string) (*SessionsDB, error) {
	return NewSessionsDBConn(filepath.Join(storageDir, DBFilename))
}

// NewSessionsDBConn opens (creating if needed) the sessions database at the
// given file path.
func NewSessionsDBConn(file string) (*SessionsDB, error) {
	repo := &SessionsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

type SessionsDB struct {
	db *sql.DB
}

func (repo *SessionsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		state TEXT NOT NULL,
		created INTEGER NOT NULL,
		updated INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *SessionsDB) Create(ctx context.Context, s store.Session) (store.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return store.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO sessions (id, state, created, updated) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return store.Session{}, wrapDBError(err)
	}
	defer stmt.Close()
	now := time.Now()

	_, err = stmt.ExecContext(ctx, newUUID.String(), encodeState(s.State), now.Unix(), now.Unix())
	if err != nil {
		return store.Session{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *SessionsDB) GetAll(ctx context.Context) ([]store.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, state, created, updated FROM sessions ORDER BY id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []store.Session

	for rows.Next() {
		var s store.Session
		var id string
		var state string
		var created int64
		var updated int64
		err = rows.Scan(
			&id,
			&state,
			&created,
			&updated,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		s, err = sessionFromRow(id, state, created, updated)
		if err != nil {
			return all, err
		}

		all = append(all, s)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *SessionsDB) GetByID(ctx context.Context, id uuid.UUID) (store.Session, error) {
	var state string
	var created int64
	var updated int64

	row := repo.db.QueryRowContext(ctx, `SELECT state, created, updated FROM sessions WHERE id = ?;`, id.String())
	err := row.Scan(
		&state,
		&created,
		&updated,
	)
	if err != nil {
		return store.Session{}, wrapDBError(err)
	}

	return sessionFromRow(id.String(), state, created, updated)
}

func (repo *SessionsDB) Update(ctx context.Context, id uuid.UUID, s store.Session) (store.Session, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE sessions SET id=?, state=?, updated=? WHERE id=?;`,
		s.ID.String(),
		encodeState(s.State),
		time.Now().Unix(),
		id.String(),
	)
	if err != nil {
		return store.Session{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return store.Session{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return store.Session{}, store.ErrNotFound
	}

	return repo.GetByID(ctx, s.ID)
}

func (repo *SessionsDB) Delete(ctx context.Context, id uuid.UUID) (store.Session, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, store.ErrNotFound
	}

	return curVal, nil
}

func (repo *SessionsDB) Close() error {
	return repo.db.Close()
}

func encodeState(st store.State) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(st))
}

func sessionFromRow(id, state string, created, updated int64) (store.Session, error) {
	var s store.Session
	var err error

	s.ID, err = uuid.Parse(id)
	if err != nil {
		return s, fmt.Errorf("stored ID %q is invalid: %w", id, err)
	}

	stateData, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return s, fmt.Errorf("stored state for %s is not base64: %w", id, err)
	}
	if _, err := rezi.DecBinary(stateData, &s.State); err != nil {
		return s, fmt.Errorf("stored state for %s is invalid: %w", id, err)
	}

	s.Created = time.Unix(created, 0)
	s.Updated = time.Unix(updated, 0)

	return s, nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return store.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
