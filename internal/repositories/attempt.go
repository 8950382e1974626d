package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/floodjoin/internal/models"
	"github.com/desertthunder/floodjoin/internal/shared"
)

const attemptColumns = `id, sequence, run_id, channel, joined, source, error, peer_kind, peer_id, created_at, updated_at, deleted_at`

// JoinAttemptRepository implements models.Repository[*models.JoinAttempt].
type JoinAttemptRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.JoinAttempt] = (*JoinAttemptRepository)(nil)

// NewJoinAttemptRepository creates a new JoinAttemptRepository with the given database connection
func NewJoinAttemptRepository(db *sql.DB) *JoinAttemptRepository {
	return &JoinAttemptRepository{db: db}
}

// Create inserts a new [models.JoinAttempt] with a generated ID and sequence
func (r *JoinAttemptRepository) Create(attempt *models.JoinAttempt) error {
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "join_attempts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO join_attempts (id, sequence, run_id, channel, joined, source, error, peer_kind, peer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	peer := attempt.Peer()
	_, err = r.db.Exec(query,
		id,
		sequence,
		attempt.RunID(),
		attempt.Channel(),
		attempt.Joined(),
		string(attempt.Source()),
		attempt.ErrorMessage(),
		string(peer.Kind),
		peer.ID,
		attempt.CreatedAt(),
		attempt.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert join attempt: %w", err)
	}

	attempt.SetID(id)
	attempt.SetSequence(sequence)
	return nil
}

// Get retrieves an attempt by ID, excluding soft-deleted attempts
func (r *JoinAttemptRepository) Get(id string) (*models.JoinAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM join_attempts WHERE id = ? AND deleted_at IS NULL`

	attempt, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAttemptNotFound, id)
	}
	return attempt, err
}

// Latest returns the most recent attempt for a channel name, compared case-insensitively without the "@" prefix.
func (r *JoinAttemptRepository) Latest(channel string) (*models.JoinAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM join_attempts
		WHERE lower(ltrim(channel, '@')) = lower(ltrim(?, '@')) AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	attempt, err := r.scan(r.db.QueryRow(query, channel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAttemptNotFound, channel)
	}
	return attempt, err
}

// Update rewrites the outcome of an existing attempt
func (r *JoinAttemptRepository) Update(attempt *models.JoinAttempt) error {
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	attempt.SetUpdatedAt(now)

	query := `
		UPDATE join_attempts
		SET joined = ?, source = ?, error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, attempt.Joined(), string(attempt.Source()), attempt.ErrorMessage(), now, attempt.ID())
	if err != nil {
		return fmt.Errorf("failed to update join attempt: %w", err)
	}

	return requireAffected(result, attempt.ID())
}

// Delete soft deletes an attempt by setting deleted_at
func (r *JoinAttemptRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE join_attempts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete join attempt: %w", err)
	}

	return requireAffected(result, id)
}

// Clear soft deletes every attempt and returns how many were removed
func (r *JoinAttemptRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`UPDATE join_attempts SET deleted_at = ? WHERE deleted_at IS NULL`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear join attempts: %w", err)
	}

	return result.RowsAffected()
}

// List retrieves attempts matching the given criteria, newest first, excluding soft-deleted attempts.
//
// Supported criteria: "channel" (string), "run_id" (string), "joined" (bool), "limit" (int).
func (r *JoinAttemptRepository) List(criteria map[string]any) ([]*models.JoinAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM join_attempts WHERE deleted_at IS NULL`
	args := []any{}

	if channel, ok := criteria["channel"].(string); ok && channel != "" {
		query += " AND lower(ltrim(channel, '@')) = lower(ltrim(?, '@'))"
		args = append(args, channel)
	}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if joined, ok := criteria["joined"].(bool); ok {
		query += " AND joined = ?"
		args = append(args, joined)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query join attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.JoinAttempt
	for rows.Next() {
		attempt, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return attempts, nil
}

// scan reads one row into a [models.JoinAttempt]. [sql.ErrNoRows] is passed through as-is.
func (r *JoinAttemptRepository) scan(row scanner) (*models.JoinAttempt, error) {
	var (
		id        string
		sequence  int
		runID     string
		channel   string
		joined    bool
		source    string
		errMsg    string
		peerKind  string
		peerID    int64
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &channel, &joined, &source, &errMsg, &peerKind, &peerID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan join attempt: %w", err)
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	peer := models.EntityRef{Kind: models.PeerKind(peerKind), ID: peerID}
	return models.RestoreJoinAttempt(id, sequence, runID, channel, joined, models.ResolutionSource(source), errMsg, peer, createdAt, updatedAt, deleted), nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAttemptNotFound, id)
	}
	return nil
}
