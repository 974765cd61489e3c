package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a submitted track through the analysis pipeline.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job mirrors §6's job record: {id, hash, status, progress,
// current_step, error?, result_hash?, created_at, updated_at,
// completed_at?}.
type Job struct {
	ID          string
	Hash        string
	Status      JobStatus
	Progress    int
	CurrentStep string
	Error       string
	ResultHash  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// CreateJob inserts a new pending job for hash. A (hash) unique
// constraint collapses duplicate submissions: if a job already exists
// for this hash, its id is returned instead of creating a duplicate.
func (d *DB) CreateJob(hash string) (string, error) {
	if existing, err := d.jobByHash(hash); err == nil && existing != nil {
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err := d.db.Exec(`
		INSERT INTO jobs (id, hash, status, progress, current_step)
		VALUES (?, ?, ?, 0, '')
	`, id, hash, string(JobPending))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *DB) jobByHash(hash string) (*Job, error) {
	row := d.db.QueryRow(`SELECT id FROM jobs WHERE hash = ?`, hash)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &Job{ID: id}, nil
}

// UpdateProgress advances a job's phase and progress percentage,
// matching the structured progress stream's {phase, progress} fields.
func (d *DB) UpdateProgress(jobID string, progress int, currentStep string) error {
	_, err := d.db.Exec(`
		UPDATE jobs SET status = ?, progress = ?, current_step = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(JobProcessing), progress, currentStep, jobID)
	return err
}

// CompleteJob marks a job completed with the resulting descriptor hash.
func (d *DB) CompleteJob(jobID, resultHash string) error {
	_, err := d.db.Exec(`
		UPDATE jobs SET status = ?, progress = 100, result_hash = ?, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(JobCompleted), resultHash, jobID)
	return err
}

// FailJob marks a job failed with an error message.
func (d *DB) FailJob(jobID, errMsg string) error {
	_, err := d.db.Exec(`
		UPDATE jobs SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(JobFailed), errMsg, jobID)
	return err
}

// GetJob retrieves a job by id.
func (d *DB) GetJob(jobID string) (*Job, error) {
	row := d.db.QueryRow(`
		SELECT id, hash, status, progress, current_step, error, result_hash, created_at, updated_at, completed_at
		FROM jobs WHERE id = ?
	`, jobID)

	j := &Job{}
	var errMsg, resultHash sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(&j.ID, &j.Hash, &j.Status, &j.Progress, &j.CurrentStep, &errMsg, &resultHash, &j.CreatedAt, &j.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	j.Error = errMsg.String
	j.ResultHash = resultHash.String
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}
	return j, nil
}

// ResetStalledJobs resets jobs that have been processing for longer
// than timeout back to pending, so a crashed worker doesn't strand a
// submission indefinitely.
func (d *DB) ResetStalledJobs(timeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-timeout)
	result, err := d.db.Exec(`
		UPDATE jobs SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND updated_at < ?
	`, string(JobPending), string(JobProcessing), cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
