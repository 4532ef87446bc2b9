package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skupfast/skupbot/core/logger"
	"log/slog"
)

var (
	// ErrNotFound is returned when a submission id has no matching row.
	ErrNotFound = errors.New("submission not found")
	// ErrAlreadyAnswered is returned when an evaluation targets a submission
	// that already left the "new" status.
	ErrAlreadyAnswered = errors.New("submission already answered")
)

// Repository provides durable access to submissions.
type Repository interface {
	Create(ctx context.Context, form Form) (int64, error)
	Get(ctx context.Context, id int64) (*Submission, error)
	MarkAnswered(ctx context.Context, id, adminID int64, comment string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository constructs a Postgres-backed submission repository.
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new submission with status "new" and returns the assigned id.
func (r *repository) Create(ctx context.Context, form Form) (int64, error) {
	start := time.Now()
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO submissions (user_id, user_name, name, quantity, url, unpacked, city, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		form.UserID, form.UserName, form.Name, form.Quantity, form.URL, form.Unpacked, form.City, StatusNew,
	).Scan(&id)
	if err != nil {
		logger.SVCSubmissions.Error("create failed",
			slog.String("event", "submission.create"),
			slog.String("status", "fail"),
			slog.Int64("user_id", form.UserID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	logger.SVCSubmissions.Info("created",
		slog.String("event", "submission.create"),
		slog.String("status", "ok"),
		slog.Int64("submission_id", id),
		slog.Int64("user_id", form.UserID),
		slog.Duration("duration", logger.Took(start)),
	)
	return id, nil
}

// Get returns the submission by id or ErrNotFound.
func (r *repository) Get(ctx context.Context, id int64) (*Submission, error) {
	var sub Submission
	err := r.db.GetContext(ctx, &sub, `
		SELECT id, user_id, user_name, name, quantity, url, unpacked, city,
		       status, admin_id, admin_comment, created_at
		FROM submissions
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select submission %d: %w", id, err)
	}
	return &sub, nil
}

// MarkAnswered transitions the submission new -> answered and stamps the admin
// identity and comment. The update is a compare-and-set on status, so a second
// resolution attempt fails with ErrAlreadyAnswered instead of overwriting.
func (r *repository) MarkAnswered(ctx context.Context, id, adminID int64, comment string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE submissions
		SET status = $1, admin_id = $2, admin_comment = $3
		WHERE id = $4 AND status = $5`,
		StatusAnswered, adminID, comment, id, StatusNew)
	if err != nil {
		return fmt.Errorf("mark submission %d answered: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark submission %d answered: %w", id, err)
	}
	if affected == 0 {
		var status Status
		err := r.db.GetContext(ctx, &status, `SELECT status FROM submissions WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("recheck submission %d: %w", id, err)
		}
		return ErrAlreadyAnswered
	}
	logger.SVCSubmissions.Info("answered",
		slog.String("event", "submission.answered"),
		slog.String("status", "ok"),
		slog.Int64("submission_id", id),
		slog.Int64("admin_id", adminID),
	)
	return nil
}
