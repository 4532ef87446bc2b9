package submission

import (
	"database/sql"
	"time"
)

// Status describes the lifecycle state of a submission.
type Status string

const (
	// StatusNew marks a submission awaiting a manager evaluation.
	StatusNew Status = "new"
	// StatusAnswered marks a submission that received an evaluation. Terminal.
	StatusAnswered Status = "answered"
)

// Submission is one user's product offered for evaluation.
type Submission struct {
	ID       int64  `db:"id"`
	UserID   int64  `db:"user_id"`
	UserName string `db:"user_name"`

	Name     string `db:"name"`
	Quantity string `db:"quantity"`
	URL      string `db:"url"`
	Unpacked string `db:"unpacked"`
	City     string `db:"city"`

	Status       Status         `db:"status"`
	AdminID      sql.NullInt64  `db:"admin_id"`
	AdminComment sql.NullString `db:"admin_comment"`

	CreatedAt time.Time `db:"created_at"`
}

// Form carries the fields collected by the intake dialogue.
type Form struct {
	UserID   int64
	UserName string
	Name     string
	Quantity string
	URL      string
	Unpacked string
	City     string
}
