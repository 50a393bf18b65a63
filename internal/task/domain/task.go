package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

type ID string

// Task is owned by exactly one user for its whole life. A nil CompletedAt
// means the task is current; once set it is never cleared.
type Task struct {
	ID          ID
	OwnerID     userdomain.ID
	Title       string
	Memo        string
	Important   bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (t Task) IsCompleted() bool {
	return t.CompletedAt != nil
}

// Fields are the user-editable parts of a task.
type Fields struct {
	Title     string
	Memo      string
	Important bool
}
