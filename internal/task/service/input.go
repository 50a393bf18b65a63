package service

import (
	"strings"

	"github.com/AlibekovAA/toggle-task/internal/common/validation"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
)

// TaskInput is the raw task form. Important carries the checkbox value as
// submitted so that non-boolean input can be rejected.
type TaskInput struct {
	Title     string `form:"title" validate:"required,max=100"`
	Memo      string `form:"memo" validate:"max=2000"`
	Important string `form:"important" validate:"omitempty,oneof=on true 1 off false 0"`
}

func (in TaskInput) normalized() TaskInput {
	return TaskInput{
		Title:     strings.TrimSpace(in.Title),
		Memo:      strings.TrimRight(in.Memo, " \t\r\n"),
		Important: strings.ToLower(strings.TrimSpace(in.Important)),
	}
}

func (in TaskInput) fields() (domain.Fields, error) {
	important, err := ParseImportant(in.Important)
	if err != nil {
		return domain.Fields{}, err
	}
	return domain.Fields{Title: in.Title, Memo: in.Memo, Important: important}, nil
}

func ParseImportant(raw string) (bool, error) {
	return validation.ParseCheckbox("important", raw)
}
