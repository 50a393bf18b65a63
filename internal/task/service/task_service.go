package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlibekovAA/toggle-task/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/toggle-task/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/validation"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
	"github.com/AlibekovAA/toggle-task/internal/task/domain"
	taskrepo "github.com/AlibekovAA/toggle-task/internal/task/repository"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
)

type TaskServiceDeps struct {
	Repo        taskrepo.Repository
	IDGenerator commoncrypto.IDGenerator
	Validator   *validation.Validator
	Clock       clock.Clock
	Log         *logger.Logger
}

// TaskService scopes every operation to the calling owner. A task owned by
// someone else is reported exactly like a missing one.
type TaskService struct {
	repo        taskrepo.Repository
	idGenerator commoncrypto.IDGenerator
	validator   *validation.Validator
	clock       clock.Clock
	log         *logger.Logger
}

func NewTaskService(deps TaskServiceDeps) *TaskService {
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	c := deps.Clock
	if c == nil {
		c = clock.NewRealClock()
	}
	return &TaskService{
		repo:        deps.Repo,
		idGenerator: deps.IDGenerator,
		validator:   v,
		clock:       c,
		log:         deps.Log,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, owner userdomain.ID, input TaskInput) (domain.Task, error) {
	fields, err := s.validate(input)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(owner),
			"action":  "task_create_validation_failed",
		}).Warnf("create task validation failed: %v", err)
		recordOperation("create", "validation_failed")
		return domain.Task{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		recordOperation("create", "error")
		return domain.Task{}, fmt.Errorf("generate task id: %w", err)
	}

	task := domain.Task{
		ID:        domain.ID(id),
		OwnerID:   owner,
		Title:     fields.Title,
		Memo:      fields.Memo,
		Important: fields.Important,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(owner),
			"action":  "task_create_failed",
		}).Errorf("create task failed: %v", err)
		recordOperation("create", "error")
		return domain.Task{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(owner),
		"task_id": id,
		"action":  "task_create_success",
	}).Info("task created")
	recordOperation("create", "success")

	return task, nil
}

func (s *TaskService) ListCurrent(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	tasks, err := s.repo.ListCurrent(ctx, owner)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(owner),
			"action":  "task_list_current_failed",
		}).Errorf("list current tasks failed: %v", err)
		return nil, err
	}
	return tasks, nil
}

// ListCompleted returns the owner's completed tasks, most recently completed
// first.
func (s *TaskService) ListCompleted(ctx context.Context, owner userdomain.ID) ([]domain.Task, error) {
	tasks, err := s.repo.ListCompleted(ctx, owner)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(owner),
			"action":  "task_list_completed_failed",
		}).Errorf("list completed tasks failed: %v", err)
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner userdomain.ID, id domain.ID) (domain.Task, error) {
	if !commoncrypto.IsValidID(string(id)) {
		return domain.Task{}, commonerrors.ErrTaskNotFound
	}

	task, err := s.repo.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return domain.Task{}, s.translate(ctx, "get", owner, id, err)
	}
	return task, nil
}

// UpdateTask overwrites title, memo and important. Concurrent updates of the
// same task are last-write-wins.
func (s *TaskService) UpdateTask(ctx context.Context, owner userdomain.ID, id domain.ID, input TaskInput) (domain.Task, error) {
	if !commoncrypto.IsValidID(string(id)) {
		recordOperation("update", "not_found")
		return domain.Task{}, commonerrors.ErrTaskNotFound
	}

	fields, err := s.validate(input)
	if err != nil {
		recordOperation("update", "validation_failed")
		return domain.Task{}, err
	}

	task, err := s.repo.Update(ctx, id, owner, fields)
	if err != nil {
		return domain.Task{}, s.translate(ctx, "update", owner, id, err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(owner),
		"task_id": string(id),
		"action":  "task_update_success",
	}).Info("task updated")
	recordOperation("update", "success")

	return task, nil
}

// CompleteTask is a one-way transition: completing an already completed task
// fails with a conflict and keeps the original completion time.
func (s *TaskService) CompleteTask(ctx context.Context, owner userdomain.ID, id domain.ID) (domain.Task, error) {
	if !commoncrypto.IsValidID(string(id)) {
		recordOperation("complete", "not_found")
		return domain.Task{}, commonerrors.ErrTaskNotFound
	}

	task, err := s.repo.Complete(ctx, id, owner, s.clock.Now())
	if err != nil {
		return domain.Task{}, s.translate(ctx, "complete", owner, id, err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(owner),
		"task_id": string(id),
		"action":  "task_complete_success",
	}).Info("task completed")
	recordOperation("complete", "success")

	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner userdomain.ID, id domain.ID) error {
	if !commoncrypto.IsValidID(string(id)) {
		recordOperation("delete", "not_found")
		return commonerrors.ErrTaskNotFound
	}

	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return s.translate(ctx, "delete", owner, id, err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(owner),
		"task_id": string(id),
		"action":  "task_delete_success",
	}).Info("task deleted")
	recordOperation("delete", "success")

	return nil
}

func (s *TaskService) validate(input TaskInput) (domain.Fields, error) {
	input = input.normalized()
	if err := s.validator.Struct(input); err != nil {
		if de, ok := commonerrors.AsDomainError(err); ok && de.Field() == "important" {
			_, parseErr := ParseImportant(input.Important)
			return domain.Fields{}, parseErr
		}
		return domain.Fields{}, err
	}
	return input.fields()
}

func (s *TaskService) translate(ctx context.Context, operation string, owner userdomain.ID, id domain.ID, err error) error {
	fields := logger.Fields{
		"user_id": string(owner),
		"task_id": string(id),
		"action":  "task_" + operation + "_failed",
	}

	switch {
	case errors.Is(err, taskrepo.ErrTaskNotFound):
		if operation != "get" {
			recordOperation(operation, "not_found")
		}
		s.log.WithFields(ctx, fields).Warnf("%s task failed: not found", operation)
		return commonerrors.ErrTaskNotFound
	case errors.Is(err, taskrepo.ErrTaskAlreadyCompleted):
		recordOperation(operation, "conflict")
		s.log.WithFields(ctx, fields).Warnf("%s task failed: already completed", operation)
		return commonerrors.ErrTaskAlreadyCompleted
	default:
		if operation != "get" {
			recordOperation(operation, "error")
		}
		s.log.WithFields(ctx, fields).Errorf("%s task failed: %v", operation, err)
		return err
	}
}

func recordOperation(operation, outcome string) {
	metrics.TaskOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
