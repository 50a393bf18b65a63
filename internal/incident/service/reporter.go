package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/common/resilience"
	"github.com/AlibekovAA/toggle-task/internal/common/validation"
	"github.com/AlibekovAA/toggle-task/internal/incident/domain"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

// Submitter delivers one payload to the ticketing endpoint.
type Submitter interface {
	Submit(ctx context.Context, payload domain.Payload) (domain.Ticket, error)
}

// ReportInput mirrors the task form: the report is filed from the same
// title, memo and important fields.
type ReportInput struct {
	Title     string `form:"title" validate:"required,max=100"`
	Memo      string `form:"memo" validate:"max=2000"`
	Important string `form:"important"`
}

func (in ReportInput) normalized() ReportInput {
	return ReportInput{
		Title:     strings.TrimSpace(in.Title),
		Memo:      strings.TrimSpace(in.Memo),
		Important: strings.ToLower(strings.TrimSpace(in.Important)),
	}
}

type ReporterDeps struct {
	// Submitter is nil when no ticketing endpoint is configured.
	Submitter Submitter
	Validator *validation.Validator
	Timeout   time.Duration
	Log       *logger.Logger
}

type Reporter struct {
	submitter Submitter
	validator *validation.Validator
	breaker   *resilience.CircuitBreaker
	log       *logger.Logger
}

func NewReporter(deps ReporterDeps) *Reporter {
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultIncidentTimeout
	}
	return &Reporter{
		submitter: deps.Submitter,
		validator: v,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  constants.IncidentCircuitBreakerThreshold,
			Timeout:    timeout,
			ResetAfter: constants.IncidentCircuitBreakerReset,
			Name:       "incident_api",
			IsFailure:  commonerrors.IsRemoteService,
			Logger:     deps.Log,
		}),
		log: deps.Log,
	}
}

func (r *Reporter) Enabled() bool {
	return r.submitter != nil
}

// ReportIncident files one incident on behalf of callerID. The call is made
// once: a duplicate ticket is worse than a reported failure.
func (r *Reporter) ReportIncident(ctx context.Context, callerID string, input ReportInput) (domain.Ticket, error) {
	input = input.normalized()
	important, err := validation.ParseCheckbox("important", input.Important)
	if err != nil {
		recordReport("validation_failed")
		return domain.Ticket{}, err
	}
	if err := r.validator.Struct(input); err != nil {
		recordReport("validation_failed")
		return domain.Ticket{}, err
	}

	if !r.Enabled() {
		r.log.WithFields(ctx, logger.Fields{
			"username": callerID,
			"action":   "incident_report_disabled",
		}).Warn("incident report rejected: no ticketing endpoint configured")
		recordReport("disabled")
		return domain.Ticket{}, commonerrors.ErrIncidentReportingDisabled
	}

	payload := domain.NewPayload(callerID, input.Title, input.Memo, important)

	var ticket domain.Ticket
	start := time.Now()
	err = r.breaker.Call(ctx, func(callCtx context.Context) error {
		var submitErr error
		ticket, submitErr = r.submitter.Submit(callCtx, payload)
		return submitErr
	})
	metrics.IncidentReportDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		fields := logger.Fields{
			"username": callerID,
			"urgency":  payload.Urgency,
			"action":   "incident_report_failed",
		}
		if errors.Is(err, commonerrors.ErrCircuitOpen) {
			r.log.WithFields(ctx, fields).Warn("incident report rejected: ticketing endpoint circuit open")
			recordReport("circuit_open")
			return domain.Ticket{}, commonerrors.ErrRemoteService.WithCause(err)
		}
		r.log.WithFields(ctx, fields).Errorf("incident report failed: %v", err)
		recordReport("failed")
		if !commonerrors.IsRemoteService(err) {
			return domain.Ticket{}, commonerrors.ErrRemoteService.WithCause(err)
		}
		return domain.Ticket{}, err
	}

	r.log.WithFields(ctx, logger.Fields{
		"username": callerID,
		"urgency":  payload.Urgency,
		"ticket":   ticket.Number,
		"action":   "incident_report_success",
	}).Info("incident reported")
	recordReport("success")

	return ticket, nil
}

func recordReport(outcome string) {
	metrics.IncidentReportsTotal.WithLabelValues(outcome).Inc()
}
