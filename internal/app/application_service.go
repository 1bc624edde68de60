package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

// ApplicationService is the application lifecycle engine. Every transition
// checks the actor's rights first, then applies the primary status change as
// a single guarded write, and only then fires side effects best-effort.
type ApplicationService struct {
	apps       repository.ApplicationRepo
	jobs       repository.JobRepo
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewApplicationService(apps repository.ApplicationRepo, jobs repository.JobRepo, dispatcher *Dispatcher, logger *slog.Logger) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{apps: apps, jobs: jobs, dispatcher: dispatcher, logger: logger}
}

// Submit creates a pending application. One active application per
// (job, professional) pair; a duplicate fails with conflict.
func (s *ApplicationService) Submit(ctx context.Context, actor Actor, jobID int64, message string, proposedRate float64) (*models.Application, error) {
	if !actor.IsProfessional() {
		return nil, fault.New(fault.CodeForbidden, "only professional accounts may apply")
	}
	if proposedRate <= 0 {
		return nil, fault.Validation("invalid application", map[string]string{"proposed_rate": "must be positive"})
	}

	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}
	if job.Status != models.JobStatusOpen {
		return nil, fault.New(fault.CodeInvalidState, "job is not accepting applications")
	}

	existing, err := s.apps.GetApplicationByJobAndProfessional(ctx, jobID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate application: %w", err)
	}
	if existing != nil {
		return nil, fault.New(fault.CodeConflict, "already applied to this job")
	}

	a := &models.Application{
		JobID:          jobID,
		ProfessionalID: actor.ID,
		Message:        strings.TrimSpace(message),
		ProposedRate:   proposedRate,
		Status:         models.ApplicationPending,
	}
	id, err := s.apps.CreateApplication(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.logger.Info("application submitted",
		slog.Int64("application_id", id),
		slog.Int64("job_id", jobID),
		slog.Int64("professional_id", actor.ID))
	return s.apps.GetApplicationByID(ctx, id)
}

// Accept moves a pending application to accepted_by_course and rejects all
// sibling pending applications in the same transaction. The professional is
// notified best-effort after the transition commits.
func (s *ApplicationService) Accept(ctx context.Context, actor Actor, applicationID int64) (*models.Application, error) {
	a, job, err := s.loadForCourse(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.ApplicationPending {
		return nil, fault.New(fault.CodeInvalidState, "only pending applications can be accepted")
	}

	ok, err := s.apps.AcceptApplication(ctx, a.ID, a.JobID)
	if err != nil {
		return nil, fmt.Errorf("accept application: %w", err)
	}
	if !ok {
		// a racing transition won; the guard already made this a no-op
		return nil, fault.New(fault.CodeInvalidState, "application is no longer pending")
	}

	if _, err := s.dispatcher.Notify(ctx, a.ProfessionalID, "application_accepted",
		"Application accepted", fmt.Sprintf("Your application for %q was accepted. Confirm to start.", job.Title),
		map[string]any{"job_id": job.ID, "application_id": a.ID}); err != nil {
		s.logger.Warn("accept side effect failed", slog.Int64("application_id", a.ID), slog.Any("err", err))
	}

	return s.apps.GetApplicationByID(ctx, applicationID)
}

// Reject moves a pending application to rejected.
func (s *ApplicationService) Reject(ctx context.Context, actor Actor, applicationID int64) (*models.Application, error) {
	a, _, err := s.loadForCourse(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.ApplicationPending {
		return nil, fault.New(fault.CodeInvalidState, "only pending applications can be rejected")
	}

	ok, err := s.apps.TransitionStatus(ctx, a.ID, models.ApplicationPending, models.ApplicationRejected)
	if err != nil {
		return nil, fmt.Errorf("reject application: %w", err)
	}
	if !ok {
		return nil, fault.New(fault.CodeInvalidState, "application is no longer pending")
	}
	return s.apps.GetApplicationByID(ctx, applicationID)
}

// Confirm is the professional's acceptance of a course-accepted application.
// The application reaches its terminal success state and the parent job moves
// to in_progress atomically; the conversation, welcome message, and
// notification are fired afterwards and never roll the transition back.
func (s *ApplicationService) Confirm(ctx context.Context, actor Actor, applicationID int64) (*models.Application, error) {
	a, job, err := s.loadForProfessional(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.ApplicationAcceptedByCourse {
		return nil, fault.New(fault.CodeInvalidState, "application is not awaiting confirmation")
	}

	ok, err := s.apps.ConfirmApplication(ctx, a.ID, a.JobID, a.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("confirm application: %w", err)
	}
	if !ok {
		return nil, fault.New(fault.CodeInvalidState, "application or job state changed underneath")
	}
	s.logger.Info("application confirmed",
		slog.Int64("application_id", a.ID),
		slog.Int64("job_id", job.ID),
		slog.Int64("professional_id", a.ProfessionalID))

	s.fireConfirmSideEffects(ctx, a, job)

	return s.apps.GetApplicationByID(ctx, applicationID)
}

// Decline is the professional refusing a course-side acceptance; the job
// stays open for other applicants.
func (s *ApplicationService) Decline(ctx context.Context, actor Actor, applicationID int64) (*models.Application, error) {
	a, _, err := s.loadForProfessional(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.ApplicationAcceptedByCourse {
		return nil, fault.New(fault.CodeInvalidState, "application is not awaiting confirmation")
	}

	ok, err := s.apps.TransitionStatus(ctx, a.ID, models.ApplicationAcceptedByCourse, models.ApplicationRejected)
	if err != nil {
		return nil, fmt.Errorf("decline application: %w", err)
	}
	if !ok {
		return nil, fault.New(fault.CodeInvalidState, "application is no longer awaiting confirmation")
	}
	return s.apps.GetApplicationByID(ctx, applicationID)
}

// Withdraw deletes the applicant's own application. Only pending
// applications may be withdrawn.
func (s *ApplicationService) Withdraw(ctx context.Context, actor Actor, applicationID int64) error {
	a, err := s.apps.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if a == nil {
		return fault.New(fault.CodeNotFound, "application not found")
	}
	if a.ProfessionalID != actor.ID {
		return fault.New(fault.CodeForbidden, "not the applicant")
	}
	if a.Status != models.ApplicationPending {
		return fault.New(fault.CodeInvalidState, "only pending applications may be withdrawn")
	}
	return s.apps.DeleteApplication(ctx, a.ID)
}

// ListForJob returns a job's applications to its owning course.
func (s *ApplicationService) ListForJob(ctx context.Context, actor Actor, jobID int64) ([]models.Application, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, fault.New(fault.CodeNotFound, "job not found")
	}
	if job.CourseID != actor.ID {
		return nil, fault.New(fault.CodeForbidden, "not the owning course")
	}
	return s.apps.ListApplicationsByJob(ctx, jobID)
}

// ListOwn returns the acting professional's applications.
func (s *ApplicationService) ListOwn(ctx context.Context, actor Actor) ([]models.Application, error) {
	if !actor.IsProfessional() {
		return nil, fault.New(fault.CodeForbidden, "only professional accounts hold applications")
	}
	return s.apps.ListApplicationsByProfessional(ctx, actor.ID)
}

// loadForCourse resolves an application and its job, requiring the actor to
// be the owning course. Authorization fails before any state is touched.
func (s *ApplicationService) loadForCourse(ctx context.Context, actor Actor, applicationID int64) (*models.Application, *models.Job, error) {
	a, err := s.apps.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load application: %w", err)
	}
	if a == nil {
		return nil, nil, fault.New(fault.CodeNotFound, "application not found")
	}
	job, err := s.jobs.GetJobByID(ctx, a.JobID)
	if err != nil {
		return nil, nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, nil, fault.New(fault.CodeNotFound, "job not found")
	}
	if job.CourseID != actor.ID {
		return nil, nil, fault.New(fault.CodeForbidden, "not the owning course")
	}
	return a, job, nil
}

// loadForProfessional resolves an application and its job, requiring the
// actor to be the original applicant.
func (s *ApplicationService) loadForProfessional(ctx context.Context, actor Actor, applicationID int64) (*models.Application, *models.Job, error) {
	a, err := s.apps.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load application: %w", err)
	}
	if a == nil {
		return nil, nil, fault.New(fault.CodeNotFound, "application not found")
	}
	if a.ProfessionalID != actor.ID {
		return nil, nil, fault.New(fault.CodeForbidden, "not the applicant")
	}
	job, err := s.jobs.GetJobByID(ctx, a.JobID)
	if err != nil {
		return nil, nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, nil, fault.New(fault.CodeNotFound, "job not found")
	}
	return a, job, nil
}

// fireConfirmSideEffects runs the post-commit effects of Confirm. Each is
// caught and logged on its own; a degraded messaging path must not fail the
// transition the caller already observed.
func (s *ApplicationService) fireConfirmSideEffects(ctx context.Context, a *models.Application, job *models.Job) {
	conv, err := s.dispatcher.EnsureConversation(ctx, job.ID, job.CourseID, a.ProfessionalID)
	if err != nil {
		s.logger.Warn("confirm side effect: conversation", slog.Int64("job_id", job.ID), slog.Any("err", err))
	} else {
		welcome := fmt.Sprintf("Work on %q is confirmed. Use this conversation to coordinate.", job.Title)
		if _, err := s.dispatcher.PostSystemMessage(ctx, conv.ID, job.CourseID, welcome); err != nil {
			s.logger.Warn("confirm side effect: welcome message", slog.Int64("conversation_id", conv.ID), slog.Any("err", err))
		}
	}

	if _, err := s.dispatcher.Notify(ctx, a.ProfessionalID, "job_confirmed",
		"Job confirmed", fmt.Sprintf("You are confirmed for %q.", job.Title),
		map[string]any{"job_id": job.ID, "application_id": a.ID}); err != nil {
		s.logger.Warn("confirm side effect: notification", slog.Int64("application_id", a.ID), slog.Any("err", err))
	}
}
