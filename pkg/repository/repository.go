package repository

import (
	"context"

	"github.com/garnizeh/fairway/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// JobFilter narrows ListOpenJobs. Zero values mean "no constraint".
type JobFilter struct {
	JobType      string
	UrgencyLevel string
	// Lat/Lng/RadiusKm enable proximity search when RadiusKm > 0.
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
	Offset   int
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	UpdateJob(ctx context.Context, j *models.Job) error
	ListOpenJobs(ctx context.Context, f JobFilter) ([]models.Job, error)
	CountOpenJobs(ctx context.Context, f JobFilter) (int64, error)
	ListJobsByCourse(ctx context.Context, courseID int64, limit, offset int) ([]models.Job, error)
	// CancelJob marks the job cancelled and rejects its still-pending
	// applications in one transaction. Returns false if the job was not in
	// a cancellable status.
	CancelJob(ctx context.Context, jobID int64) (bool, error)
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.Application) (int64, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	GetApplicationByJobAndProfessional(ctx context.Context, jobID, professionalID int64) (*models.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error)
	ListApplicationsByProfessional(ctx context.Context, professionalID int64) ([]models.Application, error)
	// TransitionStatus performs a guarded status write: the row is updated
	// only if its status still equals from. Returns false when the guard
	// missed (row absent or already past from).
	TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error)
	// AcceptApplication marks the application accepted_by_course and rejects
	// all sibling pending applications of the same job in one transaction.
	// Guarded on status = pending.
	AcceptApplication(ctx context.Context, id, jobID int64) (bool, error)
	// ConfirmApplication marks the application accepted_by_professional and
	// moves the parent job to in_progress with the professional recorded, in
	// one transaction. Guarded on status = accepted_by_course and job status
	// = open.
	ConfirmApplication(ctx context.Context, id, jobID, professionalID int64) (bool, error)
	DeleteApplication(ctx context.Context, id int64) error
}

type UpdateRepo interface {
	CreateJobUpdate(ctx context.Context, u *models.JobUpdate) (int64, error)
	ListJobUpdates(ctx context.Context, jobID int64) ([]models.JobUpdate, error)
	HasMilestone(ctx context.Context, jobID int64, milestone string) (bool, error)
}

type ConversationRepo interface {
	// EnsureConversation fetches or inserts the conversation for a job,
	// keyed uniquely by job_id. Calling it twice yields the same row.
	EnsureConversation(ctx context.Context, jobID, courseID, professionalID int64) (*models.Conversation, error)
	GetConversationByID(ctx context.Context, id int64) (*models.Conversation, error)
	GetConversationByJob(ctx context.Context, jobID int64) (*models.Conversation, error)
	ListConversationsByAccount(ctx context.Context, accountID int64) ([]models.Conversation, error)
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) (int64, error)
	ListMessagesByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error)
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotificationsByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID int64) (bool, error)
	MarkNotificationDelivered(ctx context.Context, id int64) error
}

type QueueRepo interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateBackgroundJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
}
