package mock

import (
	"context"
	"sync"
	"time"

	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

// In-memory repositories for tests. They mirror the guarded-write semantics
// of the sqlite implementation closely enough to exercise the services.
type Mocks struct {
	Accounts      *AccountRepo
	Jobs          *JobRepo
	Applications  *ApplicationRepo
	Updates       *UpdateRepo
	Conversations *ConversationRepo
	Messages      *MessageRepo
	Notifications *NotificationRepo
	Queue         *QueueRepo
}

func NewMocks() *Mocks {
	jobs := &JobRepo{}
	apps := &ApplicationRepo{jobs: jobs}
	return &Mocks{
		Accounts:      &AccountRepo{},
		Jobs:          jobs,
		Applications:  apps,
		Updates:       &UpdateRepo{},
		Conversations: &ConversationRepo{},
		Messages:      &MessageRepo{},
		Notifications: &NotificationRepo{},
		Queue:         &QueueRepo{},
	}
}

func now() int64 { return time.Now().UTC().UnixMilli() }

var (
	_ repository.AccountRepo      = (*AccountRepo)(nil)
	_ repository.JobRepo          = (*JobRepo)(nil)
	_ repository.ApplicationRepo  = (*ApplicationRepo)(nil)
	_ repository.UpdateRepo       = (*UpdateRepo)(nil)
	_ repository.ConversationRepo = (*ConversationRepo)(nil)
	_ repository.MessageRepo      = (*MessageRepo)(nil)
	_ repository.NotificationRepo = (*NotificationRepo)(nil)
	_ repository.QueueRepo        = (*QueueRepo)(nil)
)

type AccountRepo struct {
	mu        sync.Mutex
	Stored    []*models.Account
	CreateErr error
}

func (m *AccountRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.ID = int64(len(m.Stored) + 1)
	cp.Created = now()
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *AccountRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Stored {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Stored {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

type JobRepo struct {
	mu        sync.Mutex
	Stored    []*models.Job
	CreateErr error
	UpdateErr error
}

func (m *JobRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	cp.ID = int64(len(m.Stored) + 1)
	cp.Created = now()
	cp.Updated = cp.Created
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *JobRepo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id), nil
}

func (m *JobRepo) getLocked(id int64) *models.Job {
	for _, j := range m.Stored {
		if j.ID == id {
			cp := *j
			return &cp
		}
	}
	return nil
}

func (m *JobRepo) UpdateJob(ctx context.Context, j *models.Job) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.Stored {
		if s.ID == j.ID {
			cp := *j
			cp.Updated = now()
			m.Stored[i] = &cp
			return nil
		}
	}
	return nil
}

func (m *JobRepo) ListOpenJobs(ctx context.Context, f repository.JobFilter) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.Stored {
		if j.Status != models.JobStatusOpen {
			continue
		}
		if f.JobType != "" && j.JobType != f.JobType {
			continue
		}
		if f.UrgencyLevel != "" && j.UrgencyLevel != f.UrgencyLevel {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (m *JobRepo) CountOpenJobs(ctx context.Context, f repository.JobFilter) (int64, error) {
	items, _ := m.ListOpenJobs(ctx, f)
	return int64(len(items)), nil
}

func (m *JobRepo) ListJobsByCourse(ctx context.Context, courseID int64, limit, offset int) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.Stored {
		if j.CourseID == courseID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *JobRepo) CancelJob(ctx context.Context, jobID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, j := range m.Stored {
		if j.ID != jobID {
			continue
		}
		if j.Status != models.JobStatusOpen && j.Status != models.JobStatusInProgress {
			return false, nil
		}
		cp := *j
		cp.Status = models.JobStatusCancelled
		cp.Updated = now()
		m.Stored[i] = &cp
		return true, nil
	}
	return false, nil
}

type ApplicationRepo struct {
	mu        sync.Mutex
	Stored    []*models.Application
	jobs      *JobRepo
	CreateErr error
}

func (m *ApplicationRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.ID = int64(len(m.Stored) + 1)
	cp.AppliedAt = now()
	cp.Updated = cp.AppliedAt
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *ApplicationRepo) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Stored {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *ApplicationRepo) GetApplicationByJobAndProfessional(ctx context.Context, jobID, professionalID int64) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Stored {
		if a.JobID == jobID && a.ProfessionalID == professionalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *ApplicationRepo) ListApplicationsByJob(ctx context.Context, jobID int64) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, a := range m.Stored {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *ApplicationRepo) ListApplicationsByProfessional(ctx context.Context, professionalID int64) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, a := range m.Stored {
		if a.ProfessionalID == professionalID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *ApplicationRepo) TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Stored {
		if a.ID == id && a.Status == from {
			a.Status = to
			a.Updated = now()
			return true, nil
		}
	}
	return false, nil
}

func (m *ApplicationRepo) AcceptApplication(ctx context.Context, id, jobID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var target *models.Application
	for _, a := range m.Stored {
		if a.ID == id {
			target = a
			break
		}
	}
	if target == nil || target.Status != models.ApplicationPending {
		return false, nil
	}
	target.Status = models.ApplicationAcceptedByCourse
	target.Updated = now()
	for _, a := range m.Stored {
		if a.JobID == jobID && a.ID != id && a.Status == models.ApplicationPending {
			a.Status = models.ApplicationRejected
			a.Updated = now()
		}
	}
	return true, nil
}

func (m *ApplicationRepo) ConfirmApplication(ctx context.Context, id, jobID, professionalID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var target *models.Application
	for _, a := range m.Stored {
		if a.ID == id {
			target = a
			break
		}
	}
	if target == nil || target.Status != models.ApplicationAcceptedByCourse {
		return false, nil
	}
	m.jobs.mu.Lock()
	defer m.jobs.mu.Unlock()
	for i, j := range m.jobs.Stored {
		if j.ID == jobID {
			if j.Status != models.JobStatusOpen {
				return false, nil
			}
			cp := *j
			cp.Status = models.JobStatusInProgress
			pid := professionalID
			cp.ProfessionalID = &pid
			cp.Updated = now()
			m.jobs.Stored[i] = &cp
			target.Status = models.ApplicationAcceptedByProfessional
			target.Updated = now()
			return true, nil
		}
	}
	return false, nil
}

func (m *ApplicationRepo) DeleteApplication(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.Stored {
		if a.ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return nil
}

type UpdateRepo struct {
	mu        sync.Mutex
	Stored    []*models.JobUpdate
	CreateErr error
}

func (m *UpdateRepo) CreateJobUpdate(ctx context.Context, u *models.JobUpdate) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	cp.ID = int64(len(m.Stored) + 1)
	cp.Created = now()
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *UpdateRepo) ListJobUpdates(ctx context.Context, jobID int64) ([]models.JobUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.JobUpdate
	for _, u := range m.Stored {
		if u.JobID == jobID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *UpdateRepo) HasMilestone(ctx context.Context, jobID int64, milestone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Stored {
		if u.JobID == jobID && u.Milestone != nil && *u.Milestone == milestone {
			return true, nil
		}
	}
	return false, nil
}

type ConversationRepo struct {
	mu        sync.Mutex
	Stored    []*models.Conversation
	EnsureErr error
	// EnsureCalls counts EnsureConversation invocations, duplicates included.
	EnsureCalls int
}

func (m *ConversationRepo) EnsureConversation(ctx context.Context, jobID, courseID, professionalID int64) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureCalls++
	if m.EnsureErr != nil {
		return nil, m.EnsureErr
	}
	for _, c := range m.Stored {
		if c.JobID == jobID {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Conversation{
		ID:             int64(len(m.Stored) + 1),
		JobID:          jobID,
		CourseID:       courseID,
		ProfessionalID: professionalID,
		Created:        now(),
	}
	m.Stored = append(m.Stored, c)
	cp := *c
	return &cp, nil
}

func (m *ConversationRepo) GetConversationByID(ctx context.Context, id int64) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Stored {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *ConversationRepo) GetConversationByJob(ctx context.Context, jobID int64) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Stored {
		if c.JobID == jobID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *ConversationRepo) ListConversationsByAccount(ctx context.Context, accountID int64) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Conversation
	for _, c := range m.Stored {
		if c.CourseID == accountID || c.ProfessionalID == accountID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type MessageRepo struct {
	mu        sync.Mutex
	Stored    []*models.Message
	CreateErr error
}

func (m *MessageRepo) CreateMessage(ctx context.Context, msg *models.Message) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	cp.ID = int64(len(m.Stored) + 1)
	cp.Created = now()
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *MessageRepo) ListMessagesByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.Stored {
		if msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

type NotificationRepo struct {
	mu        sync.Mutex
	Stored    []*models.Notification
	CreateErr error
}

func (m *NotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	cp.ID = int64(len(m.Stored) + 1)
	cp.Created = now()
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *NotificationRepo) ListNotificationsByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.Stored {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *NotificationRepo) MarkNotificationRead(ctx context.Context, id, recipientID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.Stored {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (m *NotificationRepo) MarkNotificationDelivered(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.Stored {
		if n.ID == id {
			t := now()
			n.DeliveredAt = &t
		}
	}
	return nil
}

type QueueRepo struct {
	mu         sync.Mutex
	Stored     []*models.BackgroundJob
	DeadLetter []*models.BackgroundJob
	EnqueueErr error
}

func (m *QueueRepo) Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error) {
	if m.EnqueueErr != nil {
		return 0, m.EnqueueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	cp.ID = int64(len(m.Stored) + 1)
	cp.Status = "pending"
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *QueueRepo) FetchNext(ctx context.Context) (*models.BackgroundJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.Stored {
		if j.Status == "pending" || j.Status == "retry" {
			j.Status = "running"
			cp := *j
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *QueueRepo) UpdateBackgroundJob(ctx context.Context, j *models.BackgroundJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.Stored {
		if s.ID == j.ID {
			cp := *j
			m.Stored[i] = &cp
			return nil
		}
	}
	return nil
}

// DeadLettered returns a snapshot of the dead letter table. Safe to call
// while workers are running.
func (m *QueueRepo) DeadLettered() []models.BackgroundJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BackgroundJob, 0, len(m.DeadLetter))
	for _, j := range m.DeadLetter {
		out = append(out, *j)
	}
	return out
}

func (m *QueueRepo) MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.DeadLetter = append(m.DeadLetter, &cp)
	for i, s := range m.Stored {
		if s.ID == j.ID {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			break
		}
	}
	return nil
}
