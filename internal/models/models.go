package models

import (
	"encoding/json"
	"time"
)

// Account types.
const (
	AccountTypeCourse       = "course"
	AccountTypeProfessional = "professional"
)

// Job statuses.
const (
	JobStatusOpen       = "open"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Job types.
const (
	JobTypeGreenskeeping      = "greenskeeping"
	JobTypeEquipmentOperation = "equipment_operation"
	JobTypeIrrigation         = "irrigation"
	JobTypeLandscaping        = "landscaping"
	JobTypeGeneralMaintenance = "general_maintenance"
)

// Urgency levels.
const (
	UrgencyNormal    = "normal"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

// Experience levels.
const (
	ExperienceEntry        = "entry"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)

// Application statuses. The four-value vocabulary is authoritative; there is
// no two-value accepted/rejected compatibility path.
const (
	ApplicationPending                = "pending"
	ApplicationAcceptedByCourse       = "accepted_by_course"
	ApplicationAcceptedByProfessional = "accepted_by_professional"
	ApplicationRejected               = "rejected"
)

// Job update types and milestone tags.
const (
	UpdateTypeProgress  = "progress"
	UpdateTypeMilestone = "milestone"
	UpdateTypePhoto     = "photo"

	MilestoneStarted        = "started"
	MilestoneInProgress     = "in_progress"
	MilestoneAwaitingReview = "awaiting_review"
	MilestoneCompleted      = "completed"
)

// Message types.
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

type Account struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Type         string `json:"type" db:"type"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
}

type Job struct {
	ID                     int64    `json:"id" db:"id"`
	CourseID               int64    `json:"course_id" db:"course_id"`
	Title                  string   `json:"title" db:"title"`
	Description            string   `json:"description" db:"description"`
	JobType                string   `json:"job_type" db:"job_type"`
	Latitude               float64  `json:"latitude" db:"latitude"`
	Longitude              float64  `json:"longitude" db:"longitude"`
	Address                string   `json:"address,omitempty" db:"address"`
	StartDate              int64    `json:"start_date" db:"start_date"`
	EndDate                *int64   `json:"end_date,omitempty" db:"end_date"`
	HourlyRate             float64  `json:"hourly_rate" db:"hourly_rate"`
	RequiredCertifications []string `json:"required_certifications,omitempty" db:"required_certifications"`
	RequiredExperience     *string  `json:"required_experience,omitempty" db:"required_experience"`
	UrgencyLevel           string   `json:"urgency_level" db:"urgency_level"`
	Status                 string   `json:"status" db:"status"`
	// ProfessionalID is set once an application reaches accepted_by_professional.
	ProfessionalID  *int64  `json:"professional_id,omitempty" db:"professional_id"`
	CompletionNotes *string `json:"completion_notes,omitempty" db:"completion_notes"`
	Created         int64   `json:"created" db:"created"`
	Updated         int64   `json:"updated" db:"updated"`
}

type Application struct {
	ID             int64   `json:"id" db:"id"`
	JobID          int64   `json:"job_id" db:"job_id"`
	ProfessionalID int64   `json:"professional_id" db:"professional_id"`
	Message        string  `json:"message,omitempty" db:"message"`
	ProposedRate   float64 `json:"proposed_rate" db:"proposed_rate"`
	Status         string  `json:"status" db:"status"`
	AppliedAt      int64   `json:"applied_at" db:"applied_at"`
	Updated        int64   `json:"updated" db:"updated"`
}

// JobUpdate is an append-only progress record; rows are never edited or
// deleted once written.
type JobUpdate struct {
	ID             int64    `json:"id" db:"id"`
	JobID          int64    `json:"job_id" db:"job_id"`
	ProfessionalID int64    `json:"professional_id" db:"professional_id"`
	UpdateType     string   `json:"update_type" db:"update_type"`
	Milestone      *string  `json:"milestone,omitempty" db:"milestone"`
	Content        string   `json:"content,omitempty" db:"content"`
	PhotoURLs      []string `json:"photo_urls,omitempty" db:"photo_urls"`
	Created        int64    `json:"created" db:"created"`
}

// Conversation is keyed uniquely by job: at most one row per job_id.
type Conversation struct {
	ID             int64 `json:"id" db:"id"`
	JobID          int64 `json:"job_id" db:"job_id"`
	CourseID       int64 `json:"course_id" db:"course_id"`
	ProfessionalID int64 `json:"professional_id" db:"professional_id"`
	Created        int64 `json:"created" db:"created"`
}

type Message struct {
	ID             int64  `json:"id" db:"id"`
	ConversationID int64  `json:"conversation_id" db:"conversation_id"`
	SenderID       int64  `json:"sender_id" db:"sender_id"`
	Content        string `json:"content" db:"content"`
	MessageType    string `json:"message_type" db:"message_type"`
	Created        int64  `json:"created" db:"created"`
}

type Notification struct {
	ID          int64           `json:"id" db:"id"`
	RecipientID int64           `json:"recipient_id" db:"recipient_id"`
	Type        string          `json:"type" db:"type"`
	Title       string          `json:"title" db:"title"`
	Message     string          `json:"message" db:"message"`
	Metadata    json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	Read        bool            `json:"read" db:"read"`
	DeliveredAt *int64          `json:"delivered_at,omitempty" db:"delivered_at"`
	Created     int64           `json:"created" db:"created"`
}

// BackgroundJob is a queued unit of asynchronous work (notification fan-out).
type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

// ValidJobType reports whether t is a known job type.
func ValidJobType(t string) bool {
	switch t {
	case JobTypeGreenskeeping, JobTypeEquipmentOperation, JobTypeIrrigation, JobTypeLandscaping, JobTypeGeneralMaintenance:
		return true
	default:
		return false
	}
}

// ValidUrgency reports whether u is a known urgency level.
func ValidUrgency(u string) bool {
	switch u {
	case UrgencyNormal, UrgencyHigh, UrgencyEmergency:
		return true
	default:
		return false
	}
}

// ValidExperience reports whether e is a known experience level.
func ValidExperience(e string) bool {
	switch e {
	case ExperienceEntry, ExperienceIntermediate, ExperienceExpert:
		return true
	default:
		return false
	}
}

// ValidMilestone reports whether m is a known milestone tag.
func ValidMilestone(m string) bool {
	switch m {
	case MilestoneStarted, MilestoneInProgress, MilestoneAwaitingReview, MilestoneCompleted:
		return true
	default:
		return false
	}
}

// ValidUpdateType reports whether t is a known job update type.
func ValidUpdateType(t string) bool {
	switch t {
	case UpdateTypeProgress, UpdateTypeMilestone, UpdateTypePhoto:
		return true
	default:
		return false
	}
}
