package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository/mock"
)

type fixture struct {
	mocks    *mock.Mocks
	jobs     *JobService
	apps     *ApplicationService
	progress *ProgressService
	disp     *Dispatcher

	course Actor
	pro    Actor
	pro2   Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := mock.NewMocks()
	disp := NewDispatcher(m.Conversations, m.Messages, m.Notifications, m.Queue, nil)
	return &fixture{
		mocks:    m,
		jobs:     NewJobService(m.Jobs, m.Applications, nil),
		apps:     NewApplicationService(m.Applications, m.Jobs, disp, nil),
		progress: NewProgressService(m.Jobs, m.Updates, nil),
		disp:     disp,
		course:   Actor{ID: 1, Type: models.AccountTypeCourse},
		pro:      Actor{ID: 2, Type: models.AccountTypeProfessional},
		pro2:     Actor{ID: 3, Type: models.AccountTypeProfessional},
	}
}

func validJobInput() JobInput {
	return JobInput{
		Title:        "Bunker renovation crew",
		Description:  "Rebuild the greenside bunkers on holes 4 through 9.",
		JobType:      models.JobTypeGreenskeeping,
		Latitude:     40.7,
		Longitude:    -74.0,
		Address:      "123 Fairway Dr",
		StartDate:    time.Now().UTC().Add(48 * time.Hour).UnixMilli(),
		HourlyRate:   45,
		UrgencyLevel: models.UrgencyNormal,
	}
}

// postJob creates an open job owned by the fixture course.
func (f *fixture) postJob(t *testing.T) *models.Job {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), f.course, validJobInput())
	require.NoError(t, err)
	require.NotNil(t, job)
	return job
}

// apply submits an application for the given professional.
func (f *fixture) apply(t *testing.T, actor Actor, jobID int64) *models.Application {
	t.Helper()
	a, err := f.apps.Submit(context.Background(), actor, jobID, "I have ten seasons of turf work.", 40)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a
}

// confirmedJob drives a job all the way to in_progress for the fixture pro.
func (f *fixture) confirmedJob(t *testing.T) (*models.Job, *models.Application) {
	t.Helper()
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)
	_, err := f.apps.Accept(ctx, f.course, a.ID)
	require.NoError(t, err)
	confirmed, err := f.apps.Confirm(ctx, f.pro, a.ID)
	require.NoError(t, err)
	job, err = f.jobs.Get(ctx, f.course, job.ID)
	require.NoError(t, err)
	return job, confirmed
}
