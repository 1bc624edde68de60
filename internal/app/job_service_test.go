package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
)

func TestCreateJob(t *testing.T) {
	f := newFixture(t)

	job, err := f.jobs.Create(context.Background(), f.course, validJobInput())
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, f.course.ID, job.CourseID)
	assert.Nil(t, job.ProfessionalID)
}

func TestCreateJobRequiresCourse(t *testing.T) {
	f := newFixture(t)

	_, err := f.jobs.Create(context.Background(), f.pro, validJobInput())
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestCreateJobValidation(t *testing.T) {
	f := newFixture(t)

	in := validJobInput()
	in.Title = "mow"
	in.Description = "too short"
	in.HourlyRate = 5
	in.JobType = "cartwashing"
	in.StartDate = 1000 // long past

	_, err := f.jobs.Create(context.Background(), f.course, in)
	require.Equal(t, fault.CodeValidation, fault.CodeOf(err))

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	for _, field := range []string{"title", "description", "hourly_rate", "job_type", "start_date"} {
		assert.Contains(t, fe.Fields, field)
	}
}

func TestCreateJobDefaultsUrgency(t *testing.T) {
	f := newFixture(t)

	in := validJobInput()
	in.UrgencyLevel = ""
	job, err := f.jobs.Create(context.Background(), f.course, in)
	require.NoError(t, err)
	assert.Equal(t, models.UrgencyNormal, job.UrgencyLevel)
}

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)

	title := "Bunker and fringe renovation crew"
	rate := 55.0
	updated, err := f.jobs.Update(ctx, f.course, job.ID, JobPatch{Title: &title, HourlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, rate, updated.HourlyRate)
	assert.Equal(t, job.Description, updated.Description)
}

func TestUpdateJobRequiresOwner(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)

	title := "hijacked"
	other := Actor{ID: 42, Type: models.AccountTypeCourse}
	_, err := f.jobs.Update(context.Background(), other, job.ID, JobPatch{Title: &title})
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestUpdateJobOnlyWhileOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)

	title := "Late edit attempt title"
	_, err := f.jobs.Update(ctx, f.course, job.ID, JobPatch{Title: &title})
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestCancelOpenJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	f.apply(t, f.pro, job.ID)

	require.NoError(t, f.jobs.Cancel(ctx, f.course, job.ID))

	j, err := f.mocks.Jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, j.Status)
}

func TestCancelCompletedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)
	_, err = f.progress.CompleteWork(ctx, f.course, job.ID, "")
	require.NoError(t, err)

	err = f.jobs.Cancel(ctx, f.course, job.ID)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestGetJobVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t) // in_progress, pro applied

	// owner sees it
	_, err := f.jobs.Get(ctx, f.course, job.ID)
	require.NoError(t, err)

	// the applicant sees it
	_, err = f.jobs.Get(ctx, f.pro, job.ID)
	require.NoError(t, err)

	// an uninvolved professional does not once the job left open
	_, err = f.jobs.Get(ctx, f.pro2, job.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestListOpenJobsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.postJob(t)
	in := validJobInput()
	in.JobType = models.JobTypeIrrigation
	_, err := f.jobs.Create(ctx, f.course, in)
	require.NoError(t, err)

	items, total, err := f.jobs.List(ctx, repository.JobFilter{JobType: models.JobTypeIrrigation})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.EqualValues(t, 1, total)

	items, total, err = f.jobs.List(ctx, repository.JobFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.EqualValues(t, 2, total)
}

func TestListMineRequiresCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.postJob(t)

	items, err := f.jobs.ListMine(ctx, f.course, 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.jobs.ListMine(ctx, f.pro, 0, 0)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}
