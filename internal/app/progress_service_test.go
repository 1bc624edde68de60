package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
)

func TestStartWork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)

	u, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)
	require.NotNil(t, u.Milestone)
	assert.Equal(t, models.MilestoneStarted, *u.Milestone)
	assert.Equal(t, models.UpdateTypeMilestone, u.UpdateType)
}

func TestStartWorkOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)

	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)
	_, err = f.progress.StartWork(ctx, f.pro, job.ID)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestStartWorkBeforeConfirmation(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)
	f.apply(t, f.pro, job.ID)

	// the job is still open; there is no assignment to authorize against,
	// so the state gate answers rather than a permission denial
	_, err := f.progress.StartWork(context.Background(), f.pro, job.ID)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestStartWorkRequiresAssignedProfessional(t *testing.T) {
	f := newFixture(t)
	job, _ := f.confirmedJob(t)

	_, err := f.progress.StartWork(context.Background(), f.pro2, job.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestPostUpdateRequiresSomeContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	_, err = f.progress.PostUpdate(ctx, f.pro, job.ID, UpdateInput{})
	assert.Equal(t, fault.CodeValidation, fault.CodeOf(err))
}

func TestPostUpdateDefaultsToProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	u, err := f.progress.PostUpdate(ctx, f.pro, job.ID, UpdateInput{Content: "Mowed the back nine."})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateTypeProgress, u.UpdateType)
}

func TestPostUpdateRejectsUnknownMilestone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	bogus := "finished_maybe"
	_, err = f.progress.PostUpdate(ctx, f.pro, job.ID, UpdateInput{UpdateType: models.UpdateTypeMilestone, Milestone: &bogus})
	assert.Equal(t, fault.CodeValidation, fault.CodeOf(err))
}

func TestCompletedMilestoneFinishesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	done := models.MilestoneCompleted
	_, err = f.progress.PostUpdate(ctx, f.pro, job.ID, UpdateInput{UpdateType: models.UpdateTypeMilestone, Milestone: &done})
	require.NoError(t, err)

	j, err := f.mocks.Jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, j.Status)
}

func TestCompleteWorkByCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	completed, err := f.progress.CompleteWork(ctx, f.course, job.ID, "Great work, greens look sharp.")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletionNotes)
	assert.Equal(t, "Great work, greens look sharp.", *completed.CompletionNotes)

	// a trailing completed milestone was appended
	has, err := f.mocks.Updates.HasMilestone(ctx, job.ID, models.MilestoneCompleted)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCompleteWorkRequiresStartedMilestone(t *testing.T) {
	f := newFixture(t)
	job, _ := f.confirmedJob(t)

	_, err := f.progress.CompleteWork(context.Background(), f.course, job.ID, "")
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestCompleteWorkRequiresParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	_, err = f.progress.CompleteWork(ctx, f.pro2, job.ID, "")
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestListUpdatesVisibleToParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, _ := f.confirmedJob(t)
	_, err := f.progress.StartWork(ctx, f.pro, job.ID)
	require.NoError(t, err)

	for _, actor := range []Actor{f.course, f.pro} {
		items, err := f.progress.ListUpdates(ctx, actor, job.ID)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	}

	_, err = f.progress.ListUpdates(ctx, f.pro2, job.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}
