package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
)

func TestSubmitApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)

	a, err := f.apps.Submit(ctx, f.pro, job.ID, "available immediately", 40)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, a.Status)
	assert.Equal(t, f.pro.ID, a.ProfessionalID)
	assert.Equal(t, job.ID, a.JobID)
}

func TestSubmitRequiresProfessional(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)

	_, err := f.apps.Submit(context.Background(), f.course, job.ID, "", 40)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestSubmitDuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	f.apply(t, f.pro, job.ID)

	_, err := f.apps.Submit(ctx, f.pro, job.ID, "second try", 42)
	assert.Equal(t, fault.CodeConflict, fault.CodeOf(err))
}

func TestSubmitToClosedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	require.NoError(t, f.jobs.Cancel(ctx, f.course, job.ID))

	_, err := f.apps.Submit(ctx, f.pro, job.ID, "", 40)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestSubmitRejectsNonPositiveRate(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)

	_, err := f.apps.Submit(context.Background(), f.pro, job.ID, "", 0)
	assert.Equal(t, fault.CodeValidation, fault.CodeOf(err))
}

func TestAcceptRejectsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a1 := f.apply(t, f.pro, job.ID)
	a2 := f.apply(t, f.pro2, job.ID)

	accepted, err := f.apps.Accept(ctx, f.course, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAcceptedByCourse, accepted.Status)

	sibling, err := f.mocks.Applications.GetApplicationByID(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, sibling.Status)

	// the job stays open until the professional confirms
	j, err := f.mocks.Jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, j.Status)

	// the winner was notified
	notifs, err := f.mocks.Notifications.ListNotificationsByRecipient(ctx, f.pro.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "application_accepted", notifs[0].Type)
}

func TestAcceptRequiresOwningCourse(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)

	other := Actor{ID: 99, Type: models.AccountTypeCourse}
	_, err := f.apps.Accept(context.Background(), other, a.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestAcceptOnlyPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)
	_, err := f.apps.Accept(ctx, f.course, a.ID)
	require.NoError(t, err)

	_, err = f.apps.Accept(ctx, f.course, a.ID)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestRejectApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)

	rejected, err := f.apps.Reject(ctx, f.course, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, rejected.Status)
}

func TestConfirmMovesJobInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)
	_, err := f.apps.Accept(ctx, f.course, a.ID)
	require.NoError(t, err)

	confirmed, err := f.apps.Confirm(ctx, f.pro, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAcceptedByProfessional, confirmed.Status)

	j, err := f.mocks.Jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, j.Status)
	require.NotNil(t, j.ProfessionalID)
	assert.Equal(t, f.pro.ID, *j.ProfessionalID)

	// conversation with a system welcome message
	conv, err := f.mocks.Conversations.GetConversationByJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, f.course.ID, conv.CourseID)
	assert.Equal(t, f.pro.ID, conv.ProfessionalID)

	msgs, err := f.mocks.Messages.ListMessagesByConversation(ctx, conv.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageTypeSystem, msgs[0].MessageType)

	// notification recorded and its delivery enqueued
	notifs, err := f.mocks.Notifications.ListNotificationsByRecipient(ctx, f.pro.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 2) // accepted + confirmed
	assert.NotEmpty(t, f.mocks.Queue.Stored)
}

func TestConfirmRequiresApplicant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)
	_, err := f.apps.Accept(ctx, f.course, a.ID)
	require.NoError(t, err)

	_, err = f.apps.Confirm(ctx, f.pro2, a.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestConfirmRequiresCourseAcceptance(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)

	_, err := f.apps.Confirm(context.Background(), f.pro, a.ID)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestConfirmSurvivesSideEffectFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)
	_, err := f.apps.Accept(ctx, f.course, a.ID)
	require.NoError(t, err)

	f.mocks.Conversations.EnsureErr = errors.New("messaging is down")
	f.mocks.Notifications.CreateErr = errors.New("notifications are down")

	confirmed, err := f.apps.Confirm(ctx, f.pro, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAcceptedByProfessional, confirmed.Status)

	j, err := f.mocks.Jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, j.Status)
}

func TestDeclineKeepsJobOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)
	_, err := f.apps.Accept(ctx, f.course, a.ID)
	require.NoError(t, err)

	declined, err := f.apps.Decline(ctx, f.pro, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, declined.Status)

	j, err := f.mocks.Jobs.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, j.Status)
	assert.Nil(t, j.ProfessionalID)
}

func TestWithdrawOnlyPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)

	require.NoError(t, f.apps.Withdraw(ctx, f.pro, a.ID))
	gone, err := f.mocks.Applications.GetApplicationByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	b := f.apply(t, f.pro2, job.ID)
	_, err = f.apps.Accept(ctx, f.course, b.ID)
	require.NoError(t, err)
	err = f.apps.Withdraw(ctx, f.pro2, b.ID)
	assert.Equal(t, fault.CodeInvalidState, fault.CodeOf(err))
}

func TestWithdrawRequiresApplicant(t *testing.T) {
	f := newFixture(t)
	job := f.postJob(t)
	a := f.apply(t, f.pro, job.ID)

	err := f.apps.Withdraw(context.Background(), f.pro2, a.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}

func TestListForJobRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t)
	f.apply(t, f.pro, job.ID)

	items, err := f.apps.ListForJob(ctx, f.course, job.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = f.apps.ListForJob(ctx, f.pro, job.ID)
	assert.Equal(t, fault.CodeForbidden, fault.CodeOf(err))
}
