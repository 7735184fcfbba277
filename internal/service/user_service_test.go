package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
)

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, "boss", "other@example.com")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.users.Create(ctx, "someone", "not-an-email")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Enter a valid email address.", verr.Fields["email"])

	_, err = f.users.SetProfile(ctx, f.employee.ID, true)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestUserService_SetInterestEmployeesOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prop, err := f.properties.Create(ctx, f.employer.ID, "cleaning")
	require.NoError(t, err)

	err = f.users.SetInterest(ctx, f.employer.ID, prop.ID, true)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Only employees can declare interests.", verr.Fields["user"])

	drifter, err := f.users.Create(ctx, "drifter", "drifter@example.com")
	require.NoError(t, err)
	assert.True(t, domain.IsValidation(f.users.SetInterest(ctx, drifter.ID, prop.ID, true)))

	require.NoError(t, f.users.SetInterest(ctx, f.employee.ID, prop.ID, true))
	summary, err := f.users.Summary(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{prop.ID}, summary.Interests)
}

func TestUserService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.users.Summary(ctx, f.employee.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.IsEmployer)
	assert.False(t, *summary.IsEmployer)
	assert.Empty(t, summary.Interests)
	assert.Contains(t, summary.Insights, "No completed tasks: history similarity is inactive")

	prop, err := f.properties.Create(ctx, f.employer.ID, "cleaning")
	require.NoError(t, err)
	require.NoError(t, f.users.SetInterest(ctx, f.employee.ID, prop.ID, true))

	done := f.task(t, "Kitchen", "Clean the kitchen floor")
	f.complete(t, done)
	liked := f.task(t, "Fence", "Paint the fence")
	disliked := f.task(t, "Taxes", "File the taxes")
	require.NoError(t, f.users.RecordBehavior(ctx, f.employee.ID, liked.ID, true))
	require.NoError(t, f.users.RecordBehavior(ctx, f.employee.ID, disliked.ID, true))
	require.NoError(t, f.users.RecordBehavior(ctx, f.employee.ID, disliked.ID, false))

	summary, err = f.users.Summary(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{prop.ID}, summary.Interests)
	assert.Equal(t, 1, summary.CompletedTasks)
	assert.Equal(t, 1, summary.LikedTasks)
	assert.Equal(t, 1, summary.DislikedTasks)
	assert.Equal(t, []string{"All ranking signals are active"}, summary.Insights)

	employer, err := f.users.Summary(ctx, f.employer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, employer.OwnedTasks)
	assert.Equal(t, 2, employer.ActiveOwned)
	assert.Empty(t, employer.Insights)

	_, err = f.users.Summary(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
