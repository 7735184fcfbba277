package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
)

func TestPropertyService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, "Code", "Write the parser")

	coding, err := f.properties.Create(ctx, f.employer.ID, "coding")
	require.NoError(t, err)
	_, err = f.properties.Create(ctx, f.employer.ID, "")
	assert.True(t, domain.IsValidation(err))

	props, err := f.properties.List(ctx)
	require.NoError(t, err)
	assert.Len(t, props, 1)

	assert.True(t, domain.IsValidation(f.properties.Link(ctx, task.ID, coding.ID, f.employee.ID)))
	require.NoError(t, f.properties.Link(ctx, task.ID, coding.ID, f.employer.ID))

	tagged, err := f.properties.ForTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "coding", tagged[0].Name)

	require.NoError(t, f.properties.Unlink(ctx, task.ID, coding.ID, f.employer.ID))
	tagged, err = f.properties.ForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, tagged)

	assert.ErrorIs(t, f.properties.Link(ctx, "missing", coding.ID, f.employer.ID), domain.ErrNotFound)
}
