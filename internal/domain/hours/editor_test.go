package hours_test

import (
	"context"
	"testing"

	"github.com/rpggio/learnerhours/internal/domain/hours"
	"github.com/stretchr/testify/require"
)

func TestEditor_SubmitCreatesWhenIdle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	editor := hours.NewEditor(svc)

	_, editing := editor.Editing()
	require.False(t, editing)

	sess, err := editor.Submit(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	sessions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []hours.Session{sess}, sessions)
}

func TestEditor_SubmitUpdatesWhileEditing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	editor := hours.NewEditor(svc)

	created, err := svc.Create(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	loaded, err := editor.Begin(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, loaded)
	id, editing := editor.Editing()
	require.True(t, editing)
	require.Equal(t, created.ID, id)

	// A rejected edit keeps the form in edit mode.
	_, err = editor.Submit(ctx, hours.Input{Date: "2024-01-05", StartTime: "12:00", EndTime: "10:00"})
	require.ErrorIs(t, err, hours.ErrInvalidInput)
	_, editing = editor.Editing()
	require.True(t, editing)

	updated, err := editor.Submit(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:30", EndTime: "10:00"})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	_, editing = editor.Editing()
	require.False(t, editing)

	sessions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "09:30", sessions[0].StartTime)
}

func TestEditor_BeginUnknownAndCancel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	editor := hours.NewEditor(svc)

	_, err := editor.Begin(ctx, "nope")
	require.ErrorIs(t, err, hours.ErrNotFound)
	_, editing := editor.Editing()
	require.False(t, editing)

	created, err := svc.Create(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	_, err = editor.Begin(ctx, created.ID)
	require.NoError(t, err)

	editor.Cancel()
	_, editing = editor.Editing()
	require.False(t, editing)

	_, err = editor.Submit(ctx, hours.Input{Date: "2024-01-06", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	sessions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
}

func TestEditor_SubmitAfterConcurrentDeleteLeavesEditMode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	editor := hours.NewEditor(svc)

	created, err := svc.Create(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	_, err = editor.Begin(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = editor.Submit(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:30", EndTime: "10:00"})
	require.ErrorIs(t, err, hours.ErrNotFound)
	_, editing := editor.Editing()
	require.False(t, editing)

	// The next submit logs a new session instead of failing again.
	sess, err := editor.Submit(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:30", EndTime: "10:00"})
	require.NoError(t, err)
	require.NotEqual(t, created.ID, sess.ID)
}

func TestEditor_BeginAtUpdatesByPosition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	editor := hours.NewEditor(svc)

	older, err := svc.Create(ctx, hours.Input{Date: "2024-01-05", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	newer, err := svc.Create(ctx, hours.Input{Date: "2024-02-01", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	loaded, err := editor.BeginAt(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, older, loaded)
	id, editing := editor.Editing()
	require.True(t, editing)
	require.Equal(t, older.ID, id)

	updated, err := editor.Submit(ctx, hours.Input{Date: "2024-01-05", StartTime: "08:00", EndTime: "10:00"})
	require.NoError(t, err)
	require.Equal(t, older.ID, updated.ID)

	sessions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, newer, sessions[0])
	require.Equal(t, "08:00", sessions[1].StartTime)

	_, err = editor.BeginAt(ctx, 5)
	require.ErrorIs(t, err, hours.ErrNotFound)
	_, editing = editor.Editing()
	require.False(t, editing)
}
