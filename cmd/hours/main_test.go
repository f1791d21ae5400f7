package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rpggio/learnerhours/internal/domain/hours"
	"github.com/rpggio/learnerhours/internal/memory"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *hours.Service {
	t.Helper()
	store := memory.NewKVStore()
	t.Cleanup(func() { _ = store.Close() })
	return hours.NewService(store, nil)
}

func runCmd(t *testing.T, svc *hours.Service, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), svc, args, &out)
	return out.String(), err
}

func TestRun_AddListTotal(t *testing.T) {
	svc := newService(t)

	out, err := runCmd(t, svc, "add", "-date", "2024-01-05", "-start", "09:00", "-end", "10:30")
	require.NoError(t, err)
	require.Equal(t, "logged 1/5/2024 from 9:00 AM to 10:30 AM\n", out)

	_, err = runCmd(t, svc, "add", "-date", "2024-02-01", "-start", "12:15", "-end", "12:30")
	require.NoError(t, err)

	out, err = runCmd(t, svc, "list")
	require.NoError(t, err)
	require.Contains(t, out, " 0  2/1/2024 from 12:15 PM to 12:30 PM")
	require.Contains(t, out, " 1  1/5/2024 from 9:00 AM to 10:30 AM")

	out, err = runCmd(t, svc, "total")
	require.NoError(t, err)
	require.Equal(t, "Total study time: 1h 45m\n", out)
}

func TestRun_EditKeepsUnsetFields(t *testing.T) {
	svc := newService(t)
	_, err := runCmd(t, svc, "add", "-date", "2024-01-05", "-start", "09:00", "-end", "10:30")
	require.NoError(t, err)

	out, err := runCmd(t, svc, "edit", "-at", "0", "-end", "11:00")
	require.NoError(t, err)
	require.Equal(t, "updated 1/5/2024 from 9:00 AM to 11:00 AM\n", out)

	sessions, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	_, err = runCmd(t, svc, "edit", "-id", sessions[0].ID, "-start", "bad")
	require.ErrorIs(t, err, hours.ErrInvalidInput)
}

func TestRun_Delete(t *testing.T) {
	svc := newService(t)
	_, err := runCmd(t, svc, "add", "-date", "2024-01-05", "-start", "09:00", "-end", "10:30")
	require.NoError(t, err)

	_, err = runCmd(t, svc, "delete", "-at", "3")
	require.ErrorIs(t, err, hours.ErrNotFound)

	out, err := runCmd(t, svc, "delete", "-at", "0")
	require.NoError(t, err)
	require.Equal(t, "deleted\n", out)

	out, err = runCmd(t, svc, "list")
	require.NoError(t, err)
	require.Equal(t, "No study sessions logged yet.\n", out)
}

func TestRun_Search(t *testing.T) {
	svc := newService(t)

	out, err := runCmd(t, svc, "search", "2024")
	require.NoError(t, err)
	require.Equal(t, "No study sessions logged yet.\n", out)

	_, err = runCmd(t, svc, "add", "-date", "2024-01-05", "-start", "09:00", "-end", "10:30")
	require.NoError(t, err)

	out, err = runCmd(t, svc, "search", "2023")
	require.NoError(t, err)
	require.Equal(t, "No sessions found for \"2023\".\n", out)

	out, err = runCmd(t, svc, "search", "2024/01")
	require.NoError(t, err)
	require.Contains(t, out, "1/5/2024 from 9:00 AM to 10:30 AM")
}

func TestRun_Usage(t *testing.T) {
	svc := newService(t)

	_, err := runCmd(t, svc)
	require.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, svc, "fly")
	require.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, svc, "delete")
	require.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, svc, "delete", "-id", "x", "-at", "0")
	require.ErrorIs(t, err, errUsage)
}

func TestRun_PositionalTargetsFollowListOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	_, err := runCmd(t, svc, "add", "-date", "2024-01-05", "-start", "09:00", "-end", "10:30")
	require.NoError(t, err)
	_, err = runCmd(t, svc, "add", "-date", "2024-02-01", "-start", "12:15", "-end", "12:30")
	require.NoError(t, err)

	out, err := runCmd(t, svc, "edit", "-at", "1", "-start", "08:00")
	require.NoError(t, err)
	require.Equal(t, "updated 1/5/2024 from 8:00 AM to 10:30 AM\n", out)

	_, err = runCmd(t, svc, "delete", "-at", "0")
	require.NoError(t, err)

	sessions, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "2024-01-05", sessions[0].Date)
	require.Equal(t, "08:00", sessions[0].StartTime)
}
