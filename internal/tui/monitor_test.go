package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func TestModelTracksStages(t *testing.T) {
	m := NewModel("1.20")

	m = update(t, m, StageUpdate{Kind: async.KindAssets, State: StateRunning, Progress: models.TaskProgress{Finished: 3, Total: 10, Bytes: 2048}})
	assert.Equal(t, StateRunning, m.statuses[async.KindAssets].State)
	assert.False(t, m.statuses[async.KindAssets].StartTime.IsZero())

	view := m.View()
	assert.Contains(t, view, "Installing 1.20")
	assert.Contains(t, view, "3/10")
	assert.Contains(t, view, "2.0 KiB")

	m = update(t, m, StageUpdate{Kind: async.KindAssets, State: StateDone, Progress: models.TaskProgress{Finished: 10, Total: 10}})
	m = update(t, m, StageUpdate{Kind: async.KindJar, State: StateFailed, Error: errors.New("checksum mismatch")})

	done, failed := m.counts()
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, failed)
	assert.Contains(t, m.View(), "checksum mismatch")
}

func TestModelIgnoresUnknownStage(t *testing.T) {
	m := update(t, NewModel(""), StageUpdate{Kind: async.KindAssetIndex, State: StateDone})

	done, _ := m.counts()
	assert.Zero(t, done)
	assert.Contains(t, m.View(), "Installing latest release")
}

func TestModelKeepsLastTenLogs(t *testing.T) {
	m := NewModel("1.20")
	for i := 0; i < 15; i++ {
		m = update(t, m, LogMessage{Message: "line"})
	}
	assert.Len(t, m.logs, 10)
}

func TestModelQuitsWhenInstallFinishes(t *testing.T) {
	m := NewModel("1.20")

	next, cmd := m.Update(InstallFinished{Err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.EqualError(t, next.(Model).Err(), "boom")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "Shutting down...\n", next.View())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "3.0 MiB", formatBytes(3<<20))
}
