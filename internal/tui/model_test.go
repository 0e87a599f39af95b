package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

func testEntities() []nodecloud.Entity {
	return []nodecloud.Entity{
		{ID: "p1", Title: "One", Tags: []string{"A", "B"}, Description: "the first project", Categories: []string{"Software"}},
		{ID: "p2", Title: "Two", Tags: []string{"B"}},
	}
}

func newModel(t *testing.T) Model {
	t.Helper()
	e := nodecloud.New(testEntities(), nodecloud.DefaultOptions())
	var m tea.Model = New(e, Config{Title: "Cloud", FPS: 60})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 42})
	m, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd, "tick reschedules itself")
	return m.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_InitializingView(t *testing.T) {
	m := New(nodecloud.New(testEntities(), nodecloud.DefaultOptions()), Config{})
	assert.Equal(t, "Initializing...", m.View())
	assert.NotNil(t, m.Init())
}

func TestModel_TickProducesFrame(t *testing.T) {
	m := newModel(t)
	require.True(t, m.hasFrame)
	assert.Equal(t, ViewportFor(120, 40), m.frame.Viewport)

	view := m.View()
	assert.Contains(t, view, "[Two]")
	assert.Contains(t, view, "(B)")
	assert.Contains(t, view, "2 projects · 2 tags · 3 links")
}

func TestModel_ZeroCanvasKeepsNoFrame(t *testing.T) {
	var tm tea.Model = New(nodecloud.New(testEntities(), nodecloud.DefaultOptions()), Config{})
	tm, _ = tm.Update(tea.WindowSizeMsg{Width: 80, Height: 2})
	tm, _ = tm.Update(tickMsg(time.Now()))
	assert.False(t, tm.(Model).hasFrame)
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ToggleLabels(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.False(t, m.engine.Options().ShowLabels)

	m, _ = update(t, m, tickMsg(time.Now()))
	view := m.View()
	assert.NotContains(t, view, "[Two]")
	assert.Contains(t, view, "●")
}

func TestModel_NudgeTurnsTarget(t *testing.T) {
	m := newModel(t)
	before := m.engine.Target()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Greater(t, m.engine.Target().Yaw, before.Yaw)
	assert.False(t, m.engine.Dragging())
}

func TestModel_TabAndEnterOpenDetail(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "p1", m.engine.Hovered())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)
	assert.Equal(t, "p1", m.detail.id)
	assert.Equal(t, nodecloud.KindPrimary, m.detail.kind)

	view := m.View()
	assert.Contains(t, view, "the first project")
	assert.Contains(t, view, "Software")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.detail)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.engine.Hovered())
}

func TestModel_SecondaryDetail(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 4; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.Equal(t, "tag-B", m.engine.Hovered())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)
	assert.Equal(t, nodecloud.KindSecondary, m.detail.kind)
	view := m.View()
	assert.Contains(t, view, "Used by")
	assert.Contains(t, view, "• One")
	assert.Contains(t, view, "• Two")
}

func TestModel_MouseClickSelects(t *testing.T) {
	m := newModel(t)
	n, ok := m.frame.Node("p2")
	require.True(t, ok)
	col, row := CellAt(n.X, n.Y)
	want, ok := m.frame.Pick(PixelAt(col, row))
	require.True(t, ok)

	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.engine.Dragging())
	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease})
	assert.False(t, m.engine.Dragging())

	require.NotNil(t, m.detail)
	assert.Equal(t, want, m.detail.id)
}

func TestModel_MouseDragIsNotClick(t *testing.T) {
	m := newModel(t)
	start := m.engine.Rotation()
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionRelease})

	assert.Nil(t, m.detail)
	assert.InDelta(t, start.Yaw+10*CellWidth*nodecloud.DefaultOptions().DragSensitivity, m.engine.Target().Yaw, 1e-9)
}

func TestModel_MouseHover(t *testing.T) {
	m := newModel(t)
	n, _ := m.frame.Node("p1")
	col, row := CellAt(n.X, n.Y)
	want, _ := m.frame.Pick(PixelAt(col, row))

	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, want, m.engine.Hovered())
	assert.Contains(t, m.View(), "› ")

	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Empty(t, m.engine.Hovered())
}

func TestModel_DatasetMsg(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)

	m, _ = update(t, m, DatasetMsg{Entities: []nodecloud.Entity{{ID: "solo", Title: "Solo", Tags: []string{"Go"}}}})
	assert.Nil(t, m.detail, "detail of a removed node closes")
	assert.Equal(t, 2, m.engine.Graph().Len())

	m, _ = update(t, m, tickMsg(time.Now()))
	assert.True(t, strings.Contains(m.View(), "[Solo]"))
}
