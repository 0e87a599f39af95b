package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

const (
	detailWidth = 40
	footerRows  = 2
	// nudgePixels is how far an arrow key drags the cloud
	nudgePixels = 40
)

var (
	accentColor = lipgloss.Color(nodecloud.AccentColor)
	mutedColor  = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(nodecloud.PillTextColor)).
			Background(lipgloss.Color(nodecloud.PillFill)).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1).
			Width(detailWidth - 2)
)

// Config configures the terminal viewer
type Config struct {
	Title string
	FPS   int
}

// DatasetMsg replaces the entities shown by a running viewer
type DatasetMsg struct {
	Entities []nodecloud.Entity
}

type tickMsg time.Time

type selection struct {
	id   string
	kind nodecloud.Kind
}

// Model is the bubbletea model of the terminal viewer. The engine is shared
// by every copy of the model and only touched from Update.
type Model struct {
	engine   *nodecloud.Engine
	keys     KeyMap
	help     help.Model
	title    string
	interval time.Duration

	width  int
	height int

	frame    nodecloud.Frame
	hasFrame bool
	last     time.Time

	// pointer state of the current press
	pressed    bool
	moved      bool
	pressCol   int
	pressRow   int
	focusIndex int

	picked *selection
	detail *selection
}

// New creates a viewer around engine and takes over its selection handler
func New(engine *nodecloud.Engine, cfg Config) Model {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		engine:     engine,
		keys:       DefaultKeyMap,
		help:       help.New(),
		title:      cfg.Title,
		interval:   time.Second / time.Duration(fps),
		picked:     &selection{},
		focusIndex: -1,
	}
	picked := m.picked
	engine.SetSelectionHandler(func(id string, kind nodecloud.Kind) {
		*picked = selection{id: id, kind: kind}
	})
	return m
}

// Init starts the frame clock
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		dt := nodecloud.ReferenceFrame
		if !m.last.IsZero() {
			dt = now.Sub(m.last)
		}
		m.last = now
		if f, ok := m.engine.Advance(dt, m.viewport()); ok {
			m.frame = f
			m.hasFrame = true
		}
		return m, m.tick()

	case DatasetMsg:
		m.engine.SetEntities(msg.Entities)
		m.focusIndex = -1
		if m.detail != nil {
			if _, ok := m.engine.Graph().Node(m.detail.id); !ok {
				m.detail = nil
			}
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return *m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Labels):
		m.engine.SetShowLabels(!m.engine.Options().ShowLabels)
	case key.Matches(msg, m.keys.Left):
		m.nudge(-nudgePixels, 0)
	case key.Matches(msg, m.keys.Right):
		m.nudge(nudgePixels, 0)
	case key.Matches(msg, m.keys.Up):
		m.nudge(0, -nudgePixels)
	case key.Matches(msg, m.keys.Down):
		m.nudge(0, nudgePixels)
	case key.Matches(msg, m.keys.Next):
		m.focusNext()
	case key.Matches(msg, m.keys.Select):
		if id := m.engine.Hovered(); id != "" {
			m.click(id)
		}
	case key.Matches(msg, m.keys.Back):
		if m.detail != nil {
			m.detail = nil
		} else {
			m.engine.Hover("")
			m.focusIndex = -1
		}
	}
	return *m, nil
}

// nudge turns the cloud as if dragged by dx, dy pixels
func (m *Model) nudge(dx, dy float64) {
	m.engine.BeginDrag(0, 0)
	m.engine.ContinueDrag(dx, dy)
	m.engine.EndDrag()
}

// focusNext hovers the next node in graph order and turns it to the front
func (m *Model) focusNext() {
	nodes := m.engine.Graph().Nodes
	if len(nodes) == 0 {
		return
	}
	m.focusIndex = (m.focusIndex + 1) % len(nodes)
	id := nodes[m.focusIndex].ID
	m.engine.Hover(id)
	_ = m.engine.Focus(id)
}

func (m *Model) click(id string) {
	*m.picked = selection{}
	if !m.engine.Click(id) {
		return
	}
	sel := *m.picked
	m.detail = &sel
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	cols, rows := m.canvasSize()
	if msg.X >= cols || msg.Y >= rows {
		return
	}
	x, y := PixelAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.pressed, m.moved = true, false
		m.pressCol, m.pressRow = msg.X, msg.Y
		m.engine.BeginDrag(x, y)

	case tea.MouseActionMotion:
		if m.pressed {
			if msg.X != m.pressCol || msg.Y != m.pressRow {
				m.moved = true
			}
			m.engine.ContinueDrag(x, y)
			return
		}
		id, _ := m.pick(x, y)
		m.engine.Hover(id)

	case tea.MouseActionRelease:
		m.engine.EndDrag()
		wasClick := m.pressed && !m.moved
		m.pressed = false
		if !wasClick {
			return
		}
		if id, ok := m.pick(x, y); ok {
			m.click(id)
		}
	}
}

func (m *Model) pick(x, y float64) (string, bool) {
	if !m.hasFrame {
		return "", false
	}
	return m.frame.Pick(x, y)
}

// canvasSize is the grid left for the cloud after the footer and the
// detail panel
func (m Model) canvasSize() (cols, rows int) {
	cols, rows = m.width, m.height-footerRows
	if m.detail != nil {
		cols -= detailWidth
	}
	return max(cols, 0), max(rows, 0)
}

func (m Model) viewport() nodecloud.Viewport {
	return ViewportFor(m.canvasSize())
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	cols, rows := m.canvasSize()
	canvas := NewCanvas(cols, rows)
	if m.hasFrame {
		canvas.Draw(&m.frame)
	}
	body := canvas.Render()
	if m.detail != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderDetail())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(), m.help.View(m.keys))
}

func (m Model) renderStatus() string {
	st := m.engine.Graph().Stats()
	parts := []string{
		titleStyle.Render(m.title),
		mutedStyle.Render(fmt.Sprintf("%d projects · %d tags · %d links", st.Primaries, st.Secondaries, st.Links)),
	}
	if id := m.engine.Hovered(); id != "" {
		if n, ok := m.engine.Graph().Node(id); ok {
			parts = append(parts, "› "+n.Label)
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderDetail() string {
	g := m.engine.Graph()
	n, ok := g.Node(m.detail.id)
	if !ok {
		return panelStyle.Render(mutedStyle.Render("gone"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(n.Label))
	b.WriteString("\n")

	if m.detail.kind == nodecloud.KindSecondary {
		b.WriteString(mutedStyle.Render("Used by"))
		for _, e := range g.PrimariesWithTag(n.ID) {
			b.WriteString("\n• " + e.Title)
		}
		return panelStyle.Render(b.String())
	}

	e, _ := g.Entity(n.ID)
	if len(e.Categories) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(e.Categories, " · ")))
		b.WriteString("\n")
	}
	if e.Description != "" {
		b.WriteString("\n" + e.Description + "\n")
	}
	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, tagStyle.Render(t))
	}
	b.WriteString("\n" + strings.Join(tags, " "))
	return panelStyle.Render(b.String())
}
