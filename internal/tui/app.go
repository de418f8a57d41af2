package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rasheuristics/CalAI-sub003/internal/carousel"
	"github.com/rasheuristics/CalAI-sub003/internal/drag"
	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/schedule"
	"github.com/rasheuristics/CalAI-sub003/internal/timeline"
	"github.com/rs/zerolog"
)

type armedMsg struct{}

type commitMsg struct {
	result schedule.CommitResult
}

type rebuiltMsg struct {
	err error
}

// Model is the bubbletea model for the day/week view.
type Model struct {
	ctx     context.Context
	service *schedule.Service
	drags   *drag.Engine
	car     *carousel.Carousel // non-nil in week mode
	theme   Theme
	styles  styleSet
	logger  zerolog.Logger

	width  int
	height int

	selected int
	scroll   int

	// Keyboard move emulation: one arrow press equals one snap step of
	// pointer travel. moveDone unblocks the arm waiter when the move
	// ends before the arm timer fires.
	moveSession *drag.Session
	moveEventID string
	moveDone    chan struct{}
	moveDX      float64
	moveDY      float64

	status string
	err    error
}

// NewModel creates the day-view model. car may be nil for a single-day
// view; when present, horizontal moves and day swipes are enabled.
func NewModel(ctx context.Context, service *schedule.Service, drags *drag.Engine, car *carousel.Carousel, theme Theme) Model {
	return Model{
		ctx:     ctx,
		service: service,
		drags:   drags,
		car:     car,
		theme:   theme,
		styles:  newStyleSet(theme),
		logger:  logging.Component("tui"),
	}
}

// Run starts the TUI program.
func Run(ctx context.Context, service *schedule.Service, drags *drag.Engine, car *carousel.Carousel, theme Theme) error {
	p := tea.NewProgram(NewModel(ctx, service, drags, car, theme), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.car != nil {
			m.car.SetWidth(float64(msg.Width))
		}
		return m, nil

	case armedMsg:
		m.status = "move: arrows adjust, enter drops, esc reverts"
		return m, nil

	case commitMsg:
		if msg.result.Err != nil {
			m.status = fmt.Sprintf("move failed: %v", msg.result.Err)
		} else {
			m.status = fmt.Sprintf("moved to %s", msg.result.Intent.NewStart.Format("Mon 15:04"))
		}
		return m, m.rebuildCmd()

	case rebuiltMsg:
		m.err = msg.err
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.moveSession != nil {
		return m.handleMoveKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		m.selected++
		m.clampSelection()
		return m, nil

	case "k", "up":
		m.selected--
		m.clampSelection()
		return m, nil

	case "enter", " ":
		return m.toggleSelectedGap()

	case "m":
		return m.beginMove()

	case "h", "left":
		return m.advanceDay(-1)

	case "l", "right":
		return m.advanceDay(1)

	case "H":
		return m.swipe(1)

	case "L":
		return m.swipe(-1)

	case "t":
		return m.goToDay(time.Now())
	}
	return m, nil
}

func (m Model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cfg := m.dragStep()

	switch msg.String() {
	case "up":
		m.moveDY -= cfg.vertical
	case "down":
		m.moveDY += cfg.vertical
	case "left":
		if m.car != nil {
			m.moveDX -= cfg.horizontal
		}
	case "right":
		if m.car != nil {
			m.moveDX += cfg.horizontal
		}
	case "enter":
		return m.releaseMove()
	case "esc":
		m.moveSession.Cancel()
		m.endMove()
		m.status = "move cancelled"
		return m, nil
	default:
		return m, nil
	}

	m.moveSession.Move(m.moveDX, m.moveDY)
	return m, nil
}

func (m Model) toggleSelectedGap() (tea.Model, tea.Cmd) {
	layout := m.activeLayout()
	if m.selected < 0 || m.selected >= len(layout.Segments) {
		return m, nil
	}
	seg := layout.Segments[m.selected]
	if !seg.IsGap() {
		return m, nil
	}
	if err := m.service.ToggleGap(m.ctx, seg.Start); err != nil {
		m.err = err
		return m, nil
	}
	return m, m.rebuildCmd()
}

func (m Model) beginMove() (tea.Model, tea.Cmd) {
	layout := m.activeLayout()
	if m.selected < 0 || m.selected >= len(layout.Segments) {
		return m, nil
	}
	seg := layout.Segments[m.selected]
	if seg.Kind != timeline.SegmentEvent {
		return m, nil
	}

	session, err := m.drags.Begin(seg.Event.CalendarEvent)
	if err != nil {
		m.status = fmt.Sprintf("cannot move: %v", err)
		return m, nil
	}

	armed := make(chan struct{})
	done := make(chan struct{})
	session.OnArmed(func() { close(armed) })
	session.Press()

	m.moveSession = session
	m.moveEventID = seg.Event.ID
	m.moveDone = done
	m.moveDX, m.moveDY = 0, 0
	m.status = "hold..."

	return m, func() tea.Msg {
		select {
		case <-armed:
			return armedMsg{}
		case <-done:
			// Move ended before the arm timer fired.
			return nil
		}
	}
}

// endMove clears the move state and unblocks the arm waiter.
func (m *Model) endMove() {
	m.moveSession = nil
	m.moveEventID = ""
	if m.moveDone != nil {
		close(m.moveDone)
		m.moveDone = nil
	}
}

func (m Model) releaseMove() (tea.Model, tea.Cmd) {
	session := m.moveSession
	m.endMove()

	res := session.Release()
	if !res.Committed {
		m.status = "no change"
		return m, nil
	}

	ch := m.service.CommitReposition(m.ctx, *res.Intent)
	m.status = "committing..."
	return m, func() tea.Msg {
		return commitMsg{result: <-ch}
	}
}

func (m Model) advanceDay(delta int) (tea.Model, tea.Cmd) {
	if m.car != nil {
		if err := m.car.AdvanceDay(delta); err != nil {
			m.err = err
			return m, nil
		}
	}
	if err := m.service.OnDayChanged(m.ctx, m.service.Day().AddDate(0, 0, delta)); err != nil {
		m.err = err
	}
	m.clampSelection()
	return m, nil
}

// swipe condenses the gesture path for keyboard use: engage, drag past
// the threshold, release, then finish the deferred commit.
func (m Model) swipe(direction int) (tea.Model, tea.Cmd) {
	if m.car == nil {
		return m, nil
	}
	travel := float64(direction) * float64(m.width)

	if !m.car.BeginSwipe(travel/2, 0) {
		return m, nil
	}
	m.car.UpdateSwipe(travel)
	outcome := m.car.ReleaseSwipe()
	if !outcome.Commit {
		m.car.FinishRevert()
		return m, nil
	}
	if err := m.car.FinishCommit(); err != nil {
		m.err = err
		return m, nil
	}
	if err := m.service.OnDayChanged(m.ctx, m.car.Day()); err != nil {
		m.err = err
	}
	m.clampSelection()
	return m, nil
}

func (m Model) goToDay(day time.Time) (tea.Model, tea.Cmd) {
	if m.car != nil {
		delta := int(timeline.StartOfDay(day, m.serviceLoc()).Sub(m.car.Day()).Hours() / 24)
		if delta != 0 {
			if err := m.car.AdvanceDay(delta); err != nil {
				m.err = err
				return m, nil
			}
		}
	}
	if err := m.service.OnDayChanged(m.ctx, day); err != nil {
		m.err = err
	}
	m.clampSelection()
	return m, nil
}

func (m Model) rebuildCmd() tea.Cmd {
	car := m.car
	return func() tea.Msg {
		if car != nil {
			if err := car.Rebuild(); err != nil {
				return rebuiltMsg{err: err}
			}
		}
		return rebuiltMsg{}
	}
}

func (m *Model) clampSelection() {
	n := len(m.activeLayout().Segments)
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) activeLayout() timeline.DayLayout {
	return m.service.Layout()
}

func (m Model) serviceLoc() *time.Location {
	return m.service.Builder().Location()
}

type moveStep struct {
	vertical   float64
	horizontal float64
}

// dragStep converts one arrow press into pointer travel equal to one snap
// unit, so keyboard moves land exactly on the grid.
func (m Model) dragStep() moveStep {
	cfg := m.drags.Config()
	return moveStep{
		vertical:   float64(cfg.SnapMinutes) * cfg.PxPerMinute,
		horizontal: cfg.DayColumnWidth,
	}
}
