// Package tui is the operator's control surface: a list of lower thirds with
// a show/hide toggle per row that follows the shared active state live.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/store"
)

var (
	accent    = lipgloss.Color("#29ABE2")
	liveColor = lipgloss.Color("#FF5F5F")
	muted     = lipgloss.Color("243")

	titleStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	liveStyle   = lipgloss.NewStyle().Foreground(liveColor).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	statusStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(liveColor).Padding(0, 1)
)

type keyMap struct {
	Toggle key.Binding
	Hide   key.Binding
	Theme  key.Binding
	Up     key.Binding
	Down   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "show/hide")),
	Hide:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide")),
	Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next theme")),
	Up:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
	Down:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// overlayItem is one row; live is captured when the list is rebuilt.
type overlayItem struct {
	o    *overlay.Overlay
	live bool
}

func (i overlayItem) Title() string {
	if i.live {
		return liveStyle.Render("● HIDE ") + i.o.Title
	}
	return mutedStyle.Render("○ SHOW ") + i.o.Title
}

func (i overlayItem) Description() string {
	return fmt.Sprintf("%s · %s", i.o.Kind, i.o.Subtitle)
}

func (i overlayItem) FilterValue() string { return i.o.Title }

// messages
type (
	overlaysLoadedMsg struct{ overlays []*overlay.Overlay }
	themeLoadedMsg    struct{ theme *overlay.Theme }
	observedMsg       struct{ obs activestate.Observation }
	trackingEndedMsg  struct{}
	catalogChangedMsg struct{}
	statusMsg         struct{ text string }
	errMsg            struct{ err error }
)

// Model is the bubbletea model for the control surface.
type Model struct {
	svc  *app.Service
	ctrl *control.Controller
	ctx  context.Context

	list     list.Model
	overlays []*overlay.Overlay
	theme    *overlay.Theme
	onAir    *overlay.Pair

	observations <-chan activestate.Observation
	events       <-chan store.Event

	status string
	err    error
	width  int
	height int
}

// New builds the model. observations and events may be nil, in which case
// the list only refreshes on explicit reloads.
func New(ctx context.Context, svc *app.Service, ctrl *control.Controller, observations <-chan activestate.Observation, events <-chan store.Event) Model {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(accent).BorderForeground(accent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.BorderForeground(accent)

	l := list.New([]list.Item{}, d, 60, 20)
	l.Title = "Lower Thirds"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Hide, keys.Theme}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Hide, keys.Theme, keys.Up, keys.Down, keys.Reload}
	}

	return Model{
		svc:          svc,
		ctrl:         ctrl,
		ctx:          ctx,
		list:         l,
		observations: observations,
		events:       events,
	}
}

// Init loads the catalog and starts listening.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadOverlays(), m.loadTheme(), m.waitObservation(), m.waitEvent())
}

func (m Model) loadOverlays() tea.Cmd {
	return func() tea.Msg {
		overlays, err := m.svc.Overlays(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return overlaysLoadedMsg{overlays}
	}
}

func (m Model) loadTheme() tea.Cmd {
	return func() tea.Msg {
		t, err := m.svc.ActiveTheme(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return themeLoadedMsg{t}
	}
}

func (m Model) waitObservation() tea.Cmd {
	if m.observations == nil {
		return nil
	}
	ch := m.observations
	return func() tea.Msg {
		obs, ok := <-ch
		if !ok {
			return trackingEndedMsg{}
		}
		return observedMsg{obs}
	}
}

func (m Model) waitEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return catalogChangedMsg{}
	}
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case overlaysLoadedMsg:
		m.overlays = msg.overlays
		m.rebuild()
		return m, nil

	case themeLoadedMsg:
		m.theme = msg.theme
		return m, nil

	case observedMsg:
		m.onAir = msg.obs.Pair
		m.rebuild()
		return m, m.waitObservation()

	case trackingEndedMsg:
		m.observations = nil
		m.status = "lost the active state subscription; press r to reload"
		return m, nil

	case catalogChangedMsg:
		return m, tea.Batch(m.loadOverlays(), m.loadTheme(), m.waitEvent())

	case statusMsg:
		m.status, m.err = msg.text, nil
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			return m, m.toggle()
		case key.Matches(msg, keys.Hide):
			return m, m.hide()
		case key.Matches(msg, keys.Theme):
			return m, m.nextTheme()
		case key.Matches(msg, keys.Up):
			return m, m.move(app.Up)
		case key.Matches(msg, keys.Down):
			return m, m.move(app.Down)
		case key.Matches(msg, keys.Reload):
			return m, tea.Batch(m.loadOverlays(), m.loadTheme(), m.refresh())
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// rebuild refreshes the rows so the show/hide affordance matches the store.
func (m *Model) rebuild() {
	items := make([]list.Item, 0, len(m.overlays))
	for _, o := range m.overlays {
		items = append(items, overlayItem{o: o, live: m.isActive(o.ID)})
	}
	m.list.SetItems(items)
}

func (m Model) isActive(id string) bool {
	if m.ctrl != nil {
		return m.ctrl.IsActive(id)
	}
	return m.onAir != nil && m.onAir.Overlay.ID == id
}

func (m Model) selected() *overlay.Overlay {
	item, ok := m.list.SelectedItem().(overlayItem)
	if !ok {
		return nil
	}
	return item.o
}

func (m Model) toggle() tea.Cmd {
	o := m.selected()
	if o == nil {
		return nil
	}
	if m.isActive(o.ID) {
		return m.hide()
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.Show(ctx, o); err != nil {
			return errMsg{describe(err)}
		}
		return statusMsg{fmt.Sprintf("showing %s", o.Title)}
	}
}

func (m Model) hide() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.Hide(ctx); err != nil {
			return errMsg{describe(err)}
		}
		return statusMsg{"hidden"}
	}
}

func (m Model) refresh() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		p, err := ctrl.Refresh(ctx)
		if err != nil {
			return errMsg{describe(err)}
		}
		return observedMsg{activestate.Observation{Pair: p}}
	}
}

// nextTheme selects the theme after the active one, wrapping around. The
// pair on air keeps the theme it was shown with.
func (m Model) nextTheme() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	current := ""
	if m.theme != nil {
		current = m.theme.ID
	}
	return func() tea.Msg {
		themes, err := svc.Themes(ctx)
		if err != nil {
			return errMsg{err}
		}
		if len(themes) == 0 {
			return errMsg{control.ErrNoActiveTheme}
		}
		next := themes[0]
		for i, t := range themes {
			if t.ID == current {
				next = themes[(i+1)%len(themes)]
				break
			}
		}
		if err := svc.SetActiveTheme(ctx, next.ID); err != nil {
			return errMsg{err}
		}
		return themeLoadedMsg{next}
	}
}

func (m Model) move(dir app.Direction) tea.Cmd {
	o := m.selected()
	if o == nil {
		return nil
	}
	svc, ctx := m.svc, m.ctx
	load := m.loadOverlays()
	return func() tea.Msg {
		if err := svc.MoveOverlay(ctx, o.ID, dir); err != nil {
			return errMsg{err}
		}
		return load()
	}
}

// describe turns controller errors into operator-facing notices.
func describe(err error) error {
	var te *control.TransportError
	switch {
	case errors.Is(err, control.ErrNoActiveTheme):
		return errors.New("no active theme: press t to pick one")
	case errors.As(err, &te):
		return fmt.Errorf("store unreachable (%s): %v", te.Op, te.Err)
	}
	return err
}

// View renders the list, the theme line and the status line.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")

	theme := "none"
	if m.theme != nil {
		theme = m.theme.Name
	}
	line := "theme: " + theme
	if m.onAir != nil {
		line += "  " + liveStyle.Render("ON AIR") + " " + m.onAir.Overlay.Title
	}
	b.WriteString(statusStyle.Render(line))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

// Run starts the program and blocks until the operator quits.
func Run(ctx context.Context, svc *app.Service, ctrl *control.Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obs, err := ctrl.Track(ctx)
	if err != nil {
		return err
	}
	// Without a catalog watch the list only refreshes on r.
	events, _ := svc.Watch(ctx)
	p := tea.NewProgram(New(ctx, svc, ctrl, obs, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
