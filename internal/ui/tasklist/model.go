// Package tasklist implements the main task list view of the terminal
// client. The view renders the reconciled local task collection and
// applies pushed events as they arrive.
package tasklist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/realtime"
	"github.com/taskwire/taskwire/internal/reconcile"
	"github.com/taskwire/taskwire/internal/ui/theme"
)

// TaskAPI is the slice of the server client the list view needs.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, title string) (*domain.Task, error)
	SetTaskStatus(ctx context.Context, taskID uuid.UUID, status domain.Status) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
}

// TasksFetchedMsg is sent when the task list has been fetched over REST.
type TasksFetchedMsg struct {
	Tasks []domain.Task
	Err   error
}

// EventMsg carries one pushed realtime event.
type EventMsg struct {
	Envelope realtime.Envelope
}

// StreamClosedMsg is sent when the realtime stream ends.
type StreamClosedMsg struct{}

// MutationDoneMsg reports the outcome of a task mutation request. The
// resulting state change arrives separately as a pushed event.
type MutationDoneMsg struct {
	Err error
}

// scopeOrder is the cycle walked by the scope key.
var scopeOrder = []reconcile.Scope{
	reconcile.ScopeAll,
	reconcile.ScopeAssignedToMe,
	reconcile.ScopeCreatedByMe,
	reconcile.ScopeOverdue,
}

// statusOrder is the cycle walked by the status filter key. A nil entry
// means no status filter.
var statusOrder = []*domain.Status{
	nil,
	statusPtr(domain.StatusToDo),
	statusPtr(domain.StatusInProgress),
	statusPtr(domain.StatusReview),
	statusPtr(domain.StatusCompleted),
}

// priorityOrder is the cycle walked by the priority filter key.
var priorityOrder = []*domain.Priority{
	nil,
	priorityPtr(domain.PriorityUrgent),
	priorityPtr(domain.PriorityHigh),
	priorityPtr(domain.PriorityMedium),
	priorityPtr(domain.PriorityLow),
}

func statusPtr(s domain.Status) *domain.Status       { return &s }
func priorityPtr(p domain.Priority) *domain.Priority { return &p }

// keyMap defines the key bindings of the list view.
type keyMap struct {
	Quit          key.Binding
	Search        key.Binding
	CycleScope    key.Binding
	CycleStatus   key.Binding
	CyclePriority key.Binding
	CycleSort     key.Binding
	AdvanceStatus key.Binding
	Delete        key.Binding
	Dismiss       key.Binding
	Refresh       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c")),
		Search:        key.NewBinding(key.WithKeys("/")),
		CycleScope:    key.NewBinding(key.WithKeys("f")),
		CycleStatus:   key.NewBinding(key.WithKeys("t")),
		CyclePriority: key.NewBinding(key.WithKeys("p")),
		CycleSort:     key.NewBinding(key.WithKeys("s")),
		AdvanceStatus: key.NewBinding(key.WithKeys("enter", " ")),
		Delete:        key.NewBinding(key.WithKeys("d")),
		Dismiss:       key.NewBinding(key.WithKeys("x")),
		Refresh:       key.NewBinding(key.WithKeys("r")),
	}
}

// Model is the task list view.
type Model struct {
	list  list.Model
	store *reconcile.Store
	api   TaskAPI
	keys  keyMap

	// events is the inbound realtime stream. A nil value disables the
	// event wait command (used by tests).
	events <-chan realtime.Envelope

	filter        reconcile.Filter
	scopeIndex    int
	statusIndex   int
	priorityIndex int

	searchMode  bool
	searchInput textinput.Model

	connected bool
	lastError string
	width     int
	height    int
}

// New creates the task list view backed by the given reconciled store,
// API client and pushed event stream.
func New(store *reconcile.Store, api TaskAPI, events <-chan realtime.Envelope, width, height int) Model {
	l := list.New([]list.Item{}, NewItemDelegate(), width, height-4)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		store:       store,
		api:         api,
		keys:        defaultKeyMap(),
		events:      events,
		searchInput: si,
		connected:   events != nil,
		width:       width,
		height:      height,
	}
	m.refreshItems()
	return m
}

// Init fetches the initial task list and starts consuming pushed events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTasks(), m.waitForEvent())
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksFetchedMsg:
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
			return m, nil
		}
		m.lastError = ""
		m.store.Seed(msg.Tasks)
		cmd := m.refreshItems()
		return m, cmd

	case EventMsg:
		if err := m.store.Apply(msg.Envelope); err != nil {
			m.lastError = err.Error()
		}
		cmd := m.refreshItems()
		return m, tea.Batch(cmd, m.waitForEvent())

	case StreamClosedMsg:
		m.connected = false
		return m, nil

	case MutationDoneMsg:
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		} else {
			m.lastError = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Search = m.searchInput.Value()
		return m, m.refreshItems()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Search = ""
		return m, m.refreshItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleScope):
		m.scopeIndex = (m.scopeIndex + 1) % len(scopeOrder)
		m.filter.Scope = scopeOrder[m.scopeIndex]
		return m, m.refreshItems()

	case key.Matches(msg, m.keys.CycleStatus):
		m.statusIndex = (m.statusIndex + 1) % len(statusOrder)
		m.filter.Status = statusOrder[m.statusIndex]
		return m, m.refreshItems()

	case key.Matches(msg, m.keys.CyclePriority):
		m.priorityIndex = (m.priorityIndex + 1) % len(priorityOrder)
		m.filter.Priority = priorityOrder[m.priorityIndex]
		return m, m.refreshItems()

	case key.Matches(msg, m.keys.CycleSort):
		switch m.filter.Sort {
		case reconcile.SortNone:
			m.filter.Sort = reconcile.SortDueAsc
		case reconcile.SortDueAsc:
			m.filter.Sort = reconcile.SortDueDesc
		default:
			m.filter.Sort = reconcile.SortNone
		}
		return m, m.refreshItems()

	case key.Matches(msg, m.keys.AdvanceStatus):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, m.advanceStatus(item.Task)

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, m.deleteTask(item.Task.ID)

	case key.Matches(msg, m.keys.Dismiss):
		notifications := m.store.Notifications()
		if len(notifications) > 0 {
			m.store.DismissNotification(notifications[0].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchTasks()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list view.
func (m Model) View() string {
	sections := []string{}

	if banner := m.notificationBanner(); banner != "" {
		sections = append(sections, banner)
	}

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		sections = append(sections, searchBar)
	}

	sections = append(sections, m.list.View(), m.statusBar())

	if m.lastError != "" {
		sections = append(sections, theme.ErrorStyle.Render(m.lastError))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// notificationBanner renders the most recent assignment notification,
// with a count when more are queued behind it.
func (m Model) notificationBanner() string {
	notifications := m.store.Notifications()
	if len(notifications) == 0 {
		return ""
	}

	latest := notifications[0]
	text := fmt.Sprintf("Assigned to you: %s", latest.Title)
	if len(notifications) > 1 {
		text = fmt.Sprintf("%s (+%d more)", text, len(notifications)-1)
	}
	text += "  [x dismiss]"
	return theme.NotificationStyle.Render(text)
}

// statusBar summarizes the active filters and connection state.
func (m Model) statusBar() string {
	parts := []string{scopeLabel(m.filter.Scope)}

	if m.filter.Status != nil {
		parts = append(parts, "status:"+string(*m.filter.Status))
	}
	if m.filter.Priority != nil {
		parts = append(parts, "priority:"+string(*m.filter.Priority))
	}
	if m.filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search:%q", m.filter.Search))
	}
	if m.filter.Sort != reconcile.SortNone {
		parts = append(parts, "sort:"+sortLabel(m.filter.Sort))
	}
	if !m.connected {
		parts = append(parts, "OFFLINE")
	}

	bar := theme.StatusBarStyle.Render(strings.Join(parts, "  "))
	help := theme.HelpStyle.Render("f scope  t status  p priority  s sort  / search  enter advance  d delete  r refresh  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, bar, help)
}

func scopeLabel(s reconcile.Scope) string {
	switch s {
	case reconcile.ScopeAssignedToMe:
		return "assigned to me"
	case reconcile.ScopeCreatedByMe:
		return "created by me"
	case reconcile.ScopeOverdue:
		return "overdue"
	default:
		return "all tasks"
	}
}

func sortLabel(s reconcile.SortOrder) string {
	if s == reconcile.SortDueDesc {
		return "due desc"
	}
	return "due asc"
}

// refreshItems recomputes the visible items from the reconciled store
// through the active filter.
func (m *Model) refreshItems() tea.Cmd {
	tasks := m.store.View(m.filter)
	items := make([]list.Item, len(tasks))
	for i, task := range tasks {
		items[i] = TaskItem{Task: task}
	}
	return m.list.SetItems(items)
}

// Filter returns the active filter. Intended for tests.
func (m Model) Filter() reconcile.Filter { return m.filter }

// Items returns the currently visible list items.
func (m Model) Items() []list.Item { return m.list.Items() }

// fetchTasks returns a command that loads the task list over REST.
func (m Model) fetchTasks() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tasks, err := api.ListTasks(ctx)
		return TasksFetchedMsg{Tasks: tasks, Err: err}
	}
}

// waitForEvent returns a command that blocks for the next pushed event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		envelope, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg{Envelope: envelope}
	}
}

// advanceStatus moves a task to the next workflow status on the server.
// The local collection is updated by the resulting pushed event, not here.
func (m Model) advanceStatus(task domain.Task) tea.Cmd {
	api := m.api
	next := nextStatus(task.Status)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := api.SetTaskStatus(ctx, task.ID, next)
		return MutationDoneMsg{Err: err}
	}
}

// deleteTask removes a task on the server.
func (m Model) deleteTask(taskID uuid.UUID) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := api.DeleteTask(ctx, taskID)
		return MutationDoneMsg{Err: err}
	}
}

// nextStatus returns the workflow status following s. Completed wraps
// back to ToDo so the key also reopens finished tasks.
func nextStatus(s domain.Status) domain.Status {
	switch s {
	case domain.StatusToDo:
		return domain.StatusInProgress
	case domain.StatusInProgress:
		return domain.StatusReview
	case domain.StatusReview:
		return domain.StatusCompleted
	default:
		return domain.StatusToDo
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-4)
	m.searchInput.Width = width - 4
}
