package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/ui/theme"
)

// TaskItem wraps a domain.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task domain.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		string(i.Task.Status),
		string(i.Task.Priority),
		relativeTime(i.Task.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task lines.
type ItemDelegate struct {
	// now is injectable so overdue rendering is testable.
	now func() time.Time
}

// NewItemDelegate creates a delegate using the wall clock.
func NewItemDelegate() ItemDelegate {
	return ItemDelegate{now: time.Now}
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	taskItem, ok := item.(TaskItem)
	if !ok {
		return
	}

	task := taskItem.Task
	isSelected := index == m.Index()

	var prefix string
	if task.Status == domain.StatusCompleted {
		prefix = "✓"
	} else {
		prefix = "○"
	}

	statusBadge := theme.StatusStyle(task.Status).Render(string(task.Status))
	priBadge := theme.PriorityStyle(task.Priority).Render(priorityLabel(task.Priority))

	dueDateStr := ""
	if task.DueDate != nil {
		dueDateStr = theme.DueDateStyle.Render(" " + task.DueDate.Format("Jan 02"))
	}

	overdueStr := ""
	if task.IsOverdue(d.now()) {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s",
		prefix, statusBadge, priBadge, task.Title, dueDateStr, overdueStr,
	)

	if task.Status == domain.StatusCompleted {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return "P1"
	case domain.PriorityHigh:
		return "P2"
	case domain.PriorityMedium:
		return "P3"
	case domain.PriorityLow:
		return "P4"
	default:
		return "P?"
	}
}
