// Package main implements the terminal client for taskwire. It signs
// in over REST, subscribes to the realtime stream and renders the
// reconciled task list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskwire/taskwire/internal/client"
	"github.com/taskwire/taskwire/internal/realtime"
	"github.com/taskwire/taskwire/internal/reconcile"
	"github.com/taskwire/taskwire/internal/ui/tasklist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		serverURL   = flag.String("server", envOr("TASKWIRE_SERVER", "http://localhost:8080"), "server base URL")
		email       = flag.String("email", os.Getenv("TASKWIRE_EMAIL"), "account email")
		password    = flag.String("password", os.Getenv("TASKWIRE_PASSWORD"), "account password")
		register    = flag.Bool("register", false, "create a new account instead of logging in")
		displayName = flag.String("name", "", "display name for a new account")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required (flags or TASKWIRE_EMAIL/TASKWIRE_PASSWORD)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := client.New(*serverURL)
	var err error
	if *register {
		err = c.Register(ctx, *email, *displayName, *password)
	} else {
		err = c.Login(ctx, *email, *password)
	}
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	subscription, err := realtime.Dial(ctx, *serverURL, c.Token())
	if err != nil {
		return fmt.Errorf("realtime subscription failed: %w", err)
	}
	defer func() { _ = subscription.Close() }()

	store := reconcile.NewStore(c.UserID())
	model := tasklist.New(store, c, subscription.Events(), 80, 24)

	program := tea.NewProgram(appModel{tasks: model}, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// appModel is the root bubbletea model. The task list is currently the
// only view.
type appModel struct {
	tasks tasklist.Model
}

func (m appModel) Init() tea.Cmd {
	return m.tasks.Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	return m.tasks.View()
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
