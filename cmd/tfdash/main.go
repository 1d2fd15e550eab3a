// Package main is the entry point for the Token Flex terminal dashboard.
// It connects to a running tfd server and runs the Bubble Tea program.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tokenflex-dashboard/internal/app"
	"github.com/j-veylop/tokenflex-dashboard/internal/client"
	"github.com/j-veylop/tokenflex-dashboard/internal/config"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/tabs/chat"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/tabs/dashboard"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/tabs/history"
	"github.com/j-veylop/tokenflex-dashboard/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info("tfdash"))
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadDashboard()

	api := client.New(cfg.ServerURL, &http.Client{Timeout: cfg.HTTPTimeout})

	var notifier app.Notifier
	if cfg.DesktopNotify {
		notifier = app.DesktopNotifier()
	}

	model := app.NewModel(api, notifier)

	// Tabs share the root model's state and issue requests through its commands.
	state := model.GetState()
	commands := model.GetCommands()
	model.SetTabs([]app.Tab{
		dashboard.New(state, commands),
		history.New(state, commands),
		chat.New(state, commands),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`tfdash - Token Flex usage dashboard

Usage:
  tfdash [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Chat)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Select a contract
  Enter           Run the usage queries for the selected contract
  [ / ]           Pick the usecase shown in the line chart
  i               Type a chat message (Esc to stop)
  r               Refresh contracts
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DASHBOARD_SERVER_URL    tfd server address (default: http://localhost:8080)
  DASHBOARD_HTTP_TIMEOUT  Request timeout, covers a full batch (default: 5m)
  DASHBOARD_NOTIFY        Desktop notification when a batch completes (default: true)

Configuration:
  The dashboard looks for .env files in the following locations:
  - Current directory
  - ~/.config/tokenflex/.env
  - ~/.tokenflex/.env`)
}
