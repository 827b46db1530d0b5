// Package tui provides the interactive mode of the migrate command.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marshallshelly/storefront/pkg/migration"
)

// Direction selects whether the UI applies or rolls back migrations.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type phase int

const (
	phaseLoading phase = iota
	phaseConfirm
	phaseRunning
	phaseDone
	phaseError
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

type model struct {
	direction Direction
	dbURL     string
	phase     phase
	spinner   spinner.Model

	pool     *pgxpool.Pool
	executor *migration.Executor
	queue    []migration.Migration
	logs     []string
	err      error
}

type loadedMsg struct {
	pool     *pgxpool.Pool
	executor *migration.Executor
	queue    []migration.Migration
}

type stepDoneMsg struct {
	mig migration.Migration
	err error
}

type errMsg struct{ err error }

// RunMigrate runs the interactive migration UI and blocks until it exits.
func RunMigrate(direction Direction, dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("--db flag or DATABASE_URL is required")
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{direction: direction, dbURL: dbURL, spinner: sp}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok {
		if fm.pool != nil {
			fm.pool.Close()
		}
		return fm.err
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCmd(m.direction, m.dbURL))
}

// loadCmd connects and computes the work queue for the chosen direction.
func loadCmd(direction Direction, dbURL string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		migrations, err := migration.Embedded()
		if err != nil {
			return errMsg{err}
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return errMsg{fmt.Errorf("failed to connect to database: %w", err)}
		}
		executor := migration.NewExecutor(pool)
		if err := executor.Initialize(ctx); err != nil {
			pool.Close()
			return errMsg{err}
		}

		var queue []migration.Migration
		switch direction {
		case DirectionUp:
			queue, err = executor.Pending(ctx, migrations)
			if err != nil {
				pool.Close()
				return errMsg{err}
			}
		case DirectionDown:
			applied, err := executor.GetAppliedMigrations(ctx)
			if err != nil {
				pool.Close()
				return errMsg{err}
			}
			byVersion := make(map[string]migration.Migration, len(migrations))
			for _, mig := range migrations {
				byVersion[mig.Version] = mig
			}
			// Only the most recent migration is rolled back interactively.
			if len(applied) > 0 {
				last := applied[len(applied)-1]
				if mig, ok := byVersion[last.Version]; ok {
					queue = []migration.Migration{mig}
				}
			}
		}

		return loadedMsg{pool: pool, executor: executor, queue: queue}
	}
}

func stepCmd(executor *migration.Executor, direction Direction, mig migration.Migration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if direction == DirectionUp {
			err = executor.Apply(ctx, mig, false)
		} else {
			err = executor.Rollback(ctx, mig, false)
		}
		return stepDoneMsg{mig: mig, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "n":
			if m.phase != phaseRunning {
				return m, tea.Quit
			}
		case "y", "enter":
			if m.phase == phaseConfirm && len(m.queue) > 0 {
				m.phase = phaseRunning
				next := m.queue[0]
				m.queue = m.queue[1:]
				return m, tea.Batch(m.spinner.Tick, stepCmd(m.executor, m.direction, next))
			}
			if m.phase == phaseDone || m.phase == phaseError {
				return m, tea.Quit
			}
		}

	case loadedMsg:
		m.pool = msg.pool
		m.executor = msg.executor
		m.queue = msg.queue
		if len(m.queue) == 0 {
			m.phase = phaseDone
			m.logs = append(m.logs, "Nothing to do")
		} else {
			m.phase = phaseConfirm
		}
		return m, nil

	case stepDoneMsg:
		if msg.err != nil {
			m.phase = phaseError
			m.err = msg.err
			m.logs = append(m.logs, fmt.Sprintf("%s %s_%s: %v",
				dangerStyle.Render("✗"), msg.mig.Version, msg.mig.Name, msg.err))
			return m, nil
		}
		verb := "Applied"
		if m.direction == DirectionDown {
			verb = "Rolled back"
		}
		m.logs = append(m.logs, fmt.Sprintf("%s %s %s_%s",
			successStyle.Render("✓"), verb, msg.mig.Version, msg.mig.Name))
		if len(m.queue) > 0 {
			next := m.queue[0]
			m.queue = m.queue[1:]
			return m, stepCmd(m.executor, m.direction, next)
		}
		m.phase = phaseDone
		return m, nil

	case errMsg:
		m.phase = phaseError
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	title := "Apply Migrations"
	if m.direction == DirectionDown {
		title = "Rollback Migrations"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch m.phase {
	case phaseLoading:
		b.WriteString(m.spinner.View() + " Loading migration state...")

	case phaseConfirm:
		for _, mig := range m.queue {
			b.WriteString(fmt.Sprintf("  • %s_%s\n", mig.Version, mig.Name))
		}
		b.WriteString("\n")
		prompt := fmt.Sprintf("Apply %d migration(s)?", len(m.queue))
		if m.direction == DirectionDown {
			prompt = dangerStyle.Render("Roll back the migration above?")
		}
		b.WriteString(prompt)
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("y/enter confirm • n/esc cancel"))

	case phaseRunning:
		for _, line := range m.logs {
			b.WriteString(line + "\n")
		}
		b.WriteString(m.spinner.View() + " Running...")

	case phaseDone:
		for _, line := range m.logs {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("enter/q to exit"))

	case phaseError:
		for _, line := range m.logs {
			b.WriteString(line + "\n")
		}
		if m.err != nil {
			b.WriteString(dangerStyle.Render("Error: ") + m.err.Error() + "\n")
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("enter/q to exit"))
	}

	return boxStyle.Render(b.String())
}
