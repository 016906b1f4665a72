// Package tui provides the interactive search view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veldt-labs/quarry/internal/core/domain"
	"github.com/veldt-labs/quarry/internal/core/ports/driving"
)

// resultLimit is how many documents the view requests per search.
const resultLimit = 10

// resultsMsg carries a finished search back into the update loop.
type resultsMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

// App is the bubbletea model for the interactive search view.
type App struct {
	engine driving.Engine
	styles *Styles
	ctx    context.Context

	input     textinput.Model
	results   []domain.SearchResult
	selected  int
	query     string
	searching bool
	err       error

	width  int
	height int
}

// NewApp creates the search view over the given engine.
func NewApp(engine driving.Engine) (*App, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	input := textinput.New()
	input.Placeholder = "Type a query and press Enter"
	input.Focus()
	input.CharLimit = 256

	return &App{
		engine: engine,
		styles: DefaultStyles(),
		ctx:    context.Background(),
		input:  input,
		width:  80,
		height: 24,
	}, nil
}

// WithContext sets the context used for searches.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init starts the cursor blink.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key and search messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 4
		return a, nil

	case resultsMsg:
		a.searching = false
		a.query = msg.query
		a.results = msg.results
		a.selected = 0
		a.err = msg.err
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "enter":
			query := strings.TrimSpace(a.input.Value())
			if query == "" || a.searching {
				return a, nil
			}
			a.searching = true
			a.err = nil
			return a, a.search(query)
		case "up", "ctrl+k":
			if a.selected > 0 {
				a.selected--
			}
			return a, nil
		case "down", "ctrl+j":
			if a.selected < len(a.results)-1 {
				a.selected++
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// search runs the query off the update loop.
func (a *App) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.engine.Search(a.ctx, query, resultLimit)
		return resultsMsg{query: query, results: results, err: err}
	}
}

// View renders the search prompt, results and status line.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("quarry"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Prompt.Render("> "))
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	switch {
	case a.err != nil:
		b.WriteString(a.styles.Error.Render(fmt.Sprintf("error: %v", a.err)))
		b.WriteString("\n")
	case a.searching:
		b.WriteString(a.styles.Status.Render("searching..."))
		b.WriteString("\n")
	case a.query != "" && len(a.results) == 0:
		b.WriteString(a.styles.Status.Render("no results"))
		b.WriteString("\n")
	default:
		for i, r := range a.results {
			marker := "  "
			name := a.styles.Filename.Render(r.Filename)
			if i == a.selected {
				marker = a.styles.Selected.Render("> ")
				name = a.styles.Selected.Render(r.Filename)
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", marker, name,
				a.styles.Score.Render(fmt.Sprintf("(%.3f)", r.Score))))
			if i == a.selected && r.Snippet != "" {
				b.WriteString(a.styles.Snippet.Render(r.Snippet))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Status.Render("enter search · ↑/↓ select · esc quit"))
	b.WriteString("\n")

	return b.String()
}
