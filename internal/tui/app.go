// internal/tui/app.go
//
// This is the main TUI for loom. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/loom/internal/assembler"
	"github.com/kingrea/loom/internal/config"
	"github.com/kingrea/loom/internal/rule"
	"github.com/kingrea/loom/internal/target"
	"github.com/kingrea/loom/plugins"
)

// appState represents which "screen" we're on
type appState int

const (
	stateTargets  appState = iota // Target picker
	stateDocument                 // Assembled document preview
)

// loadedMsg carries a freshly loaded rule snapshot plus the target list.
type loadedMsg struct {
	store   *rule.Store
	version uint64
	targets []target.File
	err     error
}

// assembledMsg carries the outcome of assembling one target.
type assembledMsg struct {
	targetName string
	rendered   string
	document   assembler.Document
	err        error
}

// targetItem implements list.Item for the target picker.
type targetItem struct {
	file target.File
}

func (i targetItem) Title() string { return i.file.Spec.Name }
func (i targetItem) Description() string {
	desc := i.file.Spec.Description
	if desc == "" {
		desc = fmt.Sprintf("%d declared rules", len(i.file.Spec.RuleIDs()))
	}
	return fmt.Sprintf("%s · %s", i.file.Spec.Loom.Type, desc)
}
func (i targetItem) FilterValue() string { return i.file.Spec.Name }

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	config  *config.Config
	catalog *rule.Catalog
	version uint64

	targets    []target.File
	targetMenu list.Model

	preview     string
	previewName string
	statusMsg   string
	err         error

	width  int
	height int
}

// NewApp creates a new App instance. Loading happens in Init so startup
// errors render inside the TUI instead of killing the program.
func NewApp(projectDir string) *App {
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "⬡ LOOM TARGETS"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	app := &App{
		state:      stateTargets,
		catalog:    rule.NewCatalog(nil),
		targetMenu: menu,
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		app.err = err
		return app
	}
	app.config = cfg
	return app
}

func (a *App) Init() tea.Cmd {
	if a.config == nil {
		return nil
	}
	return a.loadSnapshot()
}

// loadSnapshot re-reads rule packs and targets off the event loop and swaps
// the new store into the catalog when it arrives.
func (a *App) loadSnapshot() tea.Cmd {
	cfg := a.config
	return func() tea.Msg {
		store, err := plugins.BuildStore(cfg)
		if err != nil {
			return loadedMsg{err: err}
		}
		targets, err := target.LoadDir(cfg.TargetsDir())
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{store: store, targets: targets}
	}
}

// assembleSelected assembles the highlighted target against the pinned
// snapshot version so a reload mid-assembly cannot shear the view.
func (a *App) assembleSelected() tea.Cmd {
	item, ok := a.targetMenu.SelectedItem().(targetItem)
	if !ok {
		return nil
	}
	store, _ := a.catalog.Snapshot()
	if store == nil {
		return nil
	}
	file := item.file
	return func() tea.Msg {
		doc, err := assembler.Assemble(file.Spec.Name, file.Spec.RuleIDs(), store, assembler.Options{})
		if err != nil {
			return assembledMsg{targetName: file.Spec.Name, err: err}
		}
		rendered, err := assembler.RenderMarkdown(doc)
		if err != nil {
			return assembledMsg{targetName: file.Spec.Name, err: err}
		}
		return assembledMsg{targetName: file.Spec.Name, rendered: string(rendered), document: doc}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.targetMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-8))
		return a, nil

	case loadedMsg:
		if msg.err != nil {
			a.err = msg.err
			a.statusMsg = ""
			return a, nil
		}
		a.err = nil
		a.version = a.catalog.Swap(msg.store)
		a.targets = msg.targets
		items := make([]list.Item, len(msg.targets))
		for i, file := range msg.targets {
			items[i] = targetItem{file: file}
		}
		a.targetMenu.SetItems(items)
		a.statusMsg = fmt.Sprintf("Loaded %d rules, %d targets (snapshot v%d)", msg.store.Len(), len(msg.targets), a.version)
		return a, nil

	case assembledMsg:
		if msg.err != nil {
			a.err = fmt.Errorf("assemble %s: %w", msg.targetName, msg.err)
			a.statusMsg = ""
			return a, nil
		}
		a.err = nil
		a.state = stateDocument
		a.preview = msg.rendered
		a.previewName = msg.targetName
		a.statusMsg = fmt.Sprintf("%s: %d rules emitted", msg.targetName, len(msg.document.Rules))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateTargets {
				return a, tea.Quit
			}
			a.state = stateTargets
			return a, nil
		case "esc":
			if a.state == stateDocument {
				a.state = stateTargets
				return a, nil
			}
		case "r":
			a.statusMsg = "Reloading rule packs..."
			return a, a.loadSnapshot()
		case "enter":
			if a.state == stateTargets {
				return a, a.assembleSelected()
			}
		}
	}

	if a.state == stateTargets {
		var cmd tea.Cmd
		a.targetMenu, cmd = a.targetMenu.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		MarginBottom(1).
		Render("⬡ LOOM")

	var content string
	switch a.state {
	case stateTargets:
		content = a.targetMenu.View()
	case stateDocument:
		content = a.renderPreview(width)
	}

	var footer string
	if a.err != nil {
		footer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render(a.err.Error())
	} else if a.statusMsg != "" {
		footer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Render(a.statusMsg)
	}
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Render("enter: assemble · r: reload · esc: back · q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer, help)
}

func (a *App) renderPreview(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("DOCUMENT · %s", a.previewName))
	body := a.preview
	if a.height > 0 {
		lines := strings.Split(body, "\n")
		limit := max(5, a.height-10)
		if len(lines) > limit {
			lines = append(lines[:limit], fmt.Sprintf("... (%d more lines)", len(lines)-limit))
		}
		body = strings.Join(lines, "\n")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-4)).
		Render(fmt.Sprintf("%s\n\n%s", title, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
