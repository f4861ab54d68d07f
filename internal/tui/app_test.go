package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/loom/internal/config"
)

const testRulePack = `rules:
  - id: default_period
    version: "1.0"
    description: Use the current fiscal quarter when no period is given.
  - id: aligned_period_comparison
    version: "1.0"
    depends_on: [default_period]
    description: Compare periods of equal length.
`

const testTarget = `loom:
  type: agent
  version: 1
name: revenue-analyst
description: Quarterly revenue agent
rules:
  system:
    - aligned_period_comparison
`

func seedProject(t *testing.T) string {
	t.Helper()
	projectDir := t.TempDir()
	if err := config.InitLoomDir(projectDir); err != nil {
		t.Fatalf("init loom dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.RulesDir(), "core.yaml"), []byte(testRulePack), 0o644); err != nil {
		t.Fatalf("write rule pack: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.TargetsDir(), "revenue.yaml"), []byte(testTarget), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}
	return projectDir
}

// pump executes a command chain and feeds every message back into Update.
func pump(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return app
		}
		model, next := app.Update(msg)
		updated, ok := model.(*App)
		if !ok {
			t.Fatalf("update returned %T, want *App", model)
		}
		app = updated
		cmd = next
	}
	return app
}

func TestInitLoadsRulesAndTargets(t *testing.T) {
	app := NewApp(seedProject(t))
	app = pump(t, app, app.Init())

	if app.err != nil {
		t.Fatalf("load failed: %v", app.err)
	}
	if len(app.targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(app.targets))
	}
	store, version := app.catalog.Snapshot()
	if store == nil || store.Len() != 2 {
		t.Fatalf("expected snapshot with 2 rules")
	}
	if version == 0 {
		t.Fatalf("expected swapped snapshot version, got 0")
	}
	if !strings.Contains(app.statusMsg, "2 rules") {
		t.Fatalf("status should report rule count, got %q", app.statusMsg)
	}
}

func TestEnterAssemblesSelectedTarget(t *testing.T) {
	app := NewApp(seedProject(t))
	app = pump(t, app, app.Init())

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, model.(*App), cmd)

	if app.err != nil {
		t.Fatalf("assemble failed: %v", app.err)
	}
	if app.state != stateDocument {
		t.Fatalf("expected document screen after assemble")
	}
	if app.previewName != "revenue-analyst" {
		t.Fatalf("unexpected preview target %q", app.previewName)
	}
	if !strings.Contains(app.preview, "## default_period") {
		t.Fatalf("preview should include injected dependency section:\n%s", app.preview)
	}
	view := app.View()
	if !strings.Contains(view, "DOCUMENT · revenue-analyst") {
		t.Fatalf("view should show preview title")
	}
}

func TestEscReturnsToTargetList(t *testing.T) {
	app := NewApp(seedProject(t))
	app = pump(t, app, app.Init())
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = pump(t, model.(*App), cmd)
	if app.state != stateDocument {
		t.Fatalf("expected document screen")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(*App)
	if app.state != stateTargets {
		t.Fatalf("esc should return to target list")
	}
}

func TestReloadPicksUpNewRules(t *testing.T) {
	projectDir := seedProject(t)
	app := NewApp(projectDir)
	app = pump(t, app, app.Init())
	_, firstVersion := app.catalog.Snapshot()

	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	extra := "id: tone_neutral\ndescription: Keep a neutral tone.\n"
	if err := os.WriteFile(filepath.Join(cfg.RulesDir(), "tone.yaml"), []byte(extra), 0o644); err != nil {
		t.Fatalf("write extra rule: %v", err)
	}

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	app = pump(t, model.(*App), cmd)

	store, version := app.catalog.Snapshot()
	if store == nil || store.Len() != 3 {
		t.Fatalf("expected reloaded snapshot with 3 rules")
	}
	if version <= firstVersion {
		t.Fatalf("reload should advance snapshot version: %d -> %d", firstVersion, version)
	}
}

func TestBrokenRulePackSurfacesInFooter(t *testing.T) {
	projectDir := seedProject(t)
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	dup := "id: default_period\ndescription: Conflicting copy.\n"
	if err := os.WriteFile(filepath.Join(cfg.RulesDir(), "dup.yaml"), []byte(dup), 0o644); err != nil {
		t.Fatalf("write duplicate rule: %v", err)
	}

	app := NewApp(projectDir)
	app = pump(t, app, app.Init())
	if app.err == nil {
		t.Fatalf("expected duplicate id load error")
	}
	if !strings.Contains(app.View(), "default_period") {
		t.Fatalf("footer should name the duplicated rule id")
	}
}
