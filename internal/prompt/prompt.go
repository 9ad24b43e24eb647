// Package prompt asks for run settings that were not given on the command
// line or in the config.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

var (
	// ErrNotInteractive is returned when input is needed but stdin or stdout
	// is not a terminal.
	ErrNotInteractive = errors.New("not running in a terminal")
	// ErrAborted is returned when the user cancels a prompt.
	ErrAborted = errors.New("prompt aborted")
)

// UI is the minimal set of prompts the updater needs.
type UI interface {
	Input(title, placeholder string, value *string, validate func(string) error) error
	Select(title string, options []string, value *string) error
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// HuhUI implements UI with charmbracelet/huh forms on stderr.
type HuhUI struct{}

var runForm = func(form *huh.Form) error { return form.Run() }

func (HuhUI) run(form *huh.Form) error {
	err := runForm(form.WithOutput(os.Stderr))
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// Input renders a single text input.
func (ui HuhUI) Input(title, placeholder string, value *string, validate func(string) error) error {
	return ui.run(huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Placeholder(placeholder).
			Validate(validate).
			Value(value),
	)))
}

// Select renders a single-choice list.
func (ui HuhUI) Select(title string, options []string, value *string) error {
	return ui.run(huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(huh.NewOptions(options...)...).
			Value(value),
	)))
}

// Prompter fills in a missing game version and loader.
type Prompter struct {
	ui          UI
	interactive func() bool
	loaders     []string
}

// New creates a Prompter offering loaders as choices.
func New(loaders []string) *Prompter {
	return &Prompter{ui: HuhUI{}, interactive: IsInteractive, loaders: loaders}
}

// Target asks for whichever of gameVersion and loader is empty. Nothing is
// asked when both are set.
func (p *Prompter) Target(gameVersion, loader *string) error {
	if *gameVersion != "" && *loader != "" {
		return nil
	}
	if !p.interactive() {
		return ErrNotInteractive
	}

	if *gameVersion == "" {
		if err := p.ui.Input("Minecraft version", "e.g. 1.21.1", gameVersion, validateGameVersion); err != nil {
			return fmt.Errorf("game version: %w", err)
		}
		*gameVersion = strings.TrimSpace(*gameVersion)
	}

	if *loader == "" {
		*loader = p.loaders[0]
		if err := p.ui.Select("Mod loader", p.loaders, loader); err != nil {
			return fmt.Errorf("loader: %w", err)
		}
	}

	return nil
}

func validateGameVersion(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("enter a game version")
	}
	if strings.ContainsAny(s, " \t/\\") {
		return errors.New("game version cannot contain spaces or slashes")
	}
	return nil
}
