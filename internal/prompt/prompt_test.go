package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUI struct {
	input   string
	choice  string
	err     error
	inputs  []string
	selects []string
	offered []string
}

func (f *fakeUI) Input(title, _ string, value *string, validate func(string) error) error {
	f.inputs = append(f.inputs, title)
	if f.err != nil {
		return f.err
	}
	if err := validate(f.input); err != nil {
		return err
	}
	*value = f.input
	return nil
}

func (f *fakeUI) Select(title string, options []string, value *string) error {
	f.selects = append(f.selects, title)
	f.offered = options
	if f.err != nil {
		return f.err
	}
	*value = f.choice
	return nil
}

func newTestPrompter(ui UI, interactive bool) *Prompter {
	return &Prompter{
		ui:          ui,
		interactive: func() bool { return interactive },
		loaders:     []string{"fabric", "forge", "quilt", "neoforge"},
	}
}

func TestPrompter_Target(t *testing.T) {
	ui := &fakeUI{input: " 1.21.1 ", choice: "quilt"}
	p := newTestPrompter(ui, true)

	gv, loader := "", ""
	require.NoError(t, p.Target(&gv, &loader))

	assert.Equal(t, "1.21.1", gv)
	assert.Equal(t, "quilt", loader)
	assert.Equal(t, []string{"fabric", "forge", "quilt", "neoforge"}, ui.offered)
}

func TestPrompter_Target_OnlyMissing(t *testing.T) {
	ui := &fakeUI{choice: "forge"}
	p := newTestPrompter(ui, true)

	gv, loader := "1.20.1", ""
	require.NoError(t, p.Target(&gv, &loader))

	assert.Empty(t, ui.inputs)
	assert.Len(t, ui.selects, 1)
	assert.Equal(t, "forge", loader)
}

func TestPrompter_Target_NothingMissing(t *testing.T) {
	ui := &fakeUI{}
	p := newTestPrompter(ui, false)

	gv, loader := "1.21.1", "fabric"
	require.NoError(t, p.Target(&gv, &loader))
	assert.Empty(t, ui.inputs)
	assert.Empty(t, ui.selects)
}

func TestPrompter_Target_NotInteractive(t *testing.T) {
	p := newTestPrompter(&fakeUI{}, false)

	gv, loader := "", "fabric"
	assert.ErrorIs(t, p.Target(&gv, &loader), ErrNotInteractive)
}

func TestPrompter_Target_Aborted(t *testing.T) {
	p := newTestPrompter(&fakeUI{err: ErrAborted}, true)

	gv, loader := "", ""
	err := p.Target(&gv, &loader)
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, err.Error(), "game version")
}

func TestValidateGameVersion(t *testing.T) {
	assert.NoError(t, validateGameVersion("1.21.1"))
	assert.NoError(t, validateGameVersion("24w14a"))
	assert.Error(t, validateGameVersion("  "))
	assert.Error(t, validateGameVersion("1.21 1"))
	assert.Error(t, validateGameVersion("../1.21"))
}
