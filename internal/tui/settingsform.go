package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// SettingsForm wraps a Huh form holding the selected parser's options.
// Fields are bound to the parser's own settings, so completing the form
// changes the parser in place.
type SettingsForm struct {
	form   *huh.Form
	titles []string
}

// huhPanel turns SettingsPanel calls into Huh fields.
type huhPanel struct {
	fields []huh.Field
	titles []string
}

var _ viewersdk.SettingsPanel = (*huhPanel)(nil)

func (p *huhPanel) AddChoice(title string, options []string, value *string) {
	p.fields = append(p.fields, huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(value))
	p.titles = append(p.titles, title)
}

func (p *huhPanel) AddToggle(title string, value *bool) {
	p.fields = append(p.fields, huh.NewConfirm().
		Title(title).
		Affirmative("On").
		Negative("Off").
		Value(value))
	p.titles = append(p.titles, title)
}

// NewSettingsForm asks show to describe its options and builds a form for
// them. It reports false when there are no options.
func NewSettingsForm(parserName string, show func(viewersdk.SettingsPanel) bool) (*SettingsForm, bool) {
	panel := &huhPanel{}
	if !show(panel) || len(panel.fields) == 0 {
		return nil, false
	}
	group := huh.NewGroup(panel.fields...).Title(parserName + " settings")
	return &SettingsForm{
		form:   huh.NewForm(group).WithShowHelp(true),
		titles: panel.titles,
	}, true
}

// Titles lists the option titles in the order the parser added them.
func (s *SettingsForm) Titles() []string { return s.titles }

// Form returns the underlying huh.Form for Bubble Tea embedding.
func (s *SettingsForm) Form() *huh.Form { return s.form }

// SetForm replaces the underlying huh.Form. This is used when the form's
// Update method returns a new Form instance.
func (s *SettingsForm) SetForm(f *huh.Form) { s.form = f }

// IsCompleted returns true if the form has been completed (submitted).
func (s *SettingsForm) IsCompleted() bool { return s.form.State == huh.StateCompleted }

// IsAborted returns true if the form has been aborted (cancelled).
func (s *SettingsForm) IsAborted() bool { return s.form.State == huh.StateAborted }
