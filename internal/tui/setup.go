// ABOUTME: Interactive TUI wizard for registering X app (consumer) credentials.
// ABOUTME: 3-step bubbletea model collecting consumer key, consumer secret, and callback URL.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/seam/internal/config"
)

// Step represents the current wizard step.
type Step int

const (
	StepConsumerKey Step = iota
	StepConsumerSecret
	StepCallbackURL
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	err error
}

// ValidateFn checks a set of app credentials against the platform.
type ValidateFn func(ctx context.Context, consumerKey, consumerSecret, callbackURL string) error

// cancelHolder shares a cancel function across bubbletea model copies.
// It MUST stay a pointer field: tea.Model methods have value receivers, and
// every copy of the model has to see the cancel func startValidation stores.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [3]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a setup wizard pre-filled with existing config values.
func NewSetupModel(consumerKey, consumerSecret, callbackURL string, validate ValidateFn) SetupModel {
	keyInput := textinput.New()
	keyInput.Placeholder = "consumer key (API key)"
	keyInput.Focus()
	keyInput.Width = 50
	if consumerKey != "" {
		keyInput.SetValue(consumerKey)
	}

	secretInput := textinput.New()
	secretInput.Placeholder = "consumer secret (API key secret)"
	secretInput.EchoMode = textinput.EchoPassword
	secretInput.Width = 50
	if consumerSecret != "" {
		secretInput.SetValue(consumerSecret)
	}

	callbackInput := textinput.New()
	callbackInput.Placeholder = config.DefaultCallbackURL
	callbackInput.Width = 50
	if callbackURL != "" {
		callbackInput.SetValue(callbackURL)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepConsumerKey,
		inputs:     [3]textinput.Model{keyInput, secretInput, callbackInput},
		spinner:    s,
		validateFn: validate,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepConsumerKey, StepConsumerSecret, StepCallbackURL:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)
		m.inputs[idx].SetValue(strings.TrimSpace(m.inputs[idx].Value()))

		switch m.step {
		case StepConsumerKey, StepConsumerSecret:
			if m.inputs[idx].Value() == "" {
				return m, nil
			}
		case StepCallbackURL:
			val := m.inputs[2].Value()
			if val == "" {
				val = config.DefaultCallbackURL
			}
			m.inputs[2].SetValue(config.NormalizeCallbackURL(val))
		}

		m.inputs[idx].Blur()

		switch m.step {
		case StepConsumerKey:
			m.step = StepConsumerSecret
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepConsumerSecret:
			m.step = StepCallbackURL
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepCallbackURL:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	key, secret, callback := m.Result()
	fn := m.validateFn
	return func() tea.Msg {
		if fn == nil {
			return validationResultMsg{}
		}
		return validationResultMsg{err: fn(ctx, key, secret, callback)}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   SEAM"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Register your X app credentials (developer portal, \"Keys and tokens\").\n\n")

	switch m.step {
	case StepConsumerKey:
		b.WriteString(stepStyle.Render("Step 1 of 3: Consumer Key"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepConsumerSecret:
		b.WriteString(fmt.Sprintf("  Consumer Key: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: Consumer Secret"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepCallbackURL:
		b.WriteString(fmt.Sprintf("  Consumer Key: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Consumer Secret: %s\n\n", mask(m.inputs[1].Value())))
		b.WriteString(stepStyle.Render("Step 3 of 3: Callback URL"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(must match the app settings; press Enter for default)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  Consumer Key: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Consumer Secret: %s\n", mask(m.inputs[1].Value())))
		b.WriteString(fmt.Sprintf("  Callback URL: %s\n\n", m.inputs[2].Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Requesting a token from X...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ App credentials saved"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("Next: seam auth connect"))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

func mask(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

// Result returns the entered values.
func (m SetupModel) Result() (consumerKey, consumerSecret, callbackURL string) {
	return m.inputs[0].Value(), m.inputs[1].Value(), m.inputs[2].Value()
}

// ShouldSave reports whether the wizard finished (validated or "save anyway")
// without being cancelled by Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
