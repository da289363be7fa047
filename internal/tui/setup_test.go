// ABOUTME: Unit tests for the setup TUI wizard bubbletea model.
// ABOUTME: Uses synthetic tea.Msg values to test state machine transitions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/seam/internal/config"
)

func okValidator(_ context.Context, _, _, _ string) error { return nil }

func enter(t *testing.T, m SetupModel) (SetupModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(SetupModel), cmd
}

func TestNewSetupModel_DefaultValues(t *testing.T) {
	m := NewSetupModel("", "", "", okValidator)
	if m.step != StepConsumerKey {
		t.Errorf("expected initial step StepConsumerKey, got %d", m.step)
	}
	for i, in := range m.inputs {
		if in.Value() != "" {
			t.Errorf("expected empty input %d for new config, got %q", i, in.Value())
		}
	}
}

func TestNewSetupModel_ExistingConfig(t *testing.T) {
	m := NewSetupModel("ck", "cs", "http://127.0.0.1:9000/cb/", okValidator)
	key, secret, callback := m.Result()
	if key != "ck" || secret != "cs" || callback != "http://127.0.0.1:9000/cb/" {
		t.Errorf("expected pre-filled values, got %q %q %q", key, secret, callback)
	}
}

func TestSetupModel_StepTransitions(t *testing.T) {
	m := NewSetupModel("", "", "", okValidator)

	m.inputs[0].SetValue("ck")
	m, _ = enter(t, m)
	if m.step != StepConsumerSecret {
		t.Errorf("expected StepConsumerSecret, got %d", m.step)
	}

	m.inputs[1].SetValue("cs")
	m, _ = enter(t, m)
	if m.step != StepCallbackURL {
		t.Errorf("expected StepCallbackURL, got %d", m.step)
	}

	m.inputs[2].SetValue("http://127.0.0.1:9000/cb/")
	m, cmd := enter(t, m)
	if m.step != StepValidating {
		t.Errorf("expected StepValidating, got %d", m.step)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd (validation + spinner tick) when entering validation")
	}
}

func TestSetupModel_EmptyCredentialsBlocked(t *testing.T) {
	m := NewSetupModel("", "", "", okValidator)
	m, _ = enter(t, m)
	if m.step != StepConsumerKey {
		t.Errorf("expected to stay on StepConsumerKey, got %d", m.step)
	}

	m.step = StepConsumerSecret
	m.inputs[1].SetValue("   ")
	m, _ = enter(t, m)
	if m.step != StepConsumerSecret {
		t.Errorf("expected to stay on StepConsumerSecret with blank input, got %d", m.step)
	}
}

func TestSetupModel_DefaultCallbackURL(t *testing.T) {
	m := NewSetupModel("ck", "cs", "", okValidator)
	m.step = StepCallbackURL

	m, _ = enter(t, m)
	if m.inputs[2].Value() != config.DefaultCallbackURL {
		t.Errorf("expected default callback %q, got %q", config.DefaultCallbackURL, m.inputs[2].Value())
	}
	if m.step != StepValidating {
		t.Errorf("expected StepValidating, got %d", m.step)
	}
}

func TestSetupModel_CallbackURLNormalized(t *testing.T) {
	m := NewSetupModel("ck", "cs", "", okValidator)
	m.step = StepCallbackURL
	m.inputs[2].SetValue(" http://127.0.0.1:9000/cb ")

	m, _ = enter(t, m)
	if m.inputs[2].Value() != "http://127.0.0.1:9000/cb/" {
		t.Errorf("expected trailing slash added, got %q", m.inputs[2].Value())
	}
}

func TestSetupModel_ValidationResult(t *testing.T) {
	m := NewSetupModel("", "", "", okValidator)
	m.step = StepValidating
	updated, _ := m.Update(validationResultMsg{err: nil})
	if got := updated.(SetupModel).step; got != StepDone {
		t.Errorf("expected StepDone after success, got %d", got)
	}

	m.step = StepValidating
	updated, _ = m.Update(validationResultMsg{err: fmt.Errorf("401 Unauthorized")})
	failed := updated.(SetupModel)
	if failed.step != StepFailed || failed.validationErr == nil {
		t.Errorf("expected StepFailed with error, got %d %v", failed.step, failed.validationErr)
	}
}

func TestSetupModel_FailedKeys(t *testing.T) {
	t.Run("retry", func(t *testing.T) {
		m := NewSetupModel("ck", "cs", "", okValidator)
		m.step = StepFailed
		m.validationErr = fmt.Errorf("some error")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
		m = updated.(SetupModel)
		if m.step != StepValidating || cmd == nil {
			t.Errorf("expected validation restart, got step %d", m.step)
		}
		if m.validationErr != nil {
			t.Error("expected error cleared on retry")
		}
	})

	t.Run("save anyway", func(t *testing.T) {
		m := NewSetupModel("", "", "", okValidator)
		m.step = StepFailed
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
		if !updated.(SetupModel).ShouldSave() {
			t.Error("expected ShouldSave true after save anyway")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := NewSetupModel("", "", "", okValidator)
		m.step = StepFailed
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		m = updated.(SetupModel)
		if cmd == nil || !m.quitting || m.ShouldSave() {
			t.Error("expected quit without save")
		}
	})
}

func TestSetupModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEscape} {
		m := NewSetupModel("", "", "", okValidator)
		updated, cmd := m.Update(tea.KeyMsg{Type: key})
		m = updated.(SetupModel)
		if cmd == nil {
			t.Errorf("key %v: expected quit cmd", key)
		}
		if !m.quitting || m.ShouldSave() {
			t.Errorf("key %v: expected quitting without save", key)
		}
	}
}

func TestSetupModel_ViewShowsCurrentStep(t *testing.T) {
	m := NewSetupModel("ck", "supersecret", "", okValidator)
	if !strings.Contains(m.View(), "SEAM") {
		t.Error("expected view to contain SEAM branding")
	}

	cases := map[Step]string{
		StepConsumerKey:    "Consumer Key",
		StepConsumerSecret: "Consumer Secret",
		StepCallbackURL:    "Callback URL",
		StepValidating:     "Requesting a token",
		StepDone:           "seam auth connect",
	}
	for step, want := range cases {
		m.step = step
		if !strings.Contains(m.View(), want) {
			t.Errorf("step %d: expected view to mention %q", step, want)
		}
	}

	m.step = StepCallbackURL
	if strings.Contains(m.View(), "supersecret") {
		t.Error("consumer secret must be masked")
	}
}

func TestSetupModel_ViewFailed(t *testing.T) {
	m := NewSetupModel("", "", "", okValidator)
	m.step = StepFailed
	if !strings.Contains(m.View(), "unknown error") {
		t.Error("expected nil error to show 'unknown error' fallback")
	}

	m.validationErr = fmt.Errorf("timeout")
	view := m.View()
	for _, want := range []string{"Validation failed", "timeout", "[r]etry", "[s]ave anyway", "[q]uit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected failed view to contain %q", want)
		}
	}
}

func TestSetupModel_ValidationPassesCorrectArgs(t *testing.T) {
	var gotKey, gotSecret, gotCallback string
	m := NewSetupModel("ck", "cs", "http://127.0.0.1:9000/cb/", func(_ context.Context, key, secret, callback string) error {
		gotKey, gotSecret, gotCallback = key, secret, callback
		return nil
	})
	m.step = StepCallbackURL

	_, batchCmd := enter(t, m)
	batchMsg := batchCmd().(tea.BatchMsg)
	batchMsg[0]()

	if gotKey != "ck" || gotSecret != "cs" || gotCallback != "http://127.0.0.1:9000/cb/" {
		t.Errorf("validator got %q %q %q", gotKey, gotSecret, gotCallback)
	}
}

func TestSetupModel_CtrlCDuringValidation(t *testing.T) {
	cancelled := make(chan struct{})
	m := NewSetupModel("ck", "cs", "", func(ctx context.Context, _, _, _ string) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})
	m.step = StepCallbackURL

	m, batchCmd := enter(t, m)
	if m.step != StepValidating {
		t.Fatalf("expected StepValidating, got %d", m.step)
	}

	// batchMsg[0] is the validation cmd, batchMsg[1] the spinner tick.
	batchMsg := batchCmd().(tea.BatchMsg)
	done := make(chan tea.Msg)
	go func() { done <- batchMsg[0]() }()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !updated.(SetupModel).quitting {
		t.Error("expected quitting after Ctrl+C during validation")
	}

	<-done
	select {
	case <-cancelled:
	default:
		t.Error("expected validation context to be cancelled")
	}
}

func TestSetupModel_FullFlowWithTeaProgram(t *testing.T) {
	m := NewSetupModel("ck", "cs", "", func(_ context.Context, _, _, _ string) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	p := tea.NewProgram(m, tea.WithInput(nil), tea.WithoutRenderer())

	go func() {
		p.Send(tea.KeyMsg{Type: tea.KeyEnter}) // key
		p.Send(tea.KeyMsg{Type: tea.KeyEnter}) // secret
		p.Send(tea.KeyMsg{Type: tea.KeyEnter}) // callback -> validates -> done -> quit
	}()

	result, err := p.Run()
	if err != nil {
		t.Fatalf("tea.Program error: %v", err)
	}

	final := result.(SetupModel)
	if !final.ShouldSave() {
		t.Errorf("expected ShouldSave=true, got false (step=%d, quitting=%v)", final.step, final.quitting)
	}
	if _, _, callback := final.Result(); callback != config.DefaultCallbackURL {
		t.Errorf("expected default callback, got %q", callback)
	}
}
