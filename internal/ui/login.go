package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrLoginCancelled is returned when the user leaves the form
var ErrLoginCancelled = errors.New("login cancelled")

const (
	fieldEmail = iota
	fieldPassword
)

// LoginForm is a two-field email/password prompt
type LoginForm struct {
	inputs    []textinput.Model
	focus     int
	err       string
	submitted bool
	cancelled bool
}

func NewLoginForm(email string) LoginForm {
	emailInput := textinput.New()
	emailInput.Placeholder = "you@example.com"
	emailInput.Prompt = "Email:    "
	emailInput.SetValue(email)
	emailInput.CharLimit = 254

	passwordInput := textinput.New()
	passwordInput.Prompt = "Password: "
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	f := LoginForm{inputs: []textinput.Model{emailInput, passwordInput}}
	if email != "" {
		f.focus = fieldPassword
	}
	f.inputs[f.focus].Focus()
	return f
}

func (f LoginForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f LoginForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			f.cancelled = true
			return f, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return f.moveFocus(1), nil
		case tea.KeyShiftTab, tea.KeyUp:
			return f.moveFocus(-1), nil
		case tea.KeyEnter:
			if f.focus == fieldEmail {
				return f.moveFocus(1), nil
			}
			if f.Email() == "" || f.Password() == "" {
				f.err = "email and password are both required"
				return f, nil
			}
			f.submitted = true
			return f, tea.Quit
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f LoginForm) moveFocus(delta int) LoginForm {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return f
}

func (f LoginForm) View() string {
	var b strings.Builder
	b.WriteString(Title("Log in to your aggregator account") + "\n\n")
	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + Error(f.err) + "\n")
	}
	b.WriteString("\n" + Label("enter to submit • tab to switch • esc to cancel") + "\n")
	return b.String()
}

func (f LoginForm) Email() string    { return strings.TrimSpace(f.inputs[fieldEmail].Value()) }
func (f LoginForm) Password() string { return f.inputs[fieldPassword].Value() }
func (f LoginForm) Submitted() bool  { return f.submitted }

// PromptLogin runs the form on the terminal and returns what was entered
func PromptLogin(email string) (string, string, error) {
	final, err := tea.NewProgram(NewLoginForm(email)).Run()
	if err != nil {
		return "", "", err
	}
	form := final.(LoginForm)
	if form.cancelled || !form.submitted {
		return "", "", ErrLoginCancelled
	}
	return form.Email(), form.Password(), nil
}
