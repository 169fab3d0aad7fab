// Package login implements the sign-in and registration screens.
package login

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/theme"
)

// Mode represents the current state of the login view.
type Mode int

const (
	ModeLogin      Mode = iota // Username/password form
	ModeRegister               // Registration form
	ModeSubmitting             // Waiting on the backend
)

// AuthenticatedMsg signals that the user is signed in and the main
// app should take over.
type AuthenticatedMsg struct{}

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	err error
}

// Model is the Bubble Tea model for the login and registration screens.
type Model struct {
	mode   Mode
	client *api.Client

	loginForm    *huh.Form
	registerForm *huh.Form

	// Form field values (huh binds to these)
	formUsername string
	formEmail    string
	formPassword string
	formConfirm  string

	errMsg        string
	width, height int
}

// New creates a login view model.
func New(client *api.Client, width, height int) Model {
	m := Model{
		mode:   ModeLogin,
		client: client,
		width:  width,
		height: height,
	}
	m.loginForm = m.buildLoginForm()
	return m
}

// Init starts the login form.
func (m Model) Init() tea.Cmd {
	return m.loginForm.Init()
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authResultMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.mode = ModeLogin
			m.resetFormFields()
			m.loginForm = m.buildLoginForm()
			return m, m.loginForm.Init()
		}
		return m, func() tea.Msg { return AuthenticatedMsg{} }

	case tea.KeyMsg:
		if m.mode != ModeSubmitting && msg.String() == "tab" && m.formFocusAllowsSwitch() {
			return m.switchMode()
		}
	}

	switch m.mode {
	case ModeLogin:
		return m.updateLoginForm(msg)
	case ModeRegister:
		return m.updateRegisterForm(msg)
	}
	return m, nil
}

// formFocusAllowsSwitch reports whether tab should flip between the
// login and register forms. huh uses tab for field navigation, so the
// switch only triggers on the first field.
func (m Model) formFocusAllowsSwitch() bool {
	switch m.mode {
	case ModeLogin:
		return m.formUsername == "" && m.formPassword == ""
	case ModeRegister:
		return m.formUsername == "" && m.formEmail == ""
	}
	return false
}

func (m Model) switchMode() (Model, tea.Cmd) {
	m.errMsg = ""
	m.resetFormFields()

	if m.mode == ModeLogin {
		m.mode = ModeRegister
		m.registerForm = m.buildRegisterForm()
		return m, m.registerForm.Init()
	}

	m.mode = ModeLogin
	m.loginForm = m.buildLoginForm()
	return m, m.loginForm.Init()
}

// --- Login form ---

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("username").
				Value(&m.formUsername).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateLoginForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.loginForm == nil {
		return m, nil
	}

	mdl, cmd := m.loginForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.loginForm = f
	}

	if m.loginForm.State == huh.StateCompleted {
		m.mode = ModeSubmitting
		m.errMsg = ""
		return m, m.submitLogin()
	}
	if m.loginForm.State == huh.StateAborted {
		return m, tea.Quit
	}

	return m, cmd
}

func (m Model) submitLogin() tea.Cmd {
	client := m.client
	username, password := m.formUsername, m.formPassword
	return func() tea.Msg {
		err := client.Login(context.Background(), username, password)
		return authResultMsg{err: err}
	}
}

// --- Register form ---

func (m *Model) buildRegisterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.formUsername).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.formEmail).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).
				Validate(validateRequired("Password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formConfirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateRegisterForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.registerForm == nil {
		return m, nil
	}

	mdl, cmd := m.registerForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.registerForm = f
	}

	if m.registerForm.State == huh.StateCompleted {
		if m.formPassword != m.formConfirm {
			m.errMsg = "Passwords do not match"
			m.registerForm = m.buildRegisterForm()
			return m, m.registerForm.Init()
		}
		m.mode = ModeSubmitting
		m.errMsg = ""
		return m, m.submitRegister()
	}
	if m.registerForm.State == huh.StateAborted {
		return m.switchMode()
	}

	return m, cmd
}

func (m Model) submitRegister() tea.Cmd {
	client := m.client
	username, email := m.formUsername, m.formEmail
	password, confirm := m.formPassword, m.formConfirm
	return func() tea.Msg {
		err := client.Register(context.Background(), username, email, password, confirm)
		return authResultMsg{err: err}
	}
}

// --- View ---

// View renders the login screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Maildeck"))
	b.WriteString("\n\n")

	switch m.mode {
	case ModeLogin:
		b.WriteString("Sign in\n\n")
		if m.loginForm != nil {
			b.WriteString(m.loginForm.View())
		}
	case ModeRegister:
		b.WriteString("Create account\n\n")
		if m.registerForm != nil {
			b.WriteString(m.registerForm.View())
		}
	case ModeSubmitting:
		b.WriteString("Signing in...")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		b.WriteString(errStyle.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("tab switch login/register | esc quit"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m *Model) resetFormFields() {
	m.formUsername = ""
	m.formEmail = ""
	m.formPassword = ""
	m.formConfirm = ""
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("Email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
