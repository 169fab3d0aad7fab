// Package settings implements the profile and preferences screen.
package settings

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeLoading Mode = iota
	ModeMenu
	ModeProfile
	ModePreferences
	ModePicture
	ModeSaving
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// ThemePrefChangedMsg tells the app to re-apply the dark mode decision.
type ThemePrefChangedMsg struct {
	Preference string // "auto" or "manual"
	DarkMode   bool
}

// loadedMsg carries the fetched profile and preferences.
type loadedMsg struct {
	user  *model.User
	prefs *model.Preferences
	err   error
}

// savedMsg carries the result of a save call.
type savedMsg struct {
	prefs *model.Preferences
	err   error
}

// Model is the settings view component.
type Model struct {
	mode   Mode
	client *api.Client

	user  *model.User
	prefs *model.Preferences

	menuForm *huh.Form
	form     *huh.Form

	// Form field values (huh binds to these)
	menuChoice    string
	formFirstName string
	formLastName  string
	formEmail     string
	formPhone     string
	formCompany   string
	formTimezone  string

	formPicturePath   string
	formPictureRemove bool

	formDarkPref        string
	formDarkEnabled     bool
	formEmailNotif      bool
	formDesktopNotif    bool
	formWeeklyDigest    bool
	formAutoArchiveRead bool

	statusMsg     string
	width, height int
}

// New creates a settings view model.
func New(client *api.Client, width, height int) Model {
	return Model{
		mode:   ModeLoading,
		client: client,
		width:  width,
		height: height,
	}
}

// Init loads the profile and preferences from the backend.
func (m Model) Init() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		user, err := client.Me(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		prefs, err := client.Preferences(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{user: user, prefs: prefs}
	}
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading settings: %v", msg.err)
			m.mode = ModeMenu
			m.menuForm = m.buildMenuForm()
			return m, m.menuForm.Init()
		}
		m.user = msg.user
		m.prefs = msg.prefs
		m.mode = ModeMenu
		m.menuForm = m.buildMenuForm()
		return m, m.menuForm.Init()

	case savedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.statusMsg = "Saved"
			if msg.prefs != nil {
				m.prefs = msg.prefs
			}
		}
		m.mode = ModeMenu
		m.menuForm = m.buildMenuForm()

		cmds := []tea.Cmd{m.menuForm.Init()}
		if msg.err == nil && msg.prefs != nil {
			prefs := *msg.prefs
			cmds = append(cmds, func() tea.Msg {
				return ThemePrefChangedMsg{
					Preference: prefs.DarkModePreference,
					DarkMode:   prefs.DarkModeEnabled,
				}
			})
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.mode == ModeMenu && msg.String() == "esc" {
			return m, func() tea.Msg { return DoneMsg{} }
		}
	}

	switch m.mode {
	case ModeMenu:
		return m.updateMenu(msg)
	case ModeProfile, ModePreferences, ModePicture:
		return m.updateForm(msg)
	}
	return m, nil
}

// --- Menu ---

func (m *Model) buildMenuForm() *huh.Form {
	m.menuChoice = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Settings").
				Options(
					huh.NewOption("Profile", "profile"),
					huh.NewOption("Profile picture", "picture"),
					huh.NewOption("Preferences", "preferences"),
					huh.NewOption("Back", "back"),
				).
				Value(&m.menuChoice),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateMenu(msg tea.Msg) (Model, tea.Cmd) {
	if m.menuForm == nil {
		return m, nil
	}

	mdl, cmd := m.menuForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.menuForm = f
	}

	if m.menuForm.State == huh.StateCompleted {
		switch m.menuChoice {
		case "profile":
			m.mode = ModeProfile
			m.fillProfileFields()
			m.form = m.buildProfileForm()
			return m, m.form.Init()
		case "picture":
			m.mode = ModePicture
			m.formPicturePath = ""
			m.formPictureRemove = false
			m.form = m.buildPictureForm()
			return m, m.form.Init()
		case "preferences":
			m.mode = ModePreferences
			m.fillPreferenceFields()
			m.form = m.buildPreferencesForm()
			return m, m.form.Init()
		default:
			return m, func() tea.Msg { return DoneMsg{} }
		}
	}
	if m.menuForm.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

// --- Profile form ---

func (m *Model) fillProfileFields() {
	if m.user != nil {
		m.formFirstName = m.user.FirstName
		m.formLastName = m.user.LastName
		m.formEmail = m.user.Email
	}
	if m.prefs != nil {
		m.formPhone = m.prefs.Phone
		m.formCompany = m.prefs.Company
		m.formTimezone = m.prefs.Timezone
	}
}

func (m *Model) buildProfileForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First name").
				Value(&m.formFirstName),
			huh.NewInput().
				Title("Last name").
				Value(&m.formLastName),
			huh.NewInput().
				Title("Email").
				Value(&m.formEmail),
			huh.NewInput().
				Title("Phone").
				Value(&m.formPhone),
			huh.NewInput().
				Title("Company").
				Value(&m.formCompany),
			huh.NewInput().
				Title("Timezone").
				Placeholder("Europe/Berlin").
				Value(&m.formTimezone),
		),
	).WithWidth(m.formWidth())
}

// --- Profile picture form ---

func (m *Model) buildPictureForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Image file").
				Description("Path to a .png, .jpg, or .gif; leave empty to keep the current picture").
				Placeholder("~/Pictures/avatar.png").
				Value(&m.formPicturePath),
			huh.NewConfirm().
				Title("Remove current picture").
				Value(&m.formPictureRemove),
		),
	).WithWidth(m.formWidth())
}

// pictureDataURL reads an image file and encodes it the way the
// backend expects: a data: URL with the base64 payload inline.
func pictureDataURL(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var mime string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mime = "image/png"
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	default:
		return "", fmt.Errorf("unsupported image type %q", filepath.Ext(path))
	}

	return fmt.Sprintf("data:%s;base64,%s",
		mime, base64.StdEncoding.EncodeToString(data),
	), nil
}

func (m Model) savePicture() tea.Cmd {
	client := m.client
	path := strings.TrimSpace(m.formPicturePath)
	remove := m.formPictureRemove

	return func() tea.Msg {
		ctx := context.Background()

		if remove {
			return savedMsg{err: client.RemoveProfilePicture(ctx)}
		}
		if path == "" {
			return savedMsg{}
		}

		dataURL, err := pictureDataURL(path)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{err: client.SetProfilePicture(ctx, dataURL)}
	}
}

// --- Preferences form ---

func (m *Model) fillPreferenceFields() {
	if m.prefs == nil {
		m.formDarkPref = "auto"
		return
	}
	m.formDarkPref = m.prefs.DarkModePreference
	if m.formDarkPref == "" {
		m.formDarkPref = "auto"
	}
	m.formDarkEnabled = m.prefs.DarkModeEnabled
	m.formEmailNotif = m.prefs.EmailNotifications
	m.formDesktopNotif = m.prefs.DesktopNotifications
	m.formWeeklyDigest = m.prefs.WeeklyDigest
	m.formAutoArchiveRead = m.prefs.AutoArchiveRead
}

func (m *Model) buildPreferencesForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dark mode").
				Description("Auto switches to dark between 19:00 and 07:00").
				Options(
					huh.NewOption("Automatic (time of day)", "auto"),
					huh.NewOption("Manual", "manual"),
				).
				Value(&m.formDarkPref),
			huh.NewConfirm().
				Title("Dark mode enabled").
				Description("Only applies when dark mode is manual").
				Value(&m.formDarkEnabled),
			huh.NewConfirm().
				Title("Email notifications").
				Value(&m.formEmailNotif),
			huh.NewConfirm().
				Title("Desktop notifications").
				Value(&m.formDesktopNotif),
			huh.NewConfirm().
				Title("Weekly digest").
				Value(&m.formWeeklyDigest),
			huh.NewConfirm().
				Title("Auto-archive read mail").
				Value(&m.formAutoArchiveRead),
		),
	).WithWidth(m.formWidth())
}

// --- Shared form handling ---

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		saving := m.mode
		m.mode = ModeSaving
		switch saving {
		case ModeProfile:
			return m, m.saveProfile()
		case ModePicture:
			return m, m.savePicture()
		default:
			return m, m.savePreferences()
		}
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeMenu
		m.menuForm = m.buildMenuForm()
		return m, m.menuForm.Init()
	}

	return m, cmd
}

func (m Model) saveProfile() tea.Cmd {
	client := m.client
	userFields := map[string]interface{}{
		"first_name": m.formFirstName,
		"last_name":  m.formLastName,
		"email":      m.formEmail,
	}
	prefFields := map[string]interface{}{
		"phone":    m.formPhone,
		"company":  m.formCompany,
		"timezone": m.formTimezone,
	}
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := client.UpdateMe(ctx, userFields); err != nil {
			return savedMsg{err: err}
		}
		prefs, err := client.UpdatePreferences(ctx, prefFields)
		return savedMsg{prefs: prefs, err: err}
	}
}

func (m Model) savePreferences() tea.Cmd {
	client := m.client
	fields := map[string]interface{}{
		"dark_mode_preference":  m.formDarkPref,
		"dark_mode_enabled":     m.formDarkEnabled,
		"email_notifications":   m.formEmailNotif,
		"desktop_notifications": m.formDesktopNotif,
		"weekly_digest":         m.formWeeklyDigest,
		"auto_archive_read":     m.formAutoArchiveRead,
	}
	return func() tea.Msg {
		prefs, err := client.UpdatePreferences(context.Background(), fields)
		return savedMsg{prefs: prefs, err: err}
	}
}

// --- View ---

// View renders the settings screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Settings"))
	b.WriteString("\n\n")

	switch m.mode {
	case ModeLoading:
		b.WriteString("Loading...")
	case ModeSaving:
		b.WriteString("Saving...")
	case ModeMenu:
		if m.user != nil {
			userLine := lipgloss.NewStyle().
				Foreground(theme.ColorGray).
				Render(fmt.Sprintf("Signed in as %s", m.user.DisplayName()))
			b.WriteString(userLine)
			b.WriteString("\n\n")
		}
		if m.menuForm != nil {
			b.WriteString(m.menuForm.View())
		}
	default:
		if m.form != nil {
			b.WriteString(m.form.View())
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

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
	if w > 100 {
		w = 100
	}
	return w
}
