package model

// User is the authenticated user's profile as returned by /auth/me/.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Preferences mirrors the backend's per-user preference record.
type Preferences struct {
	ProfilePicture       string `json:"profile_picture,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Company              string `json:"company,omitempty"`
	Timezone             string `json:"timezone,omitempty"`
	DarkModePreference   string `json:"dark_mode_preference"`
	DarkModeEnabled      bool   `json:"dark_mode_enabled"`
	EmailNotifications   bool   `json:"email_notifications"`
	DesktopNotifications bool   `json:"desktop_notifications"`
	WeeklyDigest         bool   `json:"weekly_digest"`
	AutoArchiveRead      bool   `json:"auto_archive_read"`
}
