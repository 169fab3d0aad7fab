package mailbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/nhle/maildeck/internal/model"
)

// ExportEML writes a message to dir as an RFC 5322 .eml file and
// returns the written path.
func ExportEML(msg model.EmailMessage, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("message-%d.eml", msg.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	var h gomail.Header
	date := msg.ReceivedAt
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*gomail.Address{{Address: msg.Sender}})
	if msg.Recipient != "" {
		h.SetAddressList("To", []*gomail.Address{{Address: msg.Recipient}})
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	w, err := gomail.CreateSingleInlineWriter(f, h)
	if err != nil {
		return "", fmt.Errorf("writing headers for %s: %w", path, err)
	}
	if _, err := io.WriteString(w, msg.Body); err != nil {
		w.Close()
		return "", fmt.Errorf("writing body for %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing %s: %w", path, err)
	}

	return path, nil
}
