package api

import (
	"context"
	"net/url"

	"github.com/nhle/maildeck/internal/model"
)

// EmailFilter narrows the /emails/ listing. Zero values mean "no filter".
type EmailFilter struct {
	IsRead    *bool
	IsStarred *bool
	Priority  string
	Search    string
}

func (f EmailFilter) query() string {
	q := url.Values{}
	if f.IsRead != nil {
		q.Set("is_read", boolParam(*f.IsRead))
	}
	if f.IsStarred != nil {
		q.Set("is_starred", boolParam(*f.IsStarred))
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Emails lists the user's aggregated messages.
func (c *Client) Emails(ctx context.Context, filter EmailFilter) ([]model.EmailMessage, error) {
	var emails []model.EmailMessage
	if err := c.get(ctx, "/emails/"+filter.query(), &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// UpdateEmail patches message fields (is_read, is_starred, is_archived,
// is_trashed) and returns the updated message.
func (c *Client) UpdateEmail(
	ctx context.Context,
	emailID int64,
	fields map[string]interface{},
) (*model.EmailMessage, error) {
	var email model.EmailMessage
	if err := c.patch(ctx, idPath("/emails/", emailID), fields, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// MarkRead flags a message as read.
func (c *Client) MarkRead(ctx context.Context, emailID int64) error {
	_, err := c.UpdateEmail(ctx, emailID, map[string]interface{}{"is_read": true})
	return err
}

// SetStarred sets the starred flag on a message.
func (c *Client) SetStarred(ctx context.Context, emailID int64, starred bool) error {
	_, err := c.UpdateEmail(ctx, emailID, map[string]interface{}{"is_starred": starred})
	return err
}

// SendEmail submits an outgoing message for delivery.
func (c *Client) SendEmail(ctx context.Context, email model.OutgoingEmail) error {
	return c.post(ctx, "/emails/send/", email, nil)
}
