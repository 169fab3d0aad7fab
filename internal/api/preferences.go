package api

import (
	"context"

	"github.com/nhle/maildeck/internal/model"
)

// Preferences fetches the user's stored preference record.
func (c *Client) Preferences(ctx context.Context) (*model.Preferences, error) {
	var prefs model.Preferences
	if err := c.get(ctx, "/preferences/my_preferences/", &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences patches preference fields and returns the result.
func (c *Client) UpdatePreferences(
	ctx context.Context,
	fields map[string]interface{},
) (*model.Preferences, error) {
	var prefs model.Preferences
	if err := c.patch(ctx, "/preferences/update_preferences/", fields, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}
