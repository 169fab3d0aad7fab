// Package link implements the OAuth account-linking handshake: it asks
// the backend for a provider authorization URL, opens the user's
// browser, receives the provider's redirect on a loopback listener, and
// exchanges the authorization code with the backend.
package link

import "fmt"

// Provider is a supported OAuth mail provider. The provider is carried
// structurally: it is bound to the callback path the provider redirects
// to, never inferred from the opaque state parameter.
type Provider int

const (
	Gmail Provider = iota
	Outlook
)

// Providers lists every supported provider in display order.
var Providers = []Provider{Gmail, Outlook}

// String returns the backend path segment for the provider.
func (p Provider) String() string {
	switch p {
	case Gmail:
		return "gmail"
	case Outlook:
		return "outlook"
	default:
		return "unknown"
	}
}

// DisplayName returns the human-readable provider name.
func (p Provider) DisplayName() string {
	switch p {
	case Gmail:
		return "Gmail"
	case Outlook:
		return "Outlook"
	default:
		return "Unknown"
	}
}

// CallbackPath returns the loopback route the provider redirects to.
func (p Provider) CallbackPath() string {
	return "/callback/" + p.String()
}

// ParseProvider maps a path segment back to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "gmail":
		return Gmail, nil
	case "outlook":
		return Outlook, nil
	default:
		return 0, fmt.Errorf("unsupported provider %q", s)
	}
}
