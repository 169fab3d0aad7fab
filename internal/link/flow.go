package link

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
)

// State is the flow's position in the linking handshake.
type State int

const (
	StateIdle State = iota
	StateRequestingAuthURL
	StateAwaitingProvider
	StateExchangingCode
	StateLinked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingAuthURL:
		return "requesting_auth_url"
	case StateAwaitingProvider:
		return "awaiting_provider"
	case StateExchangingCode:
		return "exchanging_code"
	case StateLinked:
		return "linked"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode distinguishes attaching a mailbox to a logged-in user from
// logging in via a provider.
type Mode int

const (
	// ModeAttach links a provider mailbox to the current session.
	ModeAttach Mode = iota

	// ModeSocialLogin trades the code for a fresh token pair.
	ModeSocialLogin
)

// Redirect delays after a terminal state, consumed by the UI.
const (
	SuccessRedirectDelay = 2 * time.Second
	FailureRedirectDelay = 3 * time.Second
)

// Result is a terminal flow outcome.
type Result struct {
	Provider Provider
	Mode     Mode
	State    State // StateLinked or StateFailed
	Message  string

	// RedirectAfter is how long the UI should display the outcome
	// before returning to the previous view.
	RedirectAfter time.Duration

	// Created is true when a social login created a new user.
	Created bool
}

func (f *Flow) failure(message string) Result {
	f.setState(StateFailed)
	f.log.Warn().
		Str("flow", f.id).
		Str("provider", f.provider.String()).
		Msg(message)
	return Result{
		Provider:      f.provider,
		Mode:          f.mode,
		State:         StateFailed,
		Message:       message,
		RedirectAfter: FailureRedirectDelay,
	}
}

// Flow drives one provider-linking handshake. A Flow is single-use:
// Begin once, then HandleCallback once.
type Flow struct {
	id       string
	client   *api.Client
	provider Provider
	mode     Mode
	log      zerolog.Logger

	mu            sync.Mutex
	state         State
	expectedState string
}

// NewFlow creates a flow for the given provider and mode.
func NewFlow(client *api.Client, provider Provider, mode Mode, log zerolog.Logger) *Flow {
	return &Flow{
		id:       uuid.NewString(),
		client:   client,
		provider: provider,
		mode:     mode,
		log:      log,
		state:    StateIdle,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Begin fetches the provider authorization URL from the backend and
// moves the flow to StateAwaitingProvider. The caller is responsible
// for opening the returned URL in the user's browser; from that point
// on the only way back into the flow is the loopback callback.
func (f *Flow) Begin(ctx context.Context) (string, error) {
	f.setState(StateRequestingAuthURL)

	var authURL string
	var err error
	switch f.mode {
	case ModeSocialLogin:
		authURL, err = f.client.SocialAuthorizeURL(ctx, f.provider.String())
	default:
		authURL, err = f.client.AuthorizeURL(ctx, f.provider.String())
	}
	if err != nil {
		f.setState(StateFailed)
		return "", err
	}

	// The backend embeds its own state value in the authorization
	// URL. Remember it so the callback echo can be verified; the
	// value is never used to pick the provider.
	if u, parseErr := url.Parse(authURL); parseErr == nil {
		f.mu.Lock()
		f.expectedState = u.Query().Get("state")
		f.mu.Unlock()
	}

	f.setState(StateAwaitingProvider)
	f.log.Info().
		Str("flow", f.id).
		Str("provider", f.provider.String()).
		Msg("awaiting provider redirect")

	return authURL, nil
}

// HandleCallback consumes the provider redirect and finishes the flow.
// It issues at most one exchange call: none at all when the redirect
// reports an error or carries no code.
func (f *Flow) HandleCallback(ctx context.Context, cb Callback) Result {
	if cb.ProviderError != "" {
		return f.failure(fmt.Sprintf("Authorization failed: %s", cb.ProviderError))
	}

	if cb.Code == "" {
		return f.failure("No authorization code received")
	}

	if cb.Provider != f.provider {
		return f.failure(fmt.Sprintf(
			"Received a %s redirect while linking %s",
			cb.Provider.DisplayName(), f.provider.DisplayName(),
		))
	}

	f.mu.Lock()
	expected := f.expectedState
	f.mu.Unlock()
	if expected != "" && cb.State != expected {
		return f.failure("Authorization state mismatch; please try again")
	}

	f.setState(StateExchangingCode)

	switch f.mode {
	case ModeSocialLogin:
		created, err := f.client.SocialLogin(ctx, f.provider.String(), cb.Code)
		if err != nil {
			return f.failure(err.Error())
		}
		f.setState(StateLinked)
		return Result{
			Provider:      f.provider,
			Mode:          f.mode,
			State:         StateLinked,
			Message:       fmt.Sprintf("Logged in with %s", f.provider.DisplayName()),
			RedirectAfter: SuccessRedirectDelay,
			Created:       created,
		}

	default:
		exchanged, err := f.client.ExchangeCode(ctx, f.provider.String(), cb.Code)
		if err != nil {
			return f.failure(err.Error())
		}

		message := exchanged.Message
		if message == "" {
			message = fmt.Sprintf(
				"%s account connected successfully!",
				f.provider.DisplayName(),
			)
		}

		f.setState(StateLinked)
		return Result{
			Provider:      f.provider,
			Mode:          f.mode,
			State:         StateLinked,
			Message:       message,
			RedirectAfter: SuccessRedirectDelay,
		}
	}
}
