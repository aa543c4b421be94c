package upload

import (
	"time"

	"golang.org/x/oauth2"
)

// State is the credential status the gateway acts on.
type State int

const (
	StateNoToken State = iota
	// StateExpired means the access token is stale but a refresh token exists.
	StateExpired
	// StateInvalid means the token cannot be refreshed.
	StateInvalid
	StateValid
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no-token"
	case StateExpired:
		return "expired"
	case StateInvalid:
		return "invalid"
	case StateValid:
		return "valid"
	}
	return "unknown"
}

// Action is what the gateway does next for a State.
type Action int

const (
	ActionConsent Action = iota
	ActionRefresh
	ActionProceed
)

func (a Action) String() string {
	switch a {
	case ActionConsent:
		return "consent"
	case ActionRefresh:
		return "refresh"
	case ActionProceed:
		return "proceed"
	}
	return "unknown"
}

// expiryDelta matches the early-expiry window oauth2.Token.Valid uses.
const expiryDelta = 10 * time.Second

// Classify derives the State of tok at now. A zero Expiry never expires.
func Classify(tok *oauth2.Token, now time.Time) State {
	if tok == nil || (tok.AccessToken == "" && tok.RefreshToken == "") {
		return StateNoToken
	}
	if tok.AccessToken != "" && (tok.Expiry.IsZero() || now.Add(expiryDelta).Before(tok.Expiry)) {
		return StateValid
	}
	if tok.RefreshToken != "" {
		return StateExpired
	}
	return StateInvalid
}

// Next maps a State to its Action.
func Next(s State) Action {
	switch s {
	case StateValid:
		return ActionProceed
	case StateExpired:
		return ActionRefresh
	default:
		return ActionConsent
	}
}

// RefreshRejected is the transition taken when the provider refuses the
// refresh token: the refresh capability itself is gone.
func RefreshRejected(s State) State {
	if s == StateExpired {
		return StateInvalid
	}
	return s
}
