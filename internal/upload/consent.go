package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ConsentFlow obtains a brand-new token interactively.
type ConsentFlow interface {
	Obtain(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// LoopbackConsent prints the authorization URL and waits for the provider to
// redirect back to a local listener, like an installed-app flow.
type LoopbackConsent struct {
	Out io.Writer
	// Open, when set, is handed the authorization URL (e.g. to launch a browser).
	Open func(authURL string) error
	// Addr is the listen address; defaults to an ephemeral loopback port.
	Addr string
}

type callbackResult struct {
	code string
	err  error
}

func (l *LoopbackConsent) Obtain(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	addr := l.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}

	c := *conf
	c.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := c.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)

	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("authorization response carried no code")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Open this URL in a browser to authorize uploads:\n\n%s\n\n", authURL)
	if l.Open != nil {
		if err := l.Open(authURL); err != nil {
			fmt.Fprintf(out, "could not open browser: %v\n", err)
		}
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}
