package upload

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tok  *oauth2.Token
		want State
	}{
		{"nil", nil, StateNoToken},
		{"empty", &oauth2.Token{}, StateNoToken},
		{"valid", &oauth2.Token{AccessToken: "a", Expiry: now.Add(time.Hour)}, StateValid},
		{"no expiry", &oauth2.Token{AccessToken: "a"}, StateValid},
		{"expired with refresh", &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(-time.Minute)}, StateExpired},
		{"inside early expiry window", &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now.Add(5 * time.Second)}, StateExpired},
		{"refresh only", &oauth2.Token{RefreshToken: "r"}, StateExpired},
		{"expired without refresh", &oauth2.Token{AccessToken: "a", Expiry: now.Add(-time.Minute)}, StateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tok, now); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNext(t *testing.T) {
	cases := map[State]Action{
		StateNoToken: ActionConsent,
		StateExpired: ActionRefresh,
		StateInvalid: ActionConsent,
		StateValid:   ActionProceed,
	}
	for s, want := range cases {
		if got := Next(s); got != want {
			t.Fatalf("Next(%s) = %s, want %s", s, got, want)
		}
	}
}

func TestRefreshRejected(t *testing.T) {
	if got := RefreshRejected(StateExpired); got != StateInvalid {
		t.Fatalf("RefreshRejected(expired) = %s", got)
	}
	if Next(RefreshRejected(StateExpired)) != ActionConsent {
		t.Fatalf("rejected refresh should lead to consent")
	}
	if got := RefreshRejected(StateValid); got != StateValid {
		t.Fatalf("RefreshRejected(valid) = %s", got)
	}
}
