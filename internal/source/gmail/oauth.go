package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nhle/linkscan/internal/model"
)

// ReadOnlyScope grants read access to messages and attachments.
const ReadOnlyScope = "https://www.googleapis.com/auth/gmail.readonly"

// OAuthConfig builds the installed-app OAuth configuration for cfg.
func OAuthConfig(cfg model.GmailConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{ReadOnlyScope},
		Endpoint:     google.Endpoint,
	}
}

// AuthCodeURL returns the consent page URL. Offline access is requested
// so the exchanged token carries a refresh token.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// EncodeToken serializes a token for storage in the keyring.
func EncodeToken(tok *oauth2.Token) (string, error) {
	data, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("encoding oauth token: %w", err)
	}
	return string(data), nil
}

// DecodeToken parses a token previously produced by EncodeToken.
func DecodeToken(s string) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(s), &tok); err != nil {
		return nil, fmt.Errorf("decoding oauth token: %w", err)
	}
	return &tok, nil
}

// NewHTTPClient returns an http.Client that authorizes requests with tok
// and refreshes it when it expires. Every refreshed token is handed to
// save; a save failure is ignored so the request still goes through.
func NewHTTPClient(
	ctx context.Context,
	conf *oauth2.Config,
	tok *oauth2.Token,
	save func(*oauth2.Token) error,
) *http.Client {
	ts := &persistingTokenSource{
		base: conf.TokenSource(ctx, tok),
		last: tok.AccessToken,
		save: save,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts))
}

// persistingTokenSource calls save whenever the wrapped source yields a
// token different from the last one seen.
type persistingTokenSource struct {
	base oauth2.TokenSource
	save func(*oauth2.Token) error

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if s.save != nil {
			_ = s.save(tok)
		}
	}
	return tok, nil
}
