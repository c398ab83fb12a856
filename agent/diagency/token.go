package diagency

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// HolderClientID is the OAuth2 client of the end user (holder) agents.
const HolderClientID = "onpremise_vcholders"

// TokenSource fetches bearer tokens from the OAuth2 token endpoint of the
// agency's identity provider.
type TokenSource struct {
	TokenURL string

	hc *http.Client
}

func NewTokenSource(tokenURL string, hc *http.Client) *TokenSource {
	return &TokenSource{TokenURL: tokenURL, hc: hc}
}

func (ts *TokenSource) ctx(ctx context.Context) context.Context {
	if ts.hc == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, ts.hc)
}

// AccessToken gets a token with the client_credentials grant. The service
// agents (issuers, verifiers) and the admin use it.
func (ts *TokenSource) AccessToken(ctx context.Context, clientID, clientSecret string) (t string, err error) {
	defer err2.Handle(&err, "failed to obtain access token for: %s", clientID)

	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     ts.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	glog.V(1).Infof("POST %s (client_credentials: %s)", ts.TokenURL, clientID)
	token := try.To1(cfg.Token(ts.ctx(ctx)))
	return token.AccessToken, nil
}

// HolderAccessToken gets a token with the password grant for the end user.
func (ts *TokenSource) HolderAccessToken(ctx context.Context, username, password string) (t string, err error) {
	defer err2.Handle(&err, "failed to obtain access token for: %s", username)

	cfg := oauth2.Config{
		ClientID: HolderClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  ts.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	glog.V(1).Infof("POST %s (password: %s)", ts.TokenURL, username)
	token := try.To1(cfg.PasswordCredentialsToken(ts.ctx(ctx), username, password))
	return token.AccessToken, nil
}
