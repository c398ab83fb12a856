package setup

import (
	"strings"
	"text/template"

	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Addresses of the agency and the token endpoint as the demo applications
// see them inside the docker network.
var dockerRemaps = map[string]string{
	"https://localhost:8443/diagency":     "https://iviadcgw:8443/diagency",
	"https://localhost:8443/oauth2/token": "https://iviadcgw:8443/oauth2/token",
}

// DotEnv is the configuration of the DMV and bank applications.
type DotEnv struct {
	AccountURL    string
	TokenEndpoint string
	NodeEnv       string

	DMVAgentName     string
	DMVAgentID       string
	DMVAgentPassword string
	DMVURL           string
	DMVAgentDID      string

	BankAgentName     string
	BankAgentID       string
	BankAgentPassword string
	BankURL           string

	ClientID          string
	ClientSecret      string
	W3Root            string
	DMVRedirectURL    string
	DMVLogoutRedirect string

	SchemaID     string
	DefinitionID string
	TemplateID   string
}

func remap(u string) string {
	if to, ok := dockerRemaps[u]; ok {
		return to
	}
	return u
}

// NewDotEnv builds the .env data from the setup input and result.
func NewDotEnv(e Env, r *Result) DotEnv {
	nodeEnv := "development"
	if e.ProdDeploy {
		nodeEnv = "production"
	}
	d := DotEnv{
		AccountURL:        remap(e.AgencyURL),
		TokenEndpoint:     remap(e.TokenEndpoint),
		NodeEnv:           nodeEnv,
		DMVAgentName:      DMVAgentName,
		DMVURL:            e.DMVHost,
		BankAgentName:     BankAgentName,
		BankURL:           e.BankHost,
		ClientID:          e.IDPClientID,
		ClientSecret:      e.IDPClientSecret,
		W3Root:            e.IDPURL,
		DMVRedirectURL:    e.DMVHost + "/logincallback",
		DMVLogoutRedirect: e.DMVHost + "/logout-callback",
		SchemaID:          r.SchemaID,
		DefinitionID:      r.DefinitionID,
		TemplateID:        r.TemplateID,
	}
	if a := r.DMVAgent; a != nil {
		d.DMVAgentID, d.DMVAgentPassword, d.DMVAgentDID = a.ID, a.ClientSecret, a.DID
	}
	if a := r.BankAgent; a != nil {
		d.BankAgentID, d.BankAgentPassword = a.ID, a.ClientSecret
	}
	return d
}

var dotEnvTmpl = template.Must(template.New("dotenv").Parse(`# Account and token endpoints
ACCOUNT_URL={{.AccountURL}}
REACT_APP_ACCOUNT_URL={{.AccountURL}}
REACT_APP_TOKEN_ENDPOINT={{.TokenEndpoint}}
NODE_ENV={{.NodeEnv}}

# DMV agent configuration
DMV_AGENT_NAME={{.DMVAgentName}}
DMV_AGENT_ID={{.DMVAgentID}}
REACT_APP_DMV_AGENT_ID={{.DMVAgentID}}
DMV_AGENT_PASSWORD={{.DMVAgentPassword}}
REACT_APP_DMV_AGENT_PASSWORD={{.DMVAgentPassword}}
DMV_URL={{.DMVURL}}
DMV_AGENT_DID={{.DMVAgentDID}}

# Bank agent configuration
BANK_AGENT_NAME={{.BankAgentName}}
BANK_AGENT_ID={{.BankAgentID}}
REACT_APP_BANK_AGENT_ID={{.BankAgentID}}
BANK_AGENT_PASSWORD={{.BankAgentPassword}}
REACT_APP_BANK_AGENT_PASSWORD={{.BankAgentPassword}}
BANK_URL={{.BankURL}}

# Authentication configuration
REACT_APP_CLIENT_ID={{.ClientID}}
REACT_APP_CLIENT_SECRET={{.ClientSecret}}
W3_ROOT={{.W3Root}}
REACT_APP_W3_ROOT={{.W3Root}}
DMV_REDIRECT_URL={{.DMVRedirectURL}}
REACT_APP_DMV_REDIRECT_URL={{.DMVRedirectURL}}
DMV_LOGOUT_REDIRECT_URL={{.DMVLogoutRedirect}}
REACT_APP_DMV_LOGOUT_REDIRECT_URL={{.DMVLogoutRedirect}}

# Credential configuration
CREDENTIAL_SCHEMA_ID={{.SchemaID}}
REACT_APP_CREDENTIAL_SCHEMA_ID={{.SchemaID}}
CREDENTIAL_DEFINITION_ID={{.DefinitionID}}
REACT_APP_CREDENTIAL_DEFINITION_ID={{.DefinitionID}}
EXCHANGE_TEMPLATE_ID={{.TemplateID}}
REACT_APP_EXCHANGE_TEMPLATE_ID={{.TemplateID}}`))

// RenderDotEnv returns the .env file content.
func RenderDotEnv(d DotEnv) (s string, err error) {
	defer err2.Handle(&err, "render .env")

	var b strings.Builder
	try.To(dotEnvTmpl.Execute(&b, d))
	return b.String(), nil
}
