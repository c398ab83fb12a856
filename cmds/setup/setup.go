/*
Package setup provisions an on-premise verifiable credentials environment for
the DMV and bank demo applications. It creates the issuer and verifier
agents, the OID4VCI credential schema and definition, the OID4VP exchange
template, and registers the issuer's VICAL as the verifier's trust registry.
The applications' configuration is written to a .env file.

Everything is looked up before it's created, which makes the setup safe to
run again.
*/
package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/agent/poll"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/findy-network/diagency-demo/protocol/credschema"
	"github.com/findy-network/diagency-demo/protocol/trust"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	TemplatesPath = "v1.0/oidvc/vp/exchange_templates"

	DefaultAdminName     = "admin"
	DefaultAdminPassword = "secret"
	DefaultOut           = ".env"
)

// Environment variables of the setup.
const (
	EnvAgencyURL       = "AGENCY_URL"
	EnvTokenEndpoint   = "OIDC_TOKEN_ENDPOINT"
	EnvVicalBaseURL    = "VICAL_BASE_URL"
	EnvDMVHost         = "DMV_HOST"
	EnvBankHost        = "BANK_HOST"
	EnvIDPURL          = "IDP_URL"
	EnvIDPClientID     = "IDP_CLIENT_ID"
	EnvIDPClientSecret = "IDP_CLIENT_SECRET"
	EnvAdminName       = "ADMIN_NAME"
	EnvAdminPassword   = "ADMIN_PASSWORD"
	EnvProdDeploy      = "IS_APP_PROD_DEPLOY"
	EnvCustomCAPath    = "CUSTOM_CA_PATH"
)

// EnvNames are all of the environment variables the setup reads.
var EnvNames = []string{
	EnvAgencyURL, EnvTokenEndpoint, EnvVicalBaseURL, EnvDMVHost, EnvBankHost,
	EnvIDPURL, EnvIDPClientID, EnvIDPClientSecret, EnvAdminName,
	EnvAdminPassword, EnvProdDeploy, EnvCustomCAPath,
}

// Env is the setup's input from the environment.
type Env struct {
	AgencyURL       string
	TokenEndpoint   string
	VicalBaseURL    string
	DMVHost         string
	BankHost        string
	IDPURL          string
	IDPClientID     string
	IDPClientSecret string
	AdminName       string
	AdminPassword   string
	ProdDeploy      bool
	CustomCAPath    string
}

// LoadEnv reads Env with get, which is e.g. os.Getenv or viper.GetString.
func LoadEnv(get func(key string) string) Env {
	withDefault := func(key, def string) string {
		if v := get(key); v != "" {
			return v
		}
		return def
	}
	return Env{
		AgencyURL:       get(EnvAgencyURL),
		TokenEndpoint:   get(EnvTokenEndpoint),
		VicalBaseURL:    get(EnvVicalBaseURL),
		DMVHost:         get(EnvDMVHost),
		BankHost:        get(EnvBankHost),
		IDPURL:          get(EnvIDPURL),
		IDPClientID:     get(EnvIDPClientID),
		IDPClientSecret: get(EnvIDPClientSecret),
		AdminName:       withDefault(EnvAdminName, DefaultAdminName),
		AdminPassword:   withDefault(EnvAdminPassword, DefaultAdminPassword),
		ProdDeploy:      get(EnvProdDeploy) == "true",
		CustomCAPath:    get(EnvCustomCAPath),
	}
}

// MissingEnvError lists every required environment variable which isn't set.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "the following required environment variables are missing: " +
		strings.Join(e.Names, ", ")
}

// Missing returns the required variables which are empty, or nil.
func (e Env) Missing() error {
	required := []struct {
		name, value string
	}{
		{EnvAgencyURL, e.AgencyURL},
		{EnvTokenEndpoint, e.TokenEndpoint},
		{EnvDMVHost, e.DMVHost},
		{EnvBankHost, e.BankHost},
		{EnvIDPURL, e.IDPURL},
		{EnvIDPClientID, e.IDPClientID},
		{EnvIDPClientSecret, e.IDPClientSecret},
	}
	var names []string
	for _, r := range required {
		if r.value == "" {
			names = append(names, r.name)
		}
	}
	if len(names) > 0 {
		return &MissingEnvError{Names: names}
	}
	return nil
}

type Cmd struct {
	Env
	Out     string
	Timeout time.Duration
}

func (c Cmd) Validate() error {
	if err := c.Env.Missing(); err != nil {
		return err
	}
	if c.CustomCAPath != "" {
		if _, err := os.Stat(c.CustomCAPath); err != nil {
			return fmt.Errorf("custom CA: %w", err)
		}
	}
	return nil
}

type Result struct {
	DMVAgent     *env.Agent `json:"dmv_agent"`
	BankAgent    *env.Agent `json:"bank_agent"`
	SchemaID     string     `json:"schema_id"`
	DefinitionID string     `json:"definition_id"`
	TemplateID   string     `json:"template_id"`
	RegistryID   string     `json:"registry_id,omitempty"`
	DotEnv       string     `json:"-"`
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	res, err := c.Run(context.Background(), w)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c Cmd) config() env.Config {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}
	return env.Config{
		TokenURL:    c.TokenEndpoint,
		AgencyURL:   c.AgencyURL,
		AdminID:     c.AdminName,
		AdminSecret: c.AdminPassword,
		Poll:        poll.Config{Interval: time.Second, Timeout: 10 * time.Second},
		TLS:         diagency.TLSConfig{CACertPath: c.CustomCAPath},
		Timeout:     timeout,
	}
}

// Run provisions the environment, and writes the .env file if Out is set.
// The .env content is printed to w.
func (c Cmd) Run(ctx context.Context, w io.Writer) (r *Result, err error) {
	defer err2.Handle(&err, "setup")

	try.To(c.Env.Missing())
	if c.CustomCAPath != "" {
		cmds.Fprintln(w, "Using custom CA certificate from:", c.CustomCAPath)
	}

	cmds.Fprintln(w, "Getting an access token...")
	e := try.To1(env.New(ctx, c.config()))

	r = new(Result)
	r.DMVAgent = try.To1(e.EnsureAgent(ctx, env.RoleIssuer, IssuerBody(c.DMVHost), true))
	r.BankAgent = try.To1(e.EnsureAgent(ctx, env.RoleVerifier, VerifierBody(c.BankHost), true))

	cmds.Fprintln(w, "Generating DMV access token...")
	try.To(e.AuthAgent(ctx, env.RoleIssuer))
	cmds.Fprintln(w, "Generating Bank access token...")
	try.To(e.AuthAgent(ctx, env.RoleVerifier))

	cmds.Fprintln(w, "Creating credential schema...")
	schema := try.To1(ensure(ctx, e, env.RoleIssuer, credschema.SchemasPath,
		map[string]string{"name": OIDSchemaName}, SchemaBody()))
	r.SchemaID = schema.ID()
	cmds.Fprintln(w, "Created credential schema with ID:", r.SchemaID)

	cmds.Fprintln(w, "Creating credential definition...")
	def := try.To1(ensure(ctx, e, env.RoleIssuer, credschema.DefinitionsPath,
		map[string]string{"schema.id": r.SchemaID}, DefinitionBody(r.SchemaID)))
	r.DefinitionID = def.ID()
	cmds.Fprintln(w, "Created credential definition with ID:", r.DefinitionID)

	cmds.Fprintln(w, "Creating exchange template...")
	tmpl := try.To1(ensure(ctx, e, env.RoleVerifier, TemplatesPath,
		map[string]string{"name": TemplateName}, TemplateBody()))
	r.TemplateID = tmpl.ID()
	cmds.Fprintln(w, "Created exchange template with ID:", r.TemplateID)

	if c.VicalBaseURL != "" {
		cmds.Fprintln(w, "Adding issuer to the verifiers trusted authorities...")
		reg := trust.NewVicalRegistry(trust.VicalURL(c.VicalBaseURL, r.DMVAgent.ID))
		registry := try.To1(trust.RegisterRegistry(ctx, e, env.RoleAdmin, reg))
		r.RegistryID = registry.ID()
		cmds.Fprintln(w, "Created trusted issuing authority with ID:", r.RegistryID)
	} else {
		glog.Warningf("%s not set, the verifier has no trust registry", EnvVicalBaseURL)
	}

	r.DotEnv = try.To1(RenderDotEnv(NewDotEnv(c.Env, r)))
	if c.Out != "" {
		try.To(os.WriteFile(c.Out, []byte(r.DotEnv), 0o600))
		glog.V(1).Infoln(".env written to", c.Out)
	}
	cmds.Fprintln(w, "\n"+r.DotEnv)
	return r, nil
}

// ensure returns the first resource the filter finds, or creates it.
func ensure(
	ctx context.Context,
	e *env.Environment,
	role, path string,
	filter map[string]string,
	body map[string]any,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "ensure %s", path)

	r = try.To1(e.GetIfResourceExists(ctx, role, path, filter))
	if r != nil {
		glog.V(1).Infof("Using existing %s with id %s", path, r.ID())
		return r, nil
	}
	r = try.To1(e.Post(ctx, role, path, body, diagency.AnySuccess))
	if r.ID() == "" {
		return nil, fmt.Errorf("created resource has no id (status %d)", r.Status)
	}
	return r, nil
}
