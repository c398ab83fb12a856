/*
Package env implements the demo environment: a session against the agency
which holds the tokens and the agents of the roles (issuer, verifier,
holders) for the life time of the process. The steps of the demo take the
Environment as an argument.
*/
package env

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/poll"
	"github.com/findy-network/diagency-demo/agent/secrets"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	RoleAdmin    = "admin"
	RoleIssuer   = "issuer"
	RoleVerifier = "verifier"
	RoleHolder   = "holder"

	AgentTypeIssuer   = "issuer"
	AgentTypeVerifier = "verifier"
	AgentTypeHolder   = "holder"
)

const (
	AgentsPath      = "v1.0/diagency/agents"
	InvitationsPath = "v1.0/diagency/invitations"
	ConnectionsPath = "v1.0/diagency/connections"
)

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrUnexpectedState = errors.New("unexpected state")
	ErrNoSecret        = errors.New("no cached client secret")
)

// Agent is an agent of the agency as we see it.
type Agent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AgentType    string `json:"agent_type"`
	DIDMethod    string `json:"did_method"`
	OnLedger     bool   `json:"is_did_on_ledger"`
	DID          string `json:"did"`
	ClientSecret string `json:"client_secret"`

	// Raw is the whole agent resource as the agency returned it.
	Raw *diagency.Resource `json:"-"`
}

type Environment struct {
	cfg    Config
	client *diagency.Client
	ts     *diagency.TokenSource

	secrets     *secrets.Store
	hyperledger bool

	agents map[string]*Agent
	tokens map[string]string
}

// New builds the environment and gets the admin token.
func New(ctx context.Context, cfg Config) (e *Environment, err error) {
	defer err2.Handle(&err, "environment")

	hc := try.To1(diagency.NewHTTPClient(cfg.TLS))
	e = &Environment{
		cfg:     cfg,
		client:  diagency.New(cfg.AgencyURL, hc, cfg.Timeout),
		ts:      diagency.NewTokenSource(cfg.TokenURL, hc),
		secrets: secrets.New(cfg.SecretsFile),
		agents:  make(map[string]*Agent),
		tokens:  make(map[string]string),
	}
	e.tokens[RoleAdmin] = try.To1(e.ts.AccessToken(ctx, cfg.AdminID, cfg.AdminSecret))
	return e, nil
}

func (e *Environment) Config() Config {
	return e.cfg
}

func (e *Environment) Client() *diagency.Client {
	return e.client
}

func (e *Environment) Secrets() *secrets.Store {
	return e.secrets
}

// Token returns the bearer token of the role.
func (e *Environment) Token(role string) (string, error) {
	t, ok := e.tokens[role]
	if !ok {
		return "", fmt.Errorf("token: %w: %s", ErrUnknownRole, role)
	}
	return t, nil
}

// Agent returns the agent of the role.
func (e *Environment) Agent(role string) (*Agent, error) {
	a, ok := e.agents[role]
	if !ok {
		return nil, fmt.Errorf("agent: %w: %s", ErrUnknownRole, role)
	}
	return a, nil
}

// Roles returns the roles which have an agent, sorted.
func (e *Environment) Roles() []string {
	roles := make([]string, 0, len(e.agents))
	for r := range e.agents {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// HolderID returns the agent id of the holder with the user name.
func (e *Environment) HolderID(username string) string {
	return strings.Replace(e.cfg.HolderID, firstHolderUser, username, 1)
}

// HolderKey returns the role name of the ith holder: holder, holder1, ...
func HolderKey(i int) string {
	if i == 0 {
		return RoleHolder
	}
	return fmt.Sprintf("%s%d", RoleHolder, i)
}

// HolderUser returns the user name of the ith holder: user_1, user_2, ...
func HolderUser(i int) string {
	return fmt.Sprintf("user_%d", i+1)
}

func (e *Environment) Get(ctx context.Context, role, path string, expected int) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)
	return e.client.Get(ctx, try.To1(e.Token(role)), path, expected)
}

func (e *Environment) Post(ctx context.Context, role, path string, body any, expected int) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)
	return e.client.Post(ctx, try.To1(e.Token(role)), path, body, expected)
}

func (e *Environment) Put(ctx context.Context, role, path string, body any, expected int) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)
	return e.client.Put(ctx, try.To1(e.Token(role)), path, body, expected)
}

func (e *Environment) Patch(ctx context.Context, role, path string, body any, expected int) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)
	return e.client.Patch(ctx, try.To1(e.Token(role)), path, body, expected)
}

func (e *Environment) Delete(ctx context.Context, role, path string, expected int) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)
	return e.client.Delete(ctx, try.To1(e.Token(role)), path, expected)
}

// GetIfResourceExists returns the first resource the filter finds, or nil
// if there is none. Failing lookups are seen as missing resources, only the
// transport errors are returned.
func (e *Environment) GetIfResourceExists(
	ctx context.Context,
	role, path string,
	filter any,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "lookup %s", path)

	p := try.To1(diagency.WithFilter(path, filter))
	list, err := e.Get(ctx, role, p, http.StatusOK)
	if diagency.IsStatusError(err) {
		glog.V(3).Infof("lookup %s failed, handled as missing: %v", p, err)
		return nil, nil
	}
	try.To(err)

	if list.Count() == 0 {
		return nil, nil
	}
	items := list.Items()
	if len(items) == 0 {
		return nil, nil
	}
	glog.V(1).Infof("Getting existing resource: %s", items[0])
	return items[0], nil
}

// WaitForState polls the resource until its state is one of the states. The
// last response is returned. The returned error wraps poll.ErrTimeout when
// the resource didn't reach the states in time.
func (e *Environment) WaitForState(
	ctx context.Context,
	role, path string,
	states ...string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "wait %s for %v", path, states)

	var last *diagency.Resource
	perr := poll.Until(ctx, e.cfg.Poll, func(ctx context.Context) (bool, error) {
		res, err := e.Get(ctx, role, path, http.StatusOK)
		if err != nil {
			return false, err
		}
		last = res
		glog.V(3).Infof("%s state: %s", path, res.State())
		return inStates(res.State(), states), nil
	})
	if errors.Is(perr, poll.ErrTimeout) {
		lastState := ""
		if last != nil {
			lastState = last.State()
		}
		return last, fmt.Errorf("%w, last state %q", perr, lastState)
	}
	try.To(perr)
	return last, nil
}

func inStates(s string, states []string) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}

// ExpectState returns an error wrapping ErrUnexpectedState if the resource
// is not in the state.
func ExpectState(r *diagency.Resource, state string) error {
	if r.State() != state {
		return fmt.Errorf("%w: %q, want %q (id: %s)",
			ErrUnexpectedState, r.State(), state, r.ID())
	}
	return nil
}
