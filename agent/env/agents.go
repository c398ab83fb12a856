package env

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	didMethodWeb  = "did:web"
	didMethodIndy = "did:indy"

	issuerName     = "issuer"
	indyIssuerName = "indyIssuer"
)

// SetupAgentsAndTokens creates or reuses the agents of the demo and gets a
// token for each of them. The primary issuer is always under the issuer
// role. The additional issuers are named <issuer>_1, <issuer>_2, ... and
// they're under the roles of the same names. The holders are holder,
// holder1, ...
func (e *Environment) SetupAgentsAndTokens(
	ctx context.Context,
	hyperledger bool,
	additionalIssuers, holders int,
) (err error) {
	defer err2.Handle(&err, "setup agents")

	e.hyperledger = hyperledger
	try.To(os.MkdirAll(filepath.Dir(e.secrets.Filename()), 0o755))
	try.To(e.secrets.Load())

	name := issuerName
	if hyperledger {
		name = indyIssuerName
	}
	try.To(e.createAndAuthAgent(ctx, RoleIssuer, AgentTypeIssuer, name))
	for i := 1; i <= additionalIssuers; i++ {
		n := fmt.Sprintf("%s_%d", name, i)
		try.To(e.createAndAuthAgent(ctx, n, AgentTypeIssuer, n))
	}

	try.To(e.createAndAuthAgent(ctx, RoleVerifier, AgentTypeVerifier, RoleVerifier))

	for i := 0; i < holders; i++ {
		key, username := HolderKey(i), HolderUser(i)
		e.agents[key] = try.To1(e.CreateAgent(ctx, AgentTypeHolder, e.HolderID(username), key))
		e.tokens[key] = try.To1(e.ts.HolderAccessToken(ctx, username, e.cfg.HolderPassword))
	}
	return nil
}

func (e *Environment) createAndAuthAgent(ctx context.Context, role, agentType, name string) (err error) {
	defer err2.Handle(&err)

	e.agents[role] = try.To1(e.CreateAgent(ctx, agentType, "", name))
	return e.AuthAgent(ctx, role)
}

// AuthAgent gets the client_credentials token of the role's agent.
func (e *Environment) AuthAgent(ctx context.Context, role string) (err error) {
	defer err2.Handle(&err)

	a := try.To1(e.Agent(role))
	e.tokens[role] = try.To1(e.ts.AccessToken(ctx, a.ID, a.ClientSecret))
	return nil
}

// CreateAgent returns the agent with the name if it exists already. Issuers
// and verifiers get their client secret from the secrets file then.
// Otherwise a new agent is created, and its secret is added to the file.
func (e *Environment) CreateAgent(ctx context.Context, agentType, id, name string) (a *Agent, err error) {
	defer err2.Handle(&err, "create agent %s", name)

	if name == "" {
		name = agentType
	}
	existing := try.To1(e.lookupAgent(ctx, name, false))
	if existing != nil {
		if existing.AgentType == AgentTypeIssuer || existing.AgentType == AgentTypeVerifier {
			sec, ok := e.secrets.Secret(existing.ID)
			if !ok {
				return nil, fmt.Errorf("%w for %s in %s", ErrNoSecret, existing.ID,
					e.secrets.Filename())
			}
			existing.ClientSecret = sec
		}
		return existing, nil
	}

	body := map[string]any{
		"id":         id,
		"name":       name,
		"agent_type": agentType,
	}
	if e.hyperledger {
		body["did_method"] = didMethodIndy
		body["is_did_on_ledger"] = true
	} else {
		body["did_method"] = didMethodWeb
		body["is_did_on_ledger"] = false
	}
	a = try.To1(e.postAgent(ctx, body, false, http.StatusOK))
	if a.ClientSecret != "" {
		try.To(e.secrets.Add(a.ID, a.ClientSecret))
	}
	return a, nil
}

// EnsureAgent puts the agent with body["name"] under the role. The agent is
// created with the body if it doesn't exist. When includePass is set the
// agency returns the client secret of an existing agent too.
func (e *Environment) EnsureAgent(
	ctx context.Context,
	role string,
	body map[string]any,
	includePass bool,
) (a *Agent, err error) {
	name, _ := body["name"].(string)
	defer err2.Handle(&err, "ensure agent %s", name)

	a = try.To1(e.lookupAgent(ctx, name, includePass))
	if a == nil {
		glog.V(1).Infoln("Creating the agent:", name)
		a = try.To1(e.postAgent(ctx, body, includePass, diagency.AnySuccess))
	}
	e.agents[role] = a
	return a, nil
}

func (e *Environment) lookupAgent(ctx context.Context, name string, includePass bool) (a *Agent, err error) {
	defer err2.Handle(&err)

	meta := try.To1(e.GetIfResourceExists(ctx, RoleAdmin, AgentsPath,
		map[string]string{"name": name}))
	if meta == nil {
		return nil, nil
	}
	p := AgentsPath + "/" + meta.ID()
	if includePass {
		p = diagency.WithQuery(p, "includepass", "true")
	}
	r, err := e.Get(ctx, RoleAdmin, p, http.StatusOK)
	if diagency.IsStatusError(err) {
		glog.V(3).Infof("agent %s lookup failed, creating it: %v", name, err)
		return nil, nil
	}
	try.To(err)
	return toAgent(r)
}

func (e *Environment) postAgent(ctx context.Context, body map[string]any, includePass bool, expected int) (a *Agent, err error) {
	defer err2.Handle(&err)

	p := AgentsPath
	if includePass {
		p = diagency.WithQuery(p, "includepass", "true")
	}
	r := try.To1(e.Post(ctx, RoleAdmin, p, body, expected))
	return toAgent(r)
}

func toAgent(r *diagency.Resource) (a *Agent, err error) {
	defer err2.Handle(&err, "agent resource")

	a = new(Agent)
	try.To(r.Decode(a))
	a.Raw = r
	return a, nil
}

// DeleteAgents deletes the agents of the environment. If there are none,
// every agent of the agency is deleted.
func (e *Environment) DeleteAgents(ctx context.Context) (err error) {
	defer err2.Handle(&err, "delete agents")

	ids := make([]string, 0, len(e.agents))
	if len(e.agents) == 0 {
		list := try.To1(e.Get(ctx, RoleAdmin, AgentsPath, http.StatusOK))
		for _, item := range list.Items() {
			ids = append(ids, item.ID())
		}
	} else {
		seen := make(map[string]bool)
		for _, role := range e.Roles() {
			id := e.agents[role].ID
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	for _, id := range ids {
		try.To(e.DeleteAgent(ctx, id))
	}
	e.agents = make(map[string]*Agent)
	return nil
}

func (e *Environment) DeleteAgent(ctx context.Context, id string) (err error) {
	defer err2.Handle(&err)

	try.To1(e.Delete(ctx, RoleAdmin, AgentsPath+"/"+id, http.StatusOK))
	glog.V(1).Infoln("agent deleted:", id)
	return nil
}

// Cleanup deletes the agents and removes the build directory with the
// secrets file.
func (e *Environment) Cleanup(ctx context.Context) (err error) {
	defer err2.Handle(&err, "cleanup")

	try.To(e.DeleteAgents(ctx))
	try.To(e.secrets.Reset())
	return nil
}
