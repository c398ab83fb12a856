package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	PathPrefix = "diagency"
	TokenPath  = "/oauth2/token"

	HolderClientID = "onpremise_vcholders"
	HolderPassword = "secret"

	// Certificate is the mso_mdoc signing certificate of every issuer and
	// credential definition.
	Certificate = "-----BEGIN CERTIFICATE-----\nMIIBfakeMDOCissuer\n-----END CERTIFICATE-----"
)

const principalKey = "principal"

// Agency is an in-memory stand-in of the diagency REST service. It keeps
// just enough state to drive the demo flows: agents with client secrets,
// DIDComm connections which connect on the first look, credentials which are
// stored on accept, and verifications which finish on the first look after
// the proof is shared.
type Agency struct {
	AdminID     string
	AdminSecret string

	// VerificationResult is the state a shared proof ends to.
	VerificationResult string

	mu          sync.Mutex
	baseURL     string
	tokens      map[string]string // token -> principal
	agents      *store
	invitations *store
	connections *store
	credentials *store
	verifs      *store
	schemas     *store
	definitions *store
	proofSchema *store
	authorities *store
	templates   *store
	registries  *store
	fetches     map[string]int
}

func NewAgency(adminID, adminSecret string) *Agency {
	return &Agency{
		AdminID:            adminID,
		AdminSecret:        adminSecret,
		VerificationResult: "passed",
		tokens:             make(map[string]string),
		agents:             newStore(),
		invitations:        newStore(),
		connections:        newStore(),
		credentials:        newStore(),
		verifs:             newStore(),
		schemas:            newStore(),
		definitions:        newStore(),
		proofSchema:        newStore(),
		authorities:        newStore(),
		templates:          newStore(),
		registries:         newStore(),
		fetches:            make(map[string]int),
	}
}

// SetBaseURL sets the URL the invitations point to.
func (a *Agency) SetBaseURL(u string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseURL = strings.TrimSuffix(u, "/")
}

// Count returns the count of the stored resources of the kind: agents,
// connections, credentials, verifications, credential_schemas,
// credential_definitions, proof_schemas, trusted_issuing_authorities,
// exchange_templates or registries.
func (a *Agency) Count(kind string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s := a.storeOf(kind); s != nil {
		return s.len()
	}
	return 0
}

// Fetches returns how many times the registry is fetched.
func (a *Agency) Fetches(registryID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetches[registryID]
}

// Resource returns a copy of the stored resource or nil.
func (a *Agency) Resource(kind, id string) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.storeOf(kind)
	if s == nil {
		return nil
	}
	o, ok := s.get(id)
	if !ok {
		return nil
	}
	return clone(o)
}

func (a *Agency) storeOf(kind string) *store {
	switch kind {
	case "agents":
		return a.agents
	case "connections":
		return a.connections
	case "credentials":
		return a.credentials
	case "verifications":
		return a.verifs
	case "credential_schemas":
		return a.schemas
	case "credential_definitions":
		return a.definitions
	case "proof_schemas":
		return a.proofSchema
	case "trusted_issuing_authorities":
		return a.authorities
	case "exchange_templates":
		return a.templates
	case "registries":
		return a.registries
	}
	return nil
}

// Register adds the routes of the agency and its token endpoint to e.
func (a *Agency) Register(e *echo.Echo) {
	e.POST(TokenPath, a.postToken)

	api := e.Group("/"+PathPrefix, a.authenticate)

	v1 := api.Group("/v1.0/diagency")
	v1.GET("/agents", a.listAgents)
	v1.POST("/agents", a.postAgent)
	v1.GET("/agents/:id", a.getAgent)
	v1.DELETE("/agents/:id", a.deleteAgent)

	v1.POST("/invitations", a.postInvitation)
	v1.GET("/connections", a.list(a.connections, true))
	v1.POST("/connections", a.postConnection)
	v1.GET("/connections/:id", a.getConnection)
	v1.DELETE("/connections/:id", a.deleteOwned(a.connections))

	v1.POST("/credentials", a.postCredential)
	v1.GET("/credentials/:id", a.get(a.credentials))
	v1.PATCH("/credentials/:id", a.patchCredential)

	v1.POST("/verifications", a.postVerification)
	v1.GET("/verifications/:id", a.getVerification)
	v1.PATCH("/verifications/:id", a.patchVerification)

	v1.POST("/proof_schemas", a.create(a.proofSchema, http.StatusOK, nil))
	v1.POST("/trusted_issuing_authorities",
		a.create(a.authorities, http.StatusCreated, nil))

	v1.GET("/trust/remote_providers/registries", a.list(a.registries, false))
	v1.POST("/trust/remote_providers/registries",
		a.create(a.registries, http.StatusCreated, nil))
	v1.POST("/trust/remote_providers/registries/:id/fetch", a.fetchRegistry)

	v2 := api.Group("/v2.0/diagency")
	v2.GET("/credential_schemas", a.list(a.schemas, false))
	v2.POST("/credential_schemas", a.create(a.schemas, http.StatusCreated, nil))
	v2.GET("/credential_definitions", a.list(a.definitions, false))
	v2.POST("/credential_definitions",
		a.create(a.definitions, http.StatusCreated, func(o object) {
			o["schema"] = object{"id": o["schema_id"]}
			o["mso_mdoc"] = object{"certificate": Certificate}
		}))

	api.GET("/v1.0/oidvc/vp/exchange_templates", a.list(a.templates, false))
	api.POST("/v1.0/oidvc/vp/exchange_templates",
		a.create(a.templates, http.StatusCreated, nil))
}

func (a *Agency) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		principal, ok := a.tokens[token]
		a.mu.Unlock()
		if !ok {
			return c.JSON(http.StatusUnauthorized, object{"message": "invalid token"})
		}
		c.Set(principalKey, principal)
		return next(c)
	}
}

func principalOf(c echo.Context) string {
	p, _ := c.Get(principalKey).(string)
	return p
}

func (a *Agency) postToken(c echo.Context) error {
	grant := c.FormValue("grant_type")
	principal := ""

	a.mu.Lock()
	defer a.mu.Unlock()

	switch grant {
	case "client_credentials":
		id, secret := c.FormValue("client_id"), c.FormValue("client_secret")
		if id == a.AdminID && secret == a.AdminSecret {
			principal = id
			break
		}
		if agent, ok := a.agents.get(id); ok && secret != "" &&
			agent["client_secret"] == secret {
			principal = id
		}
	case "password":
		username := c.FormValue("username")
		if c.FormValue("client_id") == HolderClientID &&
			c.FormValue("password") == HolderPassword &&
			strings.HasPrefix(username, "user_") {
			principal = HolderID(username)
		}
	}
	if principal == "" {
		return c.JSON(http.StatusUnauthorized, object{
			"error":             "invalid_client",
			"error_description": "authentication failed",
		})
	}
	token := uuid.New().String()
	a.tokens[token] = principal
	glog.V(5).Infof("token for %s", principal)
	return c.JSON(http.StatusOK, object{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   7200,
	})
}

// HolderID returns the agent id of the user's holder agent.
func HolderID(username string) string {
	return fmt.Sprintf("cn=%s,ou=users,dc=ibm,dc=com", username)
}

func readBody(c echo.Context) (object, error) {
	o := make(object)
	err := json.NewDecoder(c.Request().Body).Decode(&o)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return o, nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, object{"message": err.Error()})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, object{"message": "not found"})
}

func newPairwiseDID() string {
	return "did:peer:2." + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func (a *Agency) list(s *store, owned bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := parseFilter(c.QueryParam("filter"))
		if err != nil {
			return badRequest(c, err)
		}
		owner := ""
		if owned {
			owner = principalOf(c)
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return c.JSON(http.StatusOK, envelope(s.list(owner, filter)))
	}
}

func (a *Agency) get(s *store) echo.HandlerFunc {
	return func(c echo.Context) error {
		a.mu.Lock()
		defer a.mu.Unlock()
		o, ok := s.get(c.Param("id"))
		if !ok {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, o)
	}
}

func (a *Agency) create(s *store, status int, decorate func(o object)) echo.HandlerFunc {
	return func(c echo.Context) error {
		o, err := readBody(c)
		if err != nil {
			return badRequest(c, err)
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		o["id"] = uuid.New().String()
		if decorate != nil {
			decorate(o)
		}
		s.put(principalOf(c), o)
		return c.JSON(status, o)
	}
}

func (a *Agency) deleteOwned(s *store) echo.HandlerFunc {
	return func(c echo.Context) error {
		a.mu.Lock()
		defer a.mu.Unlock()
		id := c.Param("id")
		if s.owner(id) != principalOf(c) || !s.del(id) {
			return notFound(c)
		}
		return c.JSON(http.StatusOK, object{"id": id})
	}
}

func (a *Agency) listAgents(c echo.Context) error {
	filter, err := parseFilter(c.QueryParam("filter"))
	if err != nil {
		return badRequest(c, err)
	}
	includePass := c.QueryParam("includepass") == "true"

	a.mu.Lock()
	defer a.mu.Unlock()
	items := a.agents.list("", filter)
	res := make([]object, 0, len(items))
	for _, o := range items {
		res = append(res, agentView(o, includePass))
	}
	return c.JSON(http.StatusOK, envelope(res))
}

func agentView(o object, includePass bool) object {
	v := clone(o)
	if !includePass {
		delete(v, "client_secret")
	}
	return v
}

func (a *Agency) getAgent(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.agents.get(c.Param("id"))
	if !ok {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, agentView(o, c.QueryParam("includepass") == "true"))
}

func (a *Agency) postAgent(c echo.Context) error {
	o, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	if principalOf(c) != a.AdminID {
		return c.JSON(http.StatusForbidden, object{"message": "admin only"})
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id, _ := o["id"].(string)
	if id == "" {
		id = uuid.New().String()
	}
	if _, exists := a.agents.get(id); exists {
		return c.JSON(http.StatusConflict, object{"message": "agent exists"})
	}
	o["id"] = id
	method, _ := o["did_method"].(string)
	if method == "" {
		method = "did:web"
	}
	o["did"] = method + ":agency.example:" + strings.ReplaceAll(uuid.New().String(), "-", "")
	switch o["agent_type"] {
	case "issuer":
		o["client_secret"] = uuid.New().String()
		o["mso_mdoc"] = object{"certificate": Certificate}
	case "verifier":
		o["client_secret"] = uuid.New().String()
	}
	a.agents.put(principalOf(c), o)
	return c.JSON(http.StatusOK, o)
}

func (a *Agency) deleteAgent(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := c.Param("id")
	if !a.agents.del(id) {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, object{"id": id})
}

func (a *Agency) postInvitation(c echo.Context) error {
	o, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id := uuid.New().String()
	o["id"] = id
	o["url"] = a.baseURL + "/invitations/" + id
	a.invitations.put(principalOf(c), o)
	return c.JSON(http.StatusOK, o)
}

func (a *Agency) postConnection(c echo.Context) error {
	o, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	invURL, _ := o["url"].(string)

	a.mu.Lock()
	defer a.mu.Unlock()

	invID := path.Base(invURL)
	if _, ok := a.invitations.get(invID); !ok {
		return badRequest(c, fmt.Errorf("unknown invitation %q", invURL))
	}
	inviter := a.invitations.owner(invID)
	invitee := principalOf(c)
	inviterDID, inviteeDID := newPairwiseDID(), newPairwiseDID()

	mine := object{
		"id":     uuid.New().String(),
		"state":  "outbound_offer",
		"local":  object{"pairwise": object{"did": inviteeDID}},
		"remote": object{"pairwise": object{"did": inviterDID}},
	}
	theirs := object{
		"id":     uuid.New().String(),
		"state":  "connected",
		"local":  object{"pairwise": object{"did": inviterDID}},
		"remote": object{"pairwise": object{"did": inviteeDID}},
	}
	a.connections.put(invitee, mine)
	a.connections.put(inviter, theirs)
	return c.JSON(http.StatusOK, mine)
}

func (a *Agency) getConnection(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.connections.get(c.Param("id"))
	if !ok {
		return notFound(c)
	}
	resp := clone(o)
	// the remote side answers between two looks
	o["state"] = "connected"
	return c.JSON(http.StatusOK, resp)
}

func (a *Agency) postCredential(c echo.Context) error {
	o, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.definitions.get(fmt.Sprint(o["credential_definition_id"])); !ok {
		return badRequest(c, errors.New("unknown credential definition"))
	}
	o["id"] = uuid.New().String()
	o["state"] = "outbound_offer"
	a.credentials.put(principalOf(c), o)
	return c.JSON(http.StatusOK, o)
}

func (a *Agency) patchCredential(c echo.Context) error {
	p, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.credentials.get(c.Param("id"))
	if !ok {
		return notFound(c)
	}
	switch p["state"] {
	case "accepted":
		if o["state"] != "outbound_offer" {
			return badRequest(c, fmt.Errorf("cannot accept in state %v", o["state"]))
		}
		o["state"] = "stored"
	case "rejected":
		o["state"] = "rejected"
	default:
		return badRequest(c, fmt.Errorf("unsupported state %v", p["state"]))
	}
	return c.JSON(http.StatusOK, o)
}

func (a *Agency) postVerification(c echo.Context) error {
	o, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	o["id"] = uuid.New().String()
	o["state"] = "outbound_proof_request"
	a.verifs.put(principalOf(c), o)
	return c.JSON(http.StatusOK, o)
}

func (a *Agency) getVerification(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.verifs.get(c.Param("id"))
	if !ok {
		return notFound(c)
	}
	resp := clone(o)
	if o["state"] == "proof_shared" {
		o["state"] = a.VerificationResult
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *Agency) patchVerification(c echo.Context) error {
	p, err := readBody(c)
	if err != nil {
		return badRequest(c, err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	o, ok := a.verifs.get(c.Param("id"))
	if !ok {
		return notFound(c)
	}
	switch p["state"] {
	case "proof_generated":
		o["state"] = "proof_generated"
		o["info"] = object{"attributes": disclosedFields(o)}
	case "proof_shared":
		if o["state"] != "proof_generated" {
			return badRequest(c, fmt.Errorf("cannot share in state %v", o["state"]))
		}
		o["state"] = "proof_shared"
	default:
		return badRequest(c, fmt.Errorf("unsupported state %v", p["state"]))
	}
	return c.JSON(http.StatusOK, o)
}

func disclosedFields(o object) []any {
	paths := make([]any, 0)
	descs, _ := lookup(o, "proof_request.mso_mdoc.presentation_definition.input_descriptors")
	list, _ := descs.([]any)
	for _, d := range list {
		do, ok := d.(object)
		if !ok {
			continue
		}
		fields, _ := lookup(do, "constraints.fields")
		fl, _ := fields.([]any)
		for _, f := range fl {
			if fo, ok := f.(object); ok {
				paths = append(paths, fo["path"])
			}
		}
	}
	return paths
}

func (a *Agency) fetchRegistry(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := c.Param("id")
	o, ok := a.registries.get(id)
	if !ok {
		return notFound(c)
	}
	a.fetches[id]++
	resp := clone(o)
	resp["fetched"] = a.fetches[id]
	return c.JSON(http.StatusOK, resp)
}
