// Package agent has the maintenance commands of the agency's agents.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type ListCmd struct {
	cmds.Cmd
}

type ListResult struct {
	Agents []*env.Agent `json:"agents"`
	// Cached are the agents whose client secret is in the secrets file.
	Cached []string     `json:"cached,omitempty"`
	// Stale are the secrets file entries of agents the agency doesn't have.
	Stale  []string     `json:"stale,omitempty"`
}

func (r ListResult) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func (c ListCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "list agents")

	ctx := context.Background()
	e := try.To1(env.New(ctx, c.Config))
	sec := e.Secrets()
	try.To(sec.Load())
	list := try.To1(e.Get(ctx, env.RoleAdmin, env.AgentsPath, http.StatusOK))

	res := &ListResult{Agents: make([]*env.Agent, 0, list.Count())}
	found := make(map[string]bool, list.Count())
	for _, item := range list.Items() {
		a := new(env.Agent)
		try.To(item.Decode(a))
		res.Agents = append(res.Agents, a)
		found[a.ID] = true
		cached := "-"
		if sec.Exist(a.ID) {
			cached = "cached"
			res.Cached = append(res.Cached, a.ID)
		}
		cmds.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.AgentType, a.Name, a.DID, cached)
	}
	sec.EnumValues(func(id, _ string) bool {
		if !found[id] {
			res.Stale = append(res.Stale, id)
		}
		return true
	})
	sort.Strings(res.Stale)
	for _, id := range res.Stale {
		cmds.Fprintln(w, "Stale secret of a deleted agent", id)
	}
	return res, nil
}

type DeleteCmd struct {
	cmds.Cmd
	IDs []string
	All bool
}

func (c DeleteCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.All == (len(c.IDs) > 0) {
		return errors.New("give agent ids or --all, not both")
	}
	return nil
}

type DeleteResult struct {
	Deleted []string `json:"deleted,omitempty"`
	All     bool     `json:"all,omitempty"`
}

func (r DeleteResult) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func (c DeleteCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "delete agents")

	ctx := context.Background()
	e := try.To1(env.New(ctx, c.Config))
	if c.All {
		try.To(e.Cleanup(ctx))
		cmds.Fprintln(w, "Deleted all agents and associated data.")
		return &DeleteResult{All: true}, nil
	}
	res := new(DeleteResult)
	for _, id := range c.IDs {
		try.To(e.DeleteAgent(ctx, id))
		res.Deleted = append(res.Deleted, id)
		cmds.Fprintln(w, "Deleted agent", id)
	}
	return res, nil
}
