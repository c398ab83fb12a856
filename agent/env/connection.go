package env

import (
	"context"
	"net/http"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	StateOutboundOffer = "outbound_offer"
	StateConnected     = "connected"
)

// Connection is a DIDComm connection seen by the holder.
type Connection struct {
	ID        string
	LocalDID  string
	RemoteDID string
}

// ConnectHolderTo connects the holder to the role's agent with a direct
// route invitation, and waits until the connection is connected.
func (e *Environment) ConnectHolderTo(ctx context.Context, role string) (c *Connection, err error) {
	defer err2.Handle(&err, "connect holder to %s", role)

	inv := try.To1(e.Post(ctx, role, InvitationsPath, map[string]any{
		"direct_route": true,
		"type":         "connection",
	}, http.StatusOK))

	conn := try.To1(e.Post(ctx, RoleHolder, ConnectionsPath, map[string]any{
		"url": inv.Get("url").String(),
	}, http.StatusOK))
	try.To(ExpectState(conn, StateOutboundOffer))

	conn = try.To1(e.WaitForState(ctx, RoleHolder, ConnectionsPath+"/"+conn.ID(), StateConnected))
	return toConnection(conn)
}

func toConnection(r *diagency.Resource) (c *Connection, err error) {
	defer err2.Handle(&err)

	c = &Connection{
		ID:        r.ID(),
		LocalDID:  r.Get("local.pairwise.did").String(),
		RemoteDID: r.Get("remote.pairwise.did").String(),
	}
	for _, d := range []string{c.LocalDID, c.RemoteDID} {
		if _, err := did.Parse(d); err != nil {
			glog.Warningf("connection %s: pairwise DID %q: %v", c.ID, d, err)
		}
	}
	return c, nil
}

// DeleteAllConnections deletes every connection of the role's agent.
func (e *Environment) DeleteAllConnections(ctx context.Context, role string) (err error) {
	defer err2.Handle(&err, "delete connections of %s", role)

	list := try.To1(e.Get(ctx, role, ConnectionsPath, http.StatusOK))
	for _, conn := range list.Items() {
		try.To1(e.Delete(ctx, role, ConnectionsPath+"/"+conn.ID(), http.StatusOK))
	}
	return nil
}
