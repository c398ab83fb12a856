package protocol

import (
	"context"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
)

//go:generate mockgen -package mock -destination ./mock/mock_agency.go . Agency

// Agency is the agency as the protocol steps see it. The role selects the
// agent (and its token) which makes the call.
type Agency interface {
	Get(ctx context.Context, role, path string, expected int) (*diagency.Resource, error)
	Post(ctx context.Context, role, path string, body any, expected int) (*diagency.Resource, error)
	Patch(ctx context.Context, role, path string, body any, expected int) (*diagency.Resource, error)
	GetIfResourceExists(ctx context.Context, role, path string, filter any) (*diagency.Resource, error)
	WaitForState(ctx context.Context, role, path string, states ...string) (*diagency.Resource, error)
	Agent(role string) (*env.Agent, error)
}

var _ Agency = (*env.Environment)(nil)
