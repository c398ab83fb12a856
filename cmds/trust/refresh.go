// Package trust has the command which keeps the verifier's remote trust
// registries fresh by fetching them on a schedule.
package trust

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/findy-network/diagency-demo/protocol/trust"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type RefreshCmd struct {
	cmds.Cmd

	// RegistryIDs are fetched, or every registry of the agency if empty.
	RegistryIDs []string
	Every       time.Duration
	// At is the time of the day for the daily fetch, HH:MM[:SS]. It
	// overrides Every.
	At    string
	Times int
}

func (c RefreshCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Times < 0 {
		return errors.New("times cannot be negative")
	}
	if c.At != "" {
		return cmds.ValidateTime(c.At)
	}
	if c.Every <= 0 {
		return errors.New("refresh interval must be positive")
	}
	return nil
}

type RefreshResult struct {
	Runs    int            `json:"runs"`
	Fetches map[string]int `json:"fetches"`
}

func (r RefreshResult) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func (c RefreshCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	res, err := c.Run(context.Background(), w)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Run fetches the registries on the schedule until Times runs are done or
// the ctx is canceled. Times zero means no limit. Runs never overlap, and
// the first failing run stops the schedule.
func (c RefreshCmd) Run(ctx context.Context, w io.Writer) (r *RefreshResult, err error) {
	defer err2.Handle(&err, "trust refresh")

	e := try.To1(env.New(ctx, c.Config))
	r = &RefreshResult{Fetches: make(map[string]int)}

	var (
		mu      sync.Mutex
		done    = make(chan struct{})
		once    sync.Once
		lastErr error
	)
	finish := func(err error) {
		once.Do(func() {
			lastErr = err
			close(done)
		})
	}
	job := func() {
		mu.Lock()
		defer mu.Unlock()

		if err := c.refresh(ctx, e, w, r); err != nil {
			finish(err)
			return
		}
		r.Runs++
		if c.Times > 0 && r.Runs >= c.Times {
			finish(nil)
		}
	}

	s := gocron.NewScheduler(time.Now().Location())
	if c.At != "" {
		s.Every(1).Day().At(c.At)
	} else {
		s.Every(c.Every)
	}
	s.SingletonMode()
	if c.Times > 0 {
		s.LimitRunsTo(c.Times)
	}
	try.To1(s.Do(job))
	s.StartAsync()

	select {
	case <-done:
	case <-ctx.Done():
		glog.V(1).Infoln("trust refresh canceled:", ctx.Err())
		finish(nil)
	}
	// no new runs after Stop, a running one still holds mu
	s.Stop()
	mu.Lock()
	defer mu.Unlock()
	try.To(lastErr)
	return r, nil
}

func (c RefreshCmd) refresh(ctx context.Context, e *env.Environment, w io.Writer, r *RefreshResult) (err error) {
	defer err2.Handle(&err)

	ids := c.RegistryIDs
	if len(ids) == 0 {
		list := try.To1(e.Get(ctx, env.RoleAdmin, trust.RegistriesPath, http.StatusOK))
		for _, item := range list.Items() {
			ids = append(ids, item.ID())
		}
	}
	for _, id := range ids {
		try.To1(trust.FetchRegistry(ctx, e, env.RoleAdmin, id))
		r.Fetches[id]++
		cmds.Fprintln(w, "Fetched trust registry", id)
	}
	return nil
}
