/*
Package server implements an in-memory fake of the diagency REST service and
its OAuth2 token endpoint. It's used by the tests and by the fake-agency
command to try the demo flows without the real agency.
*/
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewEcho returns an echo instance which serves the agency.
func NewEcho(a *Agency) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if glog.V(3) {
				glog.Infof("fake agency: %s %s -> %d", c.Request().Method,
					c.Request().URL.Path, c.Response().Status)
			}
			return err
		}
	})
	e.GET("/version", func(c echo.Context) error {
		return c.String(http.StatusOK, "fake-agency")
	})
	a.Register(e)
	return e
}

// StartHTTPServer serves the agency at the address until ctx is done. The
// base URL is the one the clients use to reach us, it's used in the
// invitation URLs.
func StartHTTPServer(ctx context.Context, addr, baseURL string, a *Agency) error {
	a.SetBaseURL(baseURL)
	e := NewEcho(a)

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutCtx); err != nil {
			glog.Warningln("fake agency shutdown:", err)
		}
	}()

	glog.V(1).Infof("fake agency on %s, API: %s/%s", addr, baseURL, PathPrefix)
	err := e.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
