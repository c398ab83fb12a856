package cmds

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/golang/glog"
	"github.com/lainio/err2/try"
)

var ErrInvalid = errors.New("invalid command, check arguments")

// Cmd is the base of the commands which talk to the agency.
type Cmd struct {
	env.Config
}

func (c Cmd) Validate() error {
	if c.AgencyURL == "" {
		return errors.New("agency URL cannot be empty")
	}
	if c.TokenURL == "" {
		return errors.New("token URL cannot be empty")
	}
	if c.AdminID == "" || c.AdminSecret == "" {
		return errors.New("admin credentials cannot be empty")
	}
	if c.Poll.Interval <= 0 || c.Poll.Timeout < c.Poll.Interval {
		return errors.New("poll timeout must be at least one poll interval")
	}
	return nil
}

type Result interface {
	JSON() ([]byte, error)
}

type Command interface {
	Validate() error
	Exec(w io.Writer) (r Result, err error)
}

var timeRE = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// ValidateTime checks that s is a time of the day in HH:MM[:SS] format.
func ValidateTime(s string) error {
	if !timeRE.MatchString(s) {
		return fmt.Errorf("invalid time of day %q, use HH:MM[:SS]", s)
	}
	return nil
}

// Fprintln is fmt.Fprintln but it allows writer to be nil. Note! it throws an
// error.
func Fprintln(w io.Writer, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintln(w, a...))
	}
}

// Fprintf is fmt.Fprintf but it allows writer to be nil. Note! it throws an
// error.
func Fprintf(w io.Writer, format string, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintf(w, format, a...))
	}
}

// Fprint is fmt.Fprint but it allows writer to be nil. Note! it throws an
// error.
func Fprint(w io.Writer, a ...any) {
	if w != nil {
		try.To1(fmt.Fprint(w, a...))
	}
}

// ParseLoggingArgs sets the glog flags from s, e.g. "-logtostderr=true -v=2".
func ParseLoggingArgs(s string) {
	args := make([]string, 1, 12)
	args[0] = os.Args[0]
	args = append(args, strings.Fields(s)...)
	orgArgs := os.Args
	os.Args = args
	flag.Parse()
	os.Args = orgArgs
	glog.V(5).Infoln("logging args:", s)
}
