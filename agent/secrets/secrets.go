/*
Package secrets implements the local agent secrets file. The file is an append
only text file where each line maps an agent ID to its client secret:

	<agent_id> | <client_secret>

The agency returns a client secret only when an agent is created. The file
lets repeated runs reuse the agents created earlier instead of creating them
again.
*/
package secrets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const separator = " | "

type (
	agentID = string
	secret  = string
)

type Store struct {
	filename string
	r        map[agentID]secret
	l        sync.Mutex
}

// New returns a store for the file. Nothing is read before Load.
func New(filename string) *Store {
	return &Store{
		filename: filename,
		r:        make(map[agentID]secret),
	}
}

func (s *Store) Filename() string {
	return s.filename
}

// Load reads all the secrets from the file. A missing file is not an error,
// it only means that there are no agents created yet.
func (s *Store) Load() (err error) {
	defer err2.Handle(&err, "read agent secrets file %s", s.filename)

	s.l.Lock()
	defer s.l.Unlock()

	s.r = make(map[agentID]secret)

	f, err := os.Open(s.filename)
	if os.IsNotExist(err) {
		glog.V(3).Infoln("no agent secrets file:", s.filename)
		return nil
	}
	try.To(err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNro := 0
	for scanner.Scan() {
		lineNro++
		line := strings.TrimRight(scanner.Text(), " \r\n")
		if line == "" {
			continue
		}
		id, sec, found := strings.Cut(line, separator)
		if !found || id == "" {
			return fmt.Errorf("line %d: malformed secret entry", lineNro)
		}
		s.r[id] = sec
	}
	try.To(scanner.Err())

	glog.V(3).Infof("loaded %d agent secrets from %s", len(s.r), s.filename)
	return nil
}

// Add appends the secret of the agent to the file and to the memory.
func (s *Store) Add(id, sec string) (err error) {
	defer err2.Handle(&err, "write agent secrets file %s", s.filename)

	s.l.Lock()
	defer s.l.Unlock()

	try.To(os.MkdirAll(filepath.Dir(s.filename), 0o755))
	f := try.To1(os.OpenFile(s.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600))
	defer f.Close()

	try.To1(fmt.Fprintf(f, "%s%s%s\n", id, separator, sec))
	s.r[id] = sec

	glog.V(3).Infoln("agent secret stored:", id)
	return nil
}

func (s *Store) Secret(id string) (sec string, ok bool) {
	s.l.Lock()
	defer s.l.Unlock()
	sec, ok = s.r[id]
	return sec, ok
}

func (s *Store) Exist(id string) bool {
	_, ok := s.Secret(id)
	return ok
}

func (s *Store) Len() int {
	s.l.Lock()
	defer s.l.Unlock()
	return len(s.r)
}

func (s *Store) EnumValues(handler func(id, sec string) bool) {
	s.l.Lock()
	defer s.l.Unlock()
	for k, v := range s.r {
		if !handler(k, v) {
			break
		}
	}
}

// Reset forgets all the secrets and removes the whole directory where the
// secrets file lives.
func (s *Store) Reset() (err error) {
	defer err2.Handle(&err, "delete agent secrets")

	s.l.Lock()
	defer s.l.Unlock()

	s.r = make(map[agentID]secret)
	dir := filepath.Dir(s.filename)
	if dir == "." || dir == string(filepath.Separator) {
		// never remove the working directory or root, only our file
		try.To(os.RemoveAll(s.filename))
		return nil
	}
	try.To(os.RemoveAll(dir))
	return nil
}
