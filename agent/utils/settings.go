package utils

import (
	"path/filepath"
	"time"

	"github.com/golang/glog"
)

const (
	HTTPReqTimeout = 1 * time.Minute

	// PollInterval and PollTimeout are the defaults for waiting a remote
	// resource to reach a state. The agency is expected to run locally.
	PollInterval = 1 * time.Second
	PollTimeout  = 10 * time.Second

	BuildDir        = "./build"
	SecretsFileName = "agents_and_client_secrets.txt"
)

var Settings = &Hub{}

type Hub struct {
	timeout      time.Duration // timeout setting for single http requests
	pollInterval time.Duration // time between two state polls
	pollTimeout  time.Duration // ceiling for one wait-for-state
	buildDir     string        // where the agent secrets are kept between runs
	versionInfo  string        // Version number etc. in free format as a string
	insecure     bool          // skip TLS verification of the agency, local demo only
	caCertPath   string        // PEM bundle used to verify the agency
}

// SetTimeout sets the default timeout for HTTP requests.
func (h *Hub) SetTimeout(to time.Duration) {
	h.timeout = to
}

func (h *Hub) Timeout() time.Duration {
	if h.timeout == 0 {
		return HTTPReqTimeout
	}
	return h.timeout
}

func (h *Hub) SetPollInterval(d time.Duration) {
	h.pollInterval = d
}

func (h *Hub) PollInterval() time.Duration {
	if h.pollInterval <= 0 {
		return PollInterval
	}
	return h.pollInterval
}

func (h *Hub) SetPollTimeout(d time.Duration) {
	h.pollTimeout = d
}

func (h *Hub) PollTimeout() time.Duration {
	if h.pollTimeout <= 0 {
		return PollTimeout
	}
	return h.pollTimeout
}

func (h *Hub) SetBuildDir(dir string) {
	h.buildDir = dir
}

func (h *Hub) BuildDir() string {
	if h.buildDir == "" {
		return BuildDir
	}
	return h.buildDir
}

// SecretsFile returns the path of the agent secrets file inside the build
// directory.
func (h *Hub) SecretsFile() string {
	return filepath.Join(h.BuildDir(), SecretsFileName)
}

// SetVersionInfo sets current version info of this tool. It's printed by the
// version command.
func (h *Hub) SetVersionInfo(info string) {
	h.versionInfo = info
}

func (h *Hub) VersionInfo() string {
	if h.versionInfo == "" {
		return Version
	}
	return h.versionInfo
}

// SetInsecure turns off TLS verification of the agency. The local demo agency
// runs with a self signed certificate.
func (h *Hub) SetInsecure(insecure bool) {
	if insecure && bool(glog.V(1)) {
		glog.Info("TLS verification of the agency is turned off")
	}
	h.insecure = insecure
}

func (h *Hub) Insecure() bool {
	return h.insecure
}

func (h *Hub) SetCACertPath(path string) {
	h.caCertPath = path
}

func (h *Hub) CACertPath() string {
	return h.caCertPath
}
