package env

import (
	"time"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/poll"
	"github.com/findy-network/diagency-demo/agent/utils"
)

const (
	DefaultTokenURL    = "https://localhost:8443/oauth2/token"
	DefaultAgencyURL   = "https://localhost:9720/diagency"
	DefaultAdminID     = "admin"
	DefaultAdminSecret = "secret"

	// DefaultHolderID is the id of the first holder. The other holders get
	// their ids by replacing the user name, see HolderID.
	DefaultHolderID       = "cn=user_1,ou=users,dc=ibm,dc=com"
	DefaultHolderPassword = "secret"

	firstHolderUser = "user_1"
)

// Config tells where the agency is and how we authenticate to it.
type Config struct {
	TokenURL    string
	AgencyURL   string
	AdminID     string
	AdminSecret string

	HolderID       string
	HolderPassword string

	// SecretsFile is the agent secrets file. Its directory is the build
	// directory, which is removed by Cleanup.
	SecretsFile string

	Poll    poll.Config
	TLS     diagency.TLSConfig
	Timeout time.Duration
}

// DefaultConfig returns the local demo environment's config. The process
// wide settings are taken from utils.Settings.
func DefaultConfig() Config {
	return Config{
		TokenURL:       DefaultTokenURL,
		AgencyURL:      DefaultAgencyURL,
		AdminID:        DefaultAdminID,
		AdminSecret:    DefaultAdminSecret,
		HolderID:       DefaultHolderID,
		HolderPassword: DefaultHolderPassword,
		SecretsFile:    utils.Settings.SecretsFile(),
		Poll: poll.Config{
			Interval: utils.Settings.PollInterval(),
			Timeout:  utils.Settings.PollTimeout(),
		},
		TLS: diagency.TLSConfig{
			Insecure:   utils.Settings.Insecure(),
			CACertPath: utils.Settings.CACertPath(),
		},
		Timeout: utils.Settings.Timeout(),
	}
}
