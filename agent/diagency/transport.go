package diagency

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// TLSConfig tells how the agency's certificate is verified. The local demo
// agency runs with a self signed certificate, which is why both the CA file
// and turning the verification off are supported.
type TLSConfig struct {
	Insecure   bool
	CACertPath string
}

// NewHTTPClient returns a http client for the agency and the token endpoint.
func NewHTTPClient(cfg TLSConfig) (c *http.Client, err error) {
	defer err2.Handle(&err, "build http client")

	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if cfg.CACertPath != "" {
		tlsCfg.RootCAs = try.To1(loadRootCAs(cfg.CACertPath))
	}
	if cfg.Insecure {
		glog.V(3).Infoln("skipping TLS verification")
		tlsCfg.InsecureSkipVerify = true //nolint:gosec
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = tlsCfg
	return &http.Client{Transport: tr}, nil
}

func loadRootCAs(caFile string) (pool *x509.CertPool, err error) {
	defer err2.Handle(&err, "load root CA %s", caFile)

	pem := try.To1(os.ReadFile(caFile))
	pool, err = x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("no certificates found")
	}
	return pool, nil
}
