package server

import (
	"net/http/httptest"
)

const (
	TestAdminID     = "admin"
	TestAdminSecret = "secret"
)

// StartTestHTTPServer starts a fake agency with the test admin credentials.
// The caller closes the server.
func StartTestHTTPServer() (*httptest.Server, *Agency) {
	a := NewAgency(TestAdminID, TestAdminSecret)
	srv := httptest.NewServer(NewEcho(a))
	a.SetBaseURL(srv.URL)
	return srv, a
}

// StartTestHTTPSServer is StartTestHTTPServer with TLS. Use the server's
// Client() or turn off the verification.
func StartTestHTTPSServer() (*httptest.Server, *Agency) {
	a := NewAgency(TestAdminID, TestAdminSecret)
	srv := httptest.NewTLSServer(NewEcho(a))
	a.SetBaseURL(srv.URL)
	return srv, a
}

// APIURL returns the base URL of the agency API of the test server.
func APIURL(srv *httptest.Server) string {
	return srv.URL + "/" + PathPrefix
}

// TokenURL returns the token endpoint of the test server.
func TokenURL(srv *httptest.Server) string {
	return srv.URL + TokenPath
}
