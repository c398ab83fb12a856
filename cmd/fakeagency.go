package cmd

import (
	"log"

	"github.com/findy-network/diagency-demo/server"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var fakeAgencyEnvs = map[string]string{
	"address":  "ADDRESS",
	"base-url": "BASE_URL",
}

type fakeAgencyFlags struct {
	addr    string
	baseURL string
}

// fakeAgencyCmd represents the fake-agency command
var fakeAgencyCmd = &cobra.Command{
	Use:   "fake-agency",
	Short: "Starts an in-memory fake of the agency",
	Long: `
Starts an in-memory fake of the diagency REST API and its token endpoint.
The demo can be tried with it without a real agency. The admin credentials
are taken from --admin-id and --admin-secret, and holders log in with the
password "secret". Nothing is persisted.

Example
	diagency-demo fake-agency --address :9720 &
	diagency-demo run mdoc_mdl \
		--agency-url http://localhost:9720/diagency \
		--token-url http://localhost:9720/oauth2/token
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(fakeAgencyEnvs, "FAKE_AGENCY")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		baseURL := fakeAgency.baseURL
		if baseURL == "" {
			baseURL = "http://localhost" + fakeAgency.addr
		}
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			a := server.NewAgency(agencyFlags.AdminID, agencyFlags.AdminSecret)
			try.To(server.StartHTTPServer(cmd.Context(), fakeAgency.addr, baseURL, a))
		}
		return nil
	},
}

var fakeAgency = fakeAgencyFlags{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	flags := fakeAgencyCmd.Flags()
	flags.StringVar(&fakeAgency.addr, "address", ":9720", flagInfo("listen address", "FAKE_AGENCY", fakeAgencyEnvs["address"]))
	flags.StringVar(&fakeAgency.baseURL, "base-url", "", flagInfo("URL the clients reach the fake with", "FAKE_AGENCY", fakeAgencyEnvs["base-url"]))

	rootCmd.AddCommand(fakeAgencyCmd)
}
