package cmd

import (
	"log"
	"os"

	"github.com/findy-network/diagency-demo/cmds/setup"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var setupEnvs = map[string]string{
	"out": "OUT",
}

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provisions the environment of the DMV and bank applications",
	Long: `
Creates the DMV issuer and the bank verifier agents, the OID4VCI credential
schema and definition and the OID4VP exchange template, and registers the
issuer's VICAL as a trust registry. The applications' configuration is
written to the .env file and printed.

The command reads its input from the environment:
	AGENCY_URL, OIDC_TOKEN_ENDPOINT, DMV_HOST, BANK_HOST, IDP_URL,
	IDP_CLIENT_ID and IDP_CLIENT_SECRET are required,
	VICAL_BASE_URL, ADMIN_NAME (admin), ADMIN_PASSWORD (secret),
	IS_APP_PROD_DEPLOY and CUSTOM_CA_PATH are optional.

Example
	AGENCY_URL=https://localhost:8443/diagency \
	OIDC_TOKEN_ENDPOINT=https://localhost:8443/oauth2/token \
	... \
	diagency-demo setup --out .env
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)
		for _, name := range setup.EnvNames {
			try.To(viper.BindEnv(envKey(name), name))
		}
		return BindEnvs(setupEnvs, cmd.Name())
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		c := setupCmdFlags
		c.Env = setup.LoadEnv(func(name string) string {
			return viper.GetString(envKey(name))
		})
		c.Timeout = agencyFlags.Timeout
		try.To(c.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(c.Run(cmd.Context(), os.Stdout))
		}
		return nil
	},
}

// envKey is the viper key of the unprefixed setup variable.
func envKey(name string) string {
	return "setup." + name
}

var setupCmdFlags = setup.Cmd{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	flags := setupCmd.Flags()
	flags.StringVar(&setupCmdFlags.Out, "out", setup.DefaultOut, flagInfo("file where the configuration is written", setupCmd.Name(), setupEnvs["out"]))

	rootCmd.AddCommand(setupCmd)
}
