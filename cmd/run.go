package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/findy-network/diagency-demo/cmds/demo"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var runEnvs = map[string]string{
	"issuance":      "ISSUANCE",
	"verification":  "VERIFICATION",
	"delete-agents": "DELETE_AGENTS",
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Runs the demonstration of a credential scenario",
	Long: `
Runs the issuance and verification demonstration of the credential scenario.
The agents are created on the first run, and their client secrets are kept
in the build directory for the next runs.

If neither --issuance nor --verification is given, both are performed.
--delete-agents deletes every agent of the agency and the build directory.

Scenarios: ` + strings.Join(scenario.Names(), ", ") + `

Example
	diagency-demo run mdoc_mdl \
		--agency-url https://localhost:9720/diagency \
		--token-url https://localhost:8443/oauth2/token
	`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: scenario.Names(),
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(runEnvs, cmd.Name())
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		runCmdFlags.Scenario = args[0]
		c := runCmdFlags
		c.Cmd = baseCmd()
		if !c.Issuance && !c.Verification {
			c.Issuance, c.Verification = true, true
		}
		try.To(c.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(c.Run(cmd.Context(), os.Stdout))
		}
		return nil
	},
}

var runCmdFlags = demo.Cmd{}

// runFlagAliases accepts the flag spelling of the earlier demo scripts.
func runFlagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "deleteAgents" {
		name = "delete-agents"
	}
	return pflag.NormalizedName(name)
}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	flags := runCmd.Flags()
	flags.BoolVarP(&runCmdFlags.Issuance, "issuance", "i", false, flagInfo("perform the credential issuance", runCmd.Name(), runEnvs["issuance"]))
	flags.BoolVarP(&runCmdFlags.Verification, "verification", "v", false, flagInfo("perform the credential verification", runCmd.Name(), runEnvs["verification"]))
	flags.BoolVarP(&runCmdFlags.DeleteAgents, "delete-agents", "d", false, flagInfo("delete all agents and exit", runCmd.Name(), runEnvs["delete-agents"]))
	flags.SetNormalizeFunc(runFlagAliases)

	rootCmd.AddCommand(runCmd)
}
