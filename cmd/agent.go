package cmd

import (
	"log"
	"os"

	"github.com/findy-network/diagency-demo/cmds/agent"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// agentCmd represents the agent command
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Parent command for the agent maintenance",
	Long: `
Parent command for listing and deleting the agents of the agency.

This command requires a subcommand so command itself does nothing.
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the agents of the agency",
	Long: `
Lists the agents of the agency: id, type, name and DID on each line.

Example
	diagency-demo agent list --admin-id admin --admin-secret secret
	`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		c := agent.ListCmd{Cmd: baseCmd()}
		try.To(c.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(c.Exec(os.Stdout))
		}
		return nil
	},
}

var agentDeleteEnvs = map[string]string{
	"all": "ALL",
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete [agent-id...]",
	Short: "Deletes agents of the agency",
	Long: `
Deletes the given agents, or with --all every agent of the agency and the
local build directory.

Example
	diagency-demo agent delete 6b3c1d9e-...
	diagency-demo agent delete --all
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(agentDeleteEnvs, "AGENT_DELETE")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		c := agentDeleteFlags
		c.Cmd = baseCmd()
		c.IDs = args
		try.To(c.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(c.Exec(os.Stdout))
		}
		return nil
	},
}

var agentDeleteFlags = agent.DeleteCmd{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	flags := agentDeleteCmd.Flags()
	flags.BoolVar(&agentDeleteFlags.All, "all", false, flagInfo("delete every agent", "AGENT_DELETE", agentDeleteEnvs["all"]))

	rootCmd.AddCommand(agentCmd)
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentDeleteCmd)
}
