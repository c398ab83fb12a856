package cmd

import (
	"log"
	"os"
	"time"

	"github.com/findy-network/diagency-demo/cmds/trust"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// trustCmd represents the trust command
var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Parent command for the trust registries",
	Long: `
Parent command for the verifier's remote trust registries.

This command requires a subcommand so command itself does nothing.
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var trustRefreshEnvs = map[string]string{
	"every": "EVERY",
	"at":    "AT",
	"times": "TIMES",
}

var trustRefreshCmd = &cobra.Command{
	Use:   "refresh [registry-id...]",
	Short: "Fetches the trust registries on a schedule",
	Long: `
Fetches the remote trust registries (e.g. the issuer's VICAL) of the agency
on a schedule. Without registry ids every registry is fetched. The command
runs until --times fetch rounds are done, or until it's interrupted.

Example
	diagency-demo trust refresh --every 1h
	diagency-demo trust refresh --at 04:30
	diagency-demo trust refresh --times 1
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(trustRefreshEnvs, "TRUST_REFRESH")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		c := trustRefreshFlags
		c.Cmd = baseCmd()
		c.RegistryIDs = args
		try.To(c.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(c.Run(cmd.Context(), os.Stdout))
		}
		return nil
	},
}

var trustRefreshFlags = trust.RefreshCmd{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	flags := trustRefreshCmd.Flags()
	flags.DurationVar(&trustRefreshFlags.Every, "every", 12*time.Hour, flagInfo("time between the fetches", "TRUST_REFRESH", trustRefreshEnvs["every"]))
	flags.StringVar(&trustRefreshFlags.At, "at", "", flagInfo("fetch daily at HH:MM[:SS] instead", "TRUST_REFRESH", trustRefreshEnvs["at"]))
	flags.IntVar(&trustRefreshFlags.Times, "times", 0, flagInfo("stop after this many rounds, zero runs until interrupted", "TRUST_REFRESH", trustRefreshEnvs["times"]))

	rootCmd.AddCommand(trustCmd)
	trustCmd.AddCommand(trustRefreshCmd)
}
