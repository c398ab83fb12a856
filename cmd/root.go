package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/agent/utils"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DDEMO"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: utils.Version,
	Use:     "diagency-demo",
	Short:   "Verifiable credentials demo for the diagency",
	Long: `
Demonstrates mDoc/mDL credential issuance and verification against a
diagency service, and provisions the environment of the demo applications.
	`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmds.ParseLoggingArgs(rootFlags.logging)
		handleViperFlags(cmd)
		agencyFlags.apply()
	},
}

// Execute root. SIGINT cancels the context of the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// To fix errors printed twice removing the cobra generators next
		// see: https://github.com/spf13/cobra/issues/304
		// fmt.Println(err)

		stop()
		os.Exit(1)
	}
}

// RootCmd returns a current root command which can be used for adding own
// commands in an own repo.
func RootCmd() *cobra.Command {
	return rootCmd
}

// DryRun returns a value of a dry run flag.
func DryRun() bool {
	return rootFlags.dryRun
}

// RootFlags are the common flags
type RootFlags struct {
	cfgFile string
	dryRun  bool
	logging string
}

// AgencyFlags tell where the agency is and how we talk to it.
type AgencyFlags struct {
	TokenURL     string
	AgencyURL    string
	AdminID      string
	AdminSecret  string
	HolderID     string
	BuildDir     string
	PollInterval time.Duration
	PollTimeout  time.Duration
	Timeout      time.Duration
	Insecure     bool
	CACert       string
}

var (
	rootFlags   = RootFlags{}
	agencyFlags = AgencyFlags{}
)

var rootEnvs = map[string]string{
	"config":        "CONFIG",
	"logging":       "LOGGING",
	"dry-run":       "DRY_RUN",
	"token-url":     "TOKEN_URL",
	"agency-url":    "AGENCY_URL",
	"admin-id":      "ADMIN_ID",
	"admin-secret":  "ADMIN_SECRET",
	"holder-id":     "HOLDER_ID",
	"build-dir":     "BUILD_DIR",
	"poll-interval": "POLL_INTERVAL",
	"poll-timeout":  "POLL_TIMEOUT",
	"timeout":       "TIMEOUT",
	"insecure":      "INSECURE",
	"ca-cert":       "CA_CERT",
}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.cfgFile, "config", "", flagInfo("configuration file", "", rootEnvs["config"]))
	flags.StringVar(&rootFlags.logging, "logging", "-logtostderr=true -v=2", flagInfo("logging startup arguments", "", rootEnvs["logging"]))
	flags.BoolVarP(&rootFlags.dryRun, "dry-run", "n", false, flagInfo("perform a trial run with no changes made", "", rootEnvs["dry-run"]))

	flags.StringVar(&agencyFlags.TokenURL, "token-url", env.DefaultTokenURL, flagInfo("OAuth2 token endpoint", "", rootEnvs["token-url"]))
	flags.StringVar(&agencyFlags.AgencyURL, "agency-url", env.DefaultAgencyURL, flagInfo("agency API base URL", "", rootEnvs["agency-url"]))
	flags.StringVar(&agencyFlags.AdminID, "admin-id", env.DefaultAdminID, flagInfo("admin client id", "", rootEnvs["admin-id"]))
	flags.StringVar(&agencyFlags.AdminSecret, "admin-secret", env.DefaultAdminSecret, flagInfo("admin client secret", "", rootEnvs["admin-secret"]))
	flags.StringVar(&agencyFlags.HolderID, "holder-id", env.DefaultHolderID, flagInfo("agent id of the first holder", "", rootEnvs["holder-id"]))
	flags.StringVar(&agencyFlags.BuildDir, "build-dir", utils.BuildDir, flagInfo("directory of the agent secrets file", "", rootEnvs["build-dir"]))
	flags.DurationVar(&agencyFlags.PollInterval, "poll-interval", utils.PollInterval, flagInfo("time between state polls", "", rootEnvs["poll-interval"]))
	flags.DurationVar(&agencyFlags.PollTimeout, "poll-timeout", utils.PollTimeout, flagInfo("how long a state is waited", "", rootEnvs["poll-timeout"]))
	flags.DurationVar(&agencyFlags.Timeout, "timeout", utils.HTTPReqTimeout, flagInfo("timeout of a single HTTP request", "", rootEnvs["timeout"]))
	flags.BoolVar(&agencyFlags.Insecure, "insecure", false, flagInfo("skip TLS verification of the agency, local use only", "", rootEnvs["insecure"]))
	flags.StringVar(&agencyFlags.CACert, "ca-cert", "", flagInfo("PEM file of the agency's CA", "", rootEnvs["ca-cert"]))

	for key := range rootEnvs {
		try.To(viper.BindPFlag(key, flags.Lookup(key)))
	}
	try.To(BindEnvs(rootEnvs, ""))
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	readConfigFile()
	readBoundRootFlags()
}

func readBoundRootFlags() {
	rootFlags.logging = viper.GetString("logging")
	rootFlags.dryRun = viper.GetBool("dry-run")

	agencyFlags.TokenURL = viper.GetString("token-url")
	agencyFlags.AgencyURL = viper.GetString("agency-url")
	agencyFlags.AdminID = viper.GetString("admin-id")
	agencyFlags.AdminSecret = viper.GetString("admin-secret")
	agencyFlags.HolderID = viper.GetString("holder-id")
	agencyFlags.BuildDir = viper.GetString("build-dir")
	agencyFlags.PollInterval = viper.GetDuration("poll-interval")
	agencyFlags.PollTimeout = viper.GetDuration("poll-timeout")
	agencyFlags.Timeout = viper.GetDuration("timeout")
	agencyFlags.Insecure = viper.GetBool("insecure")
	agencyFlags.CACert = viper.GetString("ca-cert")
}

func readConfigFile() {
	cfgEnv := os.Getenv(getEnvName("", "config"))
	if rootFlags.cfgFile != "" || cfgEnv != "" {
		printInfo := true
		if rootFlags.cfgFile == "" {
			rootFlags.cfgFile = cfgEnv
			printInfo = false
		}
		viper.SetConfigFile(rootFlags.cfgFile)
		// If a config file is found, read it in.
		if err := viper.ReadInConfig(); err == nil && printInfo {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}
}

// apply moves the flags to the process wide settings.
func (f AgencyFlags) apply() {
	utils.Settings.SetTimeout(f.Timeout)
	utils.Settings.SetPollInterval(f.PollInterval)
	utils.Settings.SetPollTimeout(f.PollTimeout)
	utils.Settings.SetBuildDir(f.BuildDir)
	utils.Settings.SetInsecure(f.Insecure)
	utils.Settings.SetCACertPath(f.CACert)
}

// baseCmd returns the base of the agency commands built from the flags and
// the settings.
func baseCmd() cmds.Cmd {
	cfg := env.DefaultConfig()
	cfg.TokenURL = agencyFlags.TokenURL
	cfg.AgencyURL = agencyFlags.AgencyURL
	cfg.AdminID = agencyFlags.AdminID
	cfg.AdminSecret = agencyFlags.AdminSecret
	cfg.HolderID = agencyFlags.HolderID
	cfg.SecretsFile = filepath.Join(agencyFlags.BuildDir, utils.SecretsFileName)
	return cmds.Cmd{Config: cfg}
}

// BindEnvs calls viper.BindEnv with envMap and cmdName which can be empty if
// flag is general.
func BindEnvs(envMap map[string]string, cmdName string) (err error) {
	defer err2.Handle(&err)
	for flagKey, envName := range envMap {
		finalEnvName := getEnvName(cmdName, envName)
		try.To(viper.BindEnv(flagKey, finalEnvName))
	}
	return nil
}

func flagInfo(info, cmdPrefix, envName string) string {
	return info + ", " + getEnvName(cmdPrefix, envName)
}

func getEnvName(cmdName, envName string) string {
	if cmdName == "" {
		return envPrefix + "_" + strings.ToUpper(envName)
	}
	return envPrefix + "_" + strings.ToUpper(cmdName) + "_" + envName
}

func handleViperFlags(cmd *cobra.Command) {
	setRequiredStringFlags(cmd)
	if cmd.HasParent() {
		handleViperFlags(cmd.Parent())
	}
}

func setRequiredStringFlags(cmd *cobra.Command) {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	try.To(viper.BindPFlags(cmd.LocalFlags()))
	if cmd.PreRunE != nil {
		try.To(cmd.PreRunE(cmd, nil))
	}
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if viper.GetString(f.Name) != "" {
			try.To(cmd.LocalFlags().Set(f.Name, viper.GetString(f.Name)))
		}
	})
}

// SubCmdNeeded prints the help and error messages because the cmd is abstract.
func SubCmdNeeded(cmd *cobra.Command) {
	fmt.Println("Subcommand needed!")
	_ = cmd.Help()
	os.Exit(1)
}
