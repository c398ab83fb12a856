package main

import (
	"github.com/findy-network/diagency-demo/agent/utils"
	"github.com/findy-network/diagency-demo/cmd"
)

var versionInfo = "diagency-demo v. " + utils.Version

func main() {
	utils.Settings.SetVersionInfo(versionInfo)
	cmd.Execute()
}
