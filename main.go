// Command leaguerank predicts final league positions from historical season tables.
package main

import (
	"os"

	"github.com/huangsam/leaguerank/cmd"
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the process exit code after stores are closed.
func run() int {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.Logger().WithError(err).Error("leaguerank failed")
		return 1
	}
	return 0
}
