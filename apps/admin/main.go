package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/trezcool/repostnet/apps"
	"github.com/trezcool/repostnet/core"
	logsvc "github.com/trezcool/repostnet/services/logger"
)

func main() {
	conf := core.NewConfig()

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(false)

	// set up DB & services
	deps, err := apps.Setup(context.Background(), conf, logger, false /* migrate */)
	errAndDie(logger, err)

	// start CLI
	cli := commandLine{
		deps: deps,
		out:  os.Stdout,
	}
	err = cli.run(os.Args)
	if cErr := deps.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	_ = zl.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
