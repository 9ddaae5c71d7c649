package main

import (
	"fmt"
	"os"

	"github.com/nspcc-dev/cdm-contract/common"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

const (
	configFlag   = "config"
	rpcFlag      = "rpc"
	contractFlag = "contract"
	walletFlag   = "wallet"
	accountFlag  = "account"
	debugFlag    = "debug"
)

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cdm-cli"
	app.Usage = "Manage the Conjunction Data Message log contract"
	app.Version = fmt.Sprintf("%d.%d.%d", common.Version/1_000_000, common.Version/1_000%1_000, common.Version%1_000)
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: configFlag + ", c", Usage: "Path to the YAML config file"},
		cli.StringFlag{Name: rpcFlag + ", r", Usage: "Network address of the Neo RPC server"},
		cli.StringFlag{Name: contractFlag, Usage: "Address or script hash of the CDM contract"},
		cli.StringFlag{Name: walletFlag + ", w", Usage: "Path to the wallet with the signing account"},
		cli.StringFlag{Name: accountFlag + ", a", Usage: "Address of the signing account (default wallet account if empty)"},
		cli.BoolFlag{Name: debugFlag + ", d", Usage: "Enable debug logging"},
	}
	app.Commands = []cli.Command{
		deployCommand,
		addProviderCommand,
		submitCommand,
		ownerCommand,
		providersCommand,
		messagesCommand,
		dumpCommand,
		replayCommand,
	}

	return app
}

// newLogger returns production zap logger with the level specified by global
// flags.
func newLogger(c *cli.Context) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Sampling = nil

	if c.GlobalBool(debugFlag) {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return l, nil
}
