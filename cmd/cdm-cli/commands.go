package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/cdm-contract/contracts"
	"github.com/nspcc-dev/cdm-contract/deploy"
	"github.com/nspcc-dev/cdm-contract/dump"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var deployCommand = cli.Command{
	Name:  "deploy",
	Usage: "Deploy the CDM contract, the signing account becomes the owner",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "dir", Usage: "Directory with compiled contract.nef and manifest.json", Value: "contracts/" + contracts.CDMDir},
	},
	Action: func(c *cli.Context) error {
		return withChain(c, func(ctx context.Context, l *zap.Logger, cfg config, b *remoteBlockchain) error {
			ctr, err := contracts.ReadDir(c.String("dir"))
			if err != nil {
				return fmt.Errorf("read contract artifacts: %w", err)
			}

			acc, err := openAccount(cfg)
			if err != nil {
				return err
			}

			addr, err := deploy.Deploy(ctx, deploy.Prm{
				Logger:       l,
				Blockchain:   b.rpc,
				LocalAccount: acc,
				NEF:          ctr.NEF,
				Manifest:     ctr.Manifest,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s (0x%s)\n", address.Uint160ToString(addr), addr.StringLE())

			return nil
		})
	},
}

var addProviderCommand = cli.Command{
	Name:      "add-provider",
	Usage:     "Add an identity to the provider whitelist (owner only)",
	ArgsUsage: "<address>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("exactly one provider address is expected", 1)
		}

		provider, err := parseIdentity(c.Args().First())
		if err != nil {
			return fmt.Errorf("invalid provider: %w", err)
		}

		return withChain(c, func(_ context.Context, l *zap.Logger, cfg config, b *remoteBlockchain) error {
			ctr, act, err := b.contract(cfg)
			if err != nil {
				return err
			}

			txHash, vub, err := ctr.AddProvider(provider)
			if err != nil {
				return fmt.Errorf("send %s transaction: %w", cdm.MethodAddProvider, err)
			}

			return awaitHalt(act, l, cdm.MethodAddProvider, txHash, vub)
		})
	},
}

var submitCommand = cli.Command{
	Name:      "submit",
	Usage:     "Submit a conjunction data message (providers only, others are silently dropped)",
	ArgsUsage: "<object1ID> <object2ID> <collisionProbability> <timeOfClosestPass>",
	Action: func(c *cli.Context) error {
		m, err := parseMessage(c.Args())
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		return withChain(c, func(_ context.Context, l *zap.Logger, cfg config, b *remoteBlockchain) error {
			ctr, act, err := b.contract(cfg)
			if err != nil {
				return err
			}

			txHash, vub, err := ctr.Submit(m)
			if err != nil {
				return fmt.Errorf("send %s transaction: %w", cdm.MethodSubmitMessage, err)
			}

			return awaitHalt(act, l, cdm.MethodSubmitMessage, txHash, vub)
		})
	},
}

var ownerCommand = cli.Command{
	Name:  "owner",
	Usage: "Print the contract owner",
	Action: func(c *cli.Context) error {
		return withChain(c, func(_ context.Context, _ *zap.Logger, cfg config, b *remoteBlockchain) error {
			r, err := b.reader(cfg)
			if err != nil {
				return err
			}

			owner, err := r.Owner()
			if err != nil {
				return fmt.Errorf("get owner: %w", err)
			}

			fmt.Fprintln(c.App.Writer, address.Uint160ToString(owner))

			return nil
		})
	},
}

var providersCommand = cli.Command{
	Name:  "providers",
	Usage: "Print the provider whitelist in insertion order",
	Action: func(c *cli.Context) error {
		return withChain(c, func(_ context.Context, _ *zap.Logger, cfg config, b *remoteBlockchain) error {
			r, err := b.reader(cfg)
			if err != nil {
				return err
			}

			providers, err := r.Providers()
			if err != nil {
				return fmt.Errorf("get providers: %w", err)
			}

			for i := range providers {
				fmt.Fprintln(c.App.Writer, address.Uint160ToString(providers[i]))
			}

			return nil
		})
	},
}

var messagesCommand = cli.Command{
	Name:  "messages",
	Usage: "Print the message log in submission order",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "max", Usage: "Maximum number of messages to print (0 prints all)"},
	},
	Action: func(c *cli.Context) error {
		return withChain(c, func(_ context.Context, _ *zap.Logger, cfg config, b *remoteBlockchain) error {
			r, err := b.reader(cfg)
			if err != nil {
				return err
			}

			maxItems := c.Int("max")
			if maxItems > 0 {
				msgs, err := r.ListMessages(maxItems)
				if err != nil {
					return fmt.Errorf("list messages: %w", err)
				}
				for i := range msgs {
					printMessage(c, msgs[i])
				}
				return nil
			}

			return r.IterateMessages(func(m cdm.Message) error {
				printMessage(c, m)
				return nil
			})
		})
	},
}

var dumpCommand = cli.Command{
	Name:  "dump",
	Usage: "Dump the contract state and log at the current height",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "label", Usage: "Label of the blockchain environment (e.g. 'testnet')"},
		cli.StringFlag{Name: "dir", Usage: "Output directory", Value: "testdata"},
	},
	Action: func(c *cli.Context) error {
		label := c.String("label")
		if label == "" {
			return cli.NewExitError("missing blockchain label", 1)
		}

		rootDir := c.String("dir")

		err := os.MkdirAll(rootDir, 0700)
		if err != nil {
			return fmt.Errorf("create root dir: %w", err)
		}

		return withChain(c, func(_ context.Context, l *zap.Logger, cfg config, b *remoteBlockchain) error {
			id := dump.ID{Label: label, Block: b.currentBlock}

			err := dumpContract(b, cfg, rootDir, id)
			if err != nil {
				return err
			}

			l.Info("CDM contract is successfully dumped",
				zap.String("dir", rootDir), zap.Stringer("id", id))

			return nil
		})
	},
}

func dumpContract(b *remoteBlockchain, cfg config, rootDir string, id dump.ID) error {
	r, err := b.reader(cfg)
	if err != nil {
		return err
	}

	var st dump.State

	st.Contract, err = parseIdentity(cfg.Contract)
	if err != nil {
		return err
	}

	st.Owner, err = r.Owner()
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}

	st.Providers, err = r.Providers()
	if err != nil {
		return fmt.Errorf("get providers: %w", err)
	}

	d, err := dump.NewCreator(rootDir, id)
	if err != nil {
		return fmt.Errorf("init local dumper: %w", err)
	}

	defer d.Close()

	d.SetState(st)

	err = r.IterateMessages(d.WriteMessage)
	if err != nil {
		return fmt.Errorf("dump messages: %w", err)
	}

	err = d.Flush()
	if err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}

	return nil
}

// withChain loads config, inits logger and connects to the Neo RPC server
// before calling f.
func withChain(c *cli.Context, f func(context.Context, *zap.Logger, config, *remoteBlockchain) error) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	l, err := newLogger(c)
	if err != nil {
		return err
	}

	defer func() { _ = l.Sync() }()

	ctx := context.Background()

	b, err := newRemoteBlockchain(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	l.Debug("connected to Neo RPC server",
		zap.String("endpoint", cfg.RPCEndpoint), zap.Uint32("height", b.currentBlock))

	return f(ctx, l, cfg, b)
}

var errTxFault = errors.New("transaction failed")

// awaitHalt waits for the transaction to be persisted and checks its
// execution state.
func awaitHalt(act *actor.Actor, l *zap.Logger, method string, txHash util.Uint256, vub uint32) error {
	l.Info("transaction sent, waiting for it to be persisted...",
		zap.String("method", method), zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := act.Wait(txHash, vub, nil)
	if err != nil {
		return fmt.Errorf("wait for %s transaction %s: %w", method, txHash.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("%w: %s %s: %s", errTxFault, method, txHash.StringLE(), res.FaultException)
	}

	l.Info("transaction successfully persisted", zap.String("method", method), zap.Stringer("tx", txHash))

	return nil
}

// parseMessage decodes message from four decimal int32 arguments.
func parseMessage(args cli.Args) (cdm.Message, error) {
	var (
		m      cdm.Message
		fields = []struct {
			name string
			dst  *int32
		}{
			{"object1ID", &m.Object1ID},
			{"object2ID", &m.Object2ID},
			{"collisionProbability", &m.CollisionProbability},
			{"timeOfClosestPass", &m.TimeOfClosestPass},
		}
	)

	if len(args) != len(fields) {
		return m, fmt.Errorf("expected %d arguments, got %d", len(fields), len(args))
	}

	for i := range fields {
		n, err := strconv.ParseInt(args[i], 10, 32)
		if err != nil {
			return m, fmt.Errorf("invalid %s: %w", fields[i].name, err)
		}
		*fields[i].dst = int32(n)
	}

	return m, nil
}

func printMessage(c *cli.Context, m cdm.Message) {
	fmt.Fprintf(c.App.Writer, "%d %d %d %d\n", m.Object1ID, m.Object2ID, m.CollisionProbability, m.TimeOfClosestPass)
}
