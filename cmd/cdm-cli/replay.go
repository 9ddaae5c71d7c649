package main

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/cdm-contract/dump"
	"github.com/nspcc-dev/cdm-contract/host"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var replayCommand = cli.Command{
	Name:  "replay",
	Usage: "Replay a dump into a local state database",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "dir", Usage: "Directory with dumps", Value: "testdata"},
		cli.StringFlag{Name: "id", Usage: "Dump ID '<label>-<block>'"},
		cli.StringFlag{Name: "db", Usage: "Path to the BoltDB file with the local state", Value: "cdm.db"},
	},
	Action: func(c *cli.Context) error {
		dumpID := c.String("id")
		if dumpID == "" {
			return cli.NewExitError("missing dump ID", 1)
		}

		l, err := newLogger(c)
		if err != nil {
			return err
		}

		defer func() { _ = l.Sync() }()

		store, err := openStore(c.String("db"))
		if err != nil {
			return err
		}

		defer func() { _ = store.Close() }()

		reg := prometheus.NewRegistry()

		m, err := host.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}

		h := host.New(store, host.WithLogger(l), host.WithMetrics(m))

		var (
			found     bool
			replayErr error
		)

		err = dump.IterateDumps(c.String("dir"), func(id dump.ID, r *dump.Reader) {
			if found || id.String() != dumpID {
				return
			}
			found = true
			replayErr = replayDump(h, r)
		})
		if err != nil {
			return fmt.Errorf("iterate dumps: %w", err)
		}

		if !found {
			return fmt.Errorf("dump '%s' not found", dumpID)
		}

		if replayErr != nil {
			return replayErr
		}

		logCalls(l, reg)

		return nil
	},
}

// openStore opens BoltDB store at the given path.
func openStore(path string) (storage.Store, error) {
	s, err := storage.NewStore(dbconfig.DBConfiguration{
		Type: dbconfig.BoltDB,
		BoltDBOptions: dbconfig.BoltDBOptions{
			FilePath: path,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open local state database: %w", err)
	}

	return s, nil
}

var (
	errNoSubmitter    = errors.New("dump has messages but no providers")
	errReplayMismatch = errors.New("replayed state differs from the dump")
)

// replayDump rebuilds the dumped state in h. Messages are submitted on
// behalf of the first provider since dumps do not keep submitters.
func replayDump(h *host.Host, r *dump.Reader) error {
	st := r.State()

	if r.MessageCount() > 0 && len(st.Providers) == 0 {
		return errNoSubmitter
	}

	err := h.Initialize(st.Owner)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	for i := range st.Providers {
		err = h.AddProvider(st.Owner, st.Providers[i])
		if err != nil {
			return fmt.Errorf("add provider #%d: %w", i, err)
		}
	}

	r.IterateMessages(func(i int, m cdm.Message) {
		if err != nil {
			return
		}

		var ok bool

		ok, err = h.SubmitMessage(st.Providers[0], m)
		if err == nil && !ok {
			err = fmt.Errorf("message #%d dropped", i)
		}
	})
	if err != nil {
		return fmt.Errorf("submit messages: %w", err)
	}

	res, err := h.State()
	if err != nil {
		return err
	}

	if res.ProviderCount() != len(st.Providers) || res.MessageCount() != r.MessageCount() {
		return fmt.Errorf("%w: %d/%d providers, %d/%d messages", errReplayMismatch,
			res.ProviderCount(), len(st.Providers), res.MessageCount(), r.MessageCount())
	}

	return nil
}

// logCalls writes host call counters gathered from reg.
func logCalls(l *zap.Logger, reg *prometheus.Registry) {
	mfs, err := reg.Gather()
	if err != nil {
		l.Warn("failed to gather metrics", zap.Error(err))
		return
	}

	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range metric.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))

			l.Info("replay calls", fields...)
		}
	}
}
