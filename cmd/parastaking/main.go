// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/parastaking/admin"
	"github.com/vechain/parastaking/api"
	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/co"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/health"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/node"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	if version == "" {
		version = "0.1.0"
	}
	return fmt.Sprintf("parastaking %s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "parastaking",
		Usage:   "Standalone node of a delegated proof of stake collator network",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			blockIntervalFlag,
			maxCallsFlag,
			callPoolLimitFlag,
			callPoolLimitPerAccountFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "simulate",
				Usage: "pack empty blocks as fast as possible and print the resulting staking state",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					persistFlag,
					cacheFlag,
					blocksFlag,
					blockIntervalFlag,
					quietVerbosityFlag,
					jsonLogsFlag,
				},
				Action: simulateAction,
			},
			{
				Name:  "inspect",
				Usage: "print the staking and inflation state of the best block",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					cacheFlag,
					quietVerbosityFlag,
				},
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type databases struct {
	chain   *lvldb.LevelDB
	events  *eventdb.EventDB
	dataDir string
}

func (d *databases) Close() {
	logger.Info("closing event database...")
	if err := d.events.Close(); err != nil {
		logger.Warn("failed to close event database", "err", err)
	}
	logger.Info("closing chain database...")
	if err := d.chain.Close(); err != nil {
		logger.Warn("failed to close chain database", "err", err)
	}
}

func openDatabases(ctx *cli.Context, persist bool, instanceDir func() string) *databases {
	if !persist {
		return &databases{chain: openMemChainDB(), events: openMemEventDB()}
	}
	dir := instanceDir()
	return &databases{chain: openChainDB(ctx, dir), events: openEventDB(dir), dataDir: dir}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	gene := selectGenesis(ctx)
	dbs := openDatabases(ctx, ctx.Bool(persistFlag.Name), func() string { return makeInstanceDir(ctx, gene) })
	defer dbs.Close()

	repo := initChain(gene, dbs.chain, dbs.events)

	poolOpts := callpool.DefaultOptions()
	poolOpts.Limit = ctx.Int(callPoolLimitFlag.Name)
	poolOpts.LimitPerAccount = ctx.Int(callPoolLimitPerAccountFlag.Name)
	pool := callpool.New(poolOpts)
	defer func() { logger.Info("closing call pool..."); pool.Close() }()

	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler, closeSubs := api.New(&api.Backend{
		Repo:      repo,
		Config:    gene.Config(),
		Pool:      pool,
		EventDB:   dbs.events,
		GenesisID: gene.ID(),
		Name:      gene.Name(),
	}, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableReqLogger:      enableReqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
	})
	defer func() { logger.Info("closing subscriptions..."); closeSubs() }()

	apiURL, stopAPI := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	runCtx, cancel := context.WithCancel(context.Background())
	var goes co.Goes

	blockInterval := ctx.Uint64(blockIntervalFlag.Name)
	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		h := health.New(time.Duration(blockInterval) * time.Second)
		goes.Go(func() { h.Run(runCtx, repo) })
		url, closeFunc, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, enableReqLogger, h)
		if err != nil {
			cancel()
			goes.Wait()
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	n := node.New(repo, dbs.events, pool, gene.Config(), node.Options{
		BlockInterval: blockInterval,
		MaxCalls:      ctx.Int(maxCallsFlag.Name),
		NTPServer:     ctx.String(ntpServerFlag.Name),
	})
	printStartupMessage(gene, repo, dbs.dataDir, apiURL, metricsURL, adminURL, n.ID())

	var runErr error
	goes.Go(func() {
		runErr = n.Run(runCtx)
	})

	<-handleExitSignal()
	logger.Info("exit signal received")
	cancel()
	goes.Wait()
	return runErr
}

func simulateAction(ctx *cli.Context) error {
	initLogger(ctx)

	gene := selectGenesis(ctx)
	dbs := openDatabases(ctx, ctx.Bool(persistFlag.Name), func() string { return makeInstanceDir(ctx, gene) })
	defer dbs.Close()

	repo := initChain(gene, dbs.chain, dbs.events)
	pool := callpool.New(callpool.Options{Results: 1})
	defer pool.Close()

	interval := ctx.Uint64(blockIntervalFlag.Name)
	n := node.New(repo, dbs.events, pool, gene.Config(), node.Options{BlockInterval: interval})

	blocks := ctx.Int(blocksFlag.Name)
	if blocks <= 0 {
		return errors.New("blocks must be positive")
	}
	bar := pb.New(blocks).
		SetMaxWidth(90).
		Start()
	for range blocks {
		best := repo.BestSummary()
		if _, err := n.PackBlock(best.Timestamp + interval); err != nil {
			bar.NotPrint = true
			return errors.Wrapf(err, "pack block %d", best.Number+1)
		}
		bar.Increment()
	}
	bar.Finish()

	ov, err := newOverview(gene, repo)
	if err != nil {
		return err
	}
	return ov.print(os.Stdout)
}

func inspectAction(ctx *cli.Context) error {
	initLogger(ctx)

	gene := selectGenesis(ctx)
	dbs := openDatabases(ctx, true, func() string { return makeInstanceDir(ctx, gene) })
	defer dbs.Close()

	repo := initChain(gene, dbs.chain, dbs.events)
	ov, err := newOverview(gene, repo)
	if err != nil {
		return err
	}
	return ov.print(os.Stdout)
}
