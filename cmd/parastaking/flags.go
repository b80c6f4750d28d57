// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for block-chain databases",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a yaml genesis file, if not set, the default devnet genesis will be used",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "blockchain data storage option, if set data will be saved to disk",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the chain database cache",
		Value: 512,
	}

	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "log API requests slower than this many milliseconds, 0 logs every request",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}

	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}

	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	blockIntervalFlag = cli.Uint64Flag{
		Name:  "block-interval",
		Value: 6,
		Usage: "time between blocks (seconds)",
	}
	maxCallsFlag = cli.IntFlag{
		Name:  "max-calls",
		Value: 1000,
		Usage: "maximum number of calls packed into a block",
	}
	callPoolLimitFlag = cli.IntFlag{
		Name:  "callpool-limit",
		Value: 10000,
		Usage: "set call limit in pool",
	}
	callPoolLimitPerAccountFlag = cli.IntFlag{
		Name:  "callpool-limit-per-account",
		Value: 64,
		Usage: "set call limit per account in pool",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server queried for clock drift, empty disables the check",
	}

	// simulate only flags
	blocksFlag = cli.IntFlag{
		Name:  "blocks",
		Value: 100,
		Usage: "number of blocks to pack",
	}
	quietVerbosityFlag = cli.IntFlag{
		Name:  verbosityFlag.Name,
		Value: 1,
		Usage: "log verbosity (0-5)",
	}
)
