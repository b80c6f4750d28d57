// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/co"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/genesis"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/lvldb"
	"github.com/vechain/parastaking/metrics"
)

func fatal(args ...any) {
	var w = os.Stderr
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var lvl slog.LevelVar
	lvl.Set(log.FromVerbosity(ctx.Int(verbosityFlag.Name)))
	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.NewJSONHandler(os.Stderr, &lvl))
		return &lvl
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewTerminalHandler(os.Stderr, &lvl, useColor))
	return &lvl
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet()
	}
	file, err := os.Open(path)
	if err != nil {
		fatal(fmt.Sprintf("open genesis file [%v]: %v", path, err))
	}
	defer file.Close()

	custom, err := genesis.LoadCustomGenesis(file)
	if err != nil {
		fatal(fmt.Sprintf("load genesis file [%v]: %v", path, err))
	}
	gene, err := genesis.NewCustomNet(custom)
	if err != nil {
		fatal(fmt.Sprintf("build genesis [%v]: %v", path, err))
	}
	return gene
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openChainDB(ctx *cli.Context, instanceDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("chain db cache", "mb", cacheMB)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 500,
		ValueCacheSize:         cacheMB / 2,
	})
	if err != nil {
		fatal(fmt.Sprintf("open chain database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func openEventDB(instanceDir string) *eventdb.EventDB {
	dir := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open event database [%v]: %v", dir, err))
	}
	return db
}

func openMemChainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open chain database: %v", err))
	}
	return db
}

func openMemEventDB() *eventdb.EventDB {
	db, err := eventdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open event database: %v", err))
	}
	return db
}

// initChain writes the genesis on an empty db, and drops the events of blocks
// that never made it into the chain db.
func initChain(gene *genesis.Genesis, db *lvldb.LevelDB, eventDB *eventdb.EventDB) *chain.Repository {
	repo, err := chain.NewRepository(db)
	if err != nil {
		fatal("initialize block chain:", err)
	}
	evs, err := gene.Init(repo)
	if err != nil {
		fatal("initialize block chain:", err)
	}
	if evs != nil {
		if err := eventDB.Insert(eventdb.NewEvents(0, gene.LaunchTime(), evs)); err != nil {
			fatal("write genesis events:", err)
		}
	}
	if err := eventDB.Truncate(repo.BestSummary().Number); err != nil {
		fatal("truncate event database:", err)
	}
	return repo
}

func startAPIServer(addr string, handler http.Handler) (string, func()) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}
}

func startMetricsServer(addr string) (string, func()) {
	metrics.InitializePrometheusMetrics()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen metrics addr [%v]: %v", addr, err))
	}
	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: router, ReadHeaderTimeout: time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}
}

func handleExitSignal() <-chan os.Signal {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
	return exitSignalCh
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".parastaking")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func printStartupMessage(gene *genesis.Genesis, repo *chain.Repository, dataDir, apiURL, metricsURL, adminURL, nodeID string) {
	best := repo.BestSummary()
	if dataDir == "" {
		dataDir = "in memory"
	}
	if metricsURL == "" {
		metricsURL = "disabled"
	}
	if adminURL == "" {
		adminURL = "disabled"
	}
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Best block   [ %v #%v @%v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
    Node ID      [ %v ]
`,
		fullVersion(),
		gene.ID(), gene.Name(),
		best.ID, best.Number, time.Unix(int64(best.Timestamp), 0),
		dataDir,
		apiURL,
		metricsURL,
		adminURL,
		nodeID)
}
