// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the chain, staking and inflation state over HTTP.
package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/parastaking/api/accounts"
	"github.com/vechain/parastaking/api/blocks"
	"github.com/vechain/parastaking/api/calls"
	"github.com/vechain/parastaking/api/events"
	"github.com/vechain/parastaking/api/inflation"
	"github.com/vechain/parastaking/api/middleware"
	"github.com/vechain/parastaking/api/node"
	"github.com/vechain/parastaking/api/staking"
	"github.com/vechain/parastaking/api/subscriptions"
	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/runtime"
	"github.com/vechain/parastaking/thor"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          uint64
	PprofOn              bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
}

// Backend gathers what the handlers read from.
type Backend struct {
	Repo      *chain.Repository
	Config    runtime.Config
	Pool      callpool.Pool
	EventDB   *eventdb.EventDB
	GenesisID thor.Bytes32
	Name      string
}

// New returns the api handler, and a func closing the websocket subscriptions.
func New(b *Backend, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}

	router := mux.NewRouter()

	accounts.New(b.Repo, b.Config).
		Mount(router, "/accounts")
	blocks.New(b.Repo).
		Mount(router, "/blocks")
	staking.New(b.Repo, b.Config).
		Mount(router, "/staking")
	inflation.New(b.Repo, b.Config).
		Mount(router, "/inflation")
	events.New(b.EventDB, opts.EventsLimit).
		Mount(router, "/events")
	calls.New(b.Pool).
		Mount(router, "/calls")
	node.New(b.Repo, b.Pool, b.GenesisID, b.Name).
		Mount(router, "/node")
	subs := subscriptions.New(b.Repo, origins, b.EventDB, b.Pool)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(genesisHeader(b.GenesisID))
	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)

	return handler.ServeHTTP, subs.Close
}

func genesisHeader(id thor.Bytes32) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v := r.Header.Get("x-genesis-id"); v != "" && v != id.String() {
				http.Error(w, "genesis id mismatch", http.StatusForbidden)
				return
			}
			w.Header().Set("x-genesis-id", id.String())
			next.ServeHTTP(w, r)
		})
	}
}
