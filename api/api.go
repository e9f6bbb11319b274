// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/api/admin"
	"github.com/epochfarm/farm/api/events"
	"github.com/epochfarm/farm/api/records"
	"github.com/epochfarm/farm/api/stakes"
	"github.com/epochfarm/farm/auditdb"
	"github.com/epochfarm/farm/log"
	"github.com/epochfarm/farm/staking"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	RecordsLimit    uint64
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(
	svc *staking.Service,
	audit *auditdb.AuditDB,
	epoch farm.EpochSource,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	events.New(svc, epoch).
		Mount(router, "/events")
	stakes.New(svc, epoch).
		Mount(router, "/stakes")
	admin.New(svc, epoch).
		Mount(router, "/admin")
	if audit != nil {
		records.New(audit, opts.RecordsLimit).
			Mount(router, "/records")
	}

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

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}
