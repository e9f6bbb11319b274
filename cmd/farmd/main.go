// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/api"
	"github.com/epochfarm/farm/auditdb"
	"github.com/epochfarm/farm/ledger"
	"github.com/epochfarm/farm/log"
	"github.com/epochfarm/farm/metrics"
	"github.com/epochfarm/farm/staking"
	"github.com/epochfarm/farm/staking/eligibility"
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
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "farmd",
		Usage:     "Time-weighted staking rewards engine",
		Copyright: "2025 The EpochFarm developers",
		Flags: []cli.Flag{
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiRecordsLimitFlag,
			enableAPILogsFlag,
			dataDirFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			epochDurationFlag,
			epochsPerDayFlag,
			startEpochFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	farm.AverageEpochDuration.Override(uint32(ctx.Uint64(epochDurationFlag.Name)))
	farm.EpochsPerDay.Override(uint32(ctx.Uint64(epochsPerDayFlag.Name)))

	genePath := ctx.String(genesisFlag.Name)
	if genePath == "" {
		fatal("genesis file required")
	}
	gene, err := loadGenesis(genePath)
	if err != nil {
		fatal(err)
	}
	policy, _ := gene.fundingPolicy()

	audit := openAuditDB(ctx)
	defer func() { logger.Info("closing audit database..."); audit.Close() }()

	book := ledger.NewBook()
	for account, balance := range gene.Balances {
		book.Mint(account, balance)
	}
	oracle := eligibility.NewMemoryOracle()
	for account, tags := range gene.Attestations {
		for _, tag := range tags {
			oracle.Attest(account, tag)
		}
	}

	svc := staking.New(book, oracle, audit, staking.Options{
		Admin:           gene.Admin,
		FundingPolicy:   policy,
		EligibilityTags: gene.Tags,
	})
	for _, manager := range gene.Managers {
		if _, err := svc.GrantManager(gene.Admin, manager); err != nil {
			fatal(err)
		}
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	ticker := newEpochTicker(
		uint32(ctx.Uint64(startEpochFlag.Name)),
		time.Duration(farm.AverageEpochDuration.Get())*time.Second,
	)

	handler := api.New(svc, audit, ticker, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		RecordsLimit:    ctx.Uint64(apiRecordsLimitFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})

	logger.Info("starting",
		"version", fullVersion(),
		"admin", gene.Admin,
		"accounts", len(gene.Balances),
		"epoch-duration", farm.AverageEpochDuration.Get())

	return runServices(ctx, ticker, handler)
}

func openAuditDB(ctx *cli.Context) *auditdb.AuditDB {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		db, err := auditdb.NewMem()
		if err != nil {
			fatal(err)
		}
		return db
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatal(err)
	}
	db, err := auditdb.New(filepath.Join(dataDir, "audit.db"))
	if err != nil {
		fatal(err)
	}
	return db
}

func runServices(ctx *cli.Context, ticker *epochTicker, handler http.HandlerFunc) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		select {
		case sig := <-handleExitSignal():
			logger.Info("received exit signal", "signal", sig)
			cancel()
		case <-groupCtx.Done():
		}
		return nil
	})

	group.Go(func() error {
		err := ticker.Run(groupCtx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	group.Go(func() error {
		return serveHTTP(groupCtx, "API", ctx.String(apiAddrFlag.Name), handler)
	})

	if ctx.Bool(enableMetricsFlag.Name) {
		group.Go(func() error {
			return serveHTTP(groupCtx, "metrics", ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler())
		})
	}

	return group.Wait()
}

func serveHTTP(ctx context.Context, name, addr string, handler http.Handler) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	logger.Info(name+" server started", "addr", "http://"+listener.Addr().String())

	select {
	case <-ctx.Done():
		logger.Info("stopping " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
