// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to the genesis file (admin, balances, attestations)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8553",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiRecordsLimitFlag = cli.Uint64Flag{
		Name:  "api-records-limit",
		Value: 1000,
		Usage: "limit the number of records returned by /records API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the audit database (in-memory if empty)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 2,
		Usage: "log verbosity (0=error, 1=warn, 2=info, 3=debug, 4=trace)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
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
	epochDurationFlag = cli.Uint64Flag{
		Name:  "epoch-duration",
		Usage: "seconds per epoch (overrides the built-in default)",
	}
	epochsPerDayFlag = cli.Uint64Flag{
		Name:  "epochs-per-day",
		Usage: "epochs per day used by yield estimates (overrides the built-in default)",
	}
	startEpochFlag = cli.Uint64Flag{
		Name:  "start-epoch",
		Usage: "epoch counter value at process start",
	}
)
