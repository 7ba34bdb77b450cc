// Package config declares the urfave/cli flag sets for the service's
// entrypoints, mirroring taiko-client's cmd/flags package: one flag set
// per component, grouped under a named Category, with matching EnvVars
// so every option is also settable from the environment (and, via
// godotenv, a local .env file).
package config

import (
	"time"

	"github.com/urfave/cli/v2"
)

const (
	dbCategory     = "DATABASE"
	nodeCategory   = "CHAIN NODE"
	proverCategory = "PROVER"
	rpcCategory    = "JSON-RPC"
	guestCategory  = "GUEST"
)

// Database connection flags.
var (
	DBHost = &cli.StringFlag{
		Name:     "db.host",
		Usage:    "Postgres host",
		Value:    "localhost",
		Category: dbCategory,
		EnvVars:  []string{"DB_HOST"},
	}
	DBPort = &cli.UintFlag{
		Name:     "db.port",
		Usage:    "Postgres port",
		Value:    5432,
		Category: dbCategory,
		EnvVars:  []string{"DB_PORT"},
	}
	DBUser = &cli.StringFlag{
		Name:     "db.user",
		Usage:    "Postgres user",
		Required: true,
		Category: dbCategory,
		EnvVars:  []string{"DB_USER"},
	}
	DBPassword = &cli.StringFlag{
		Name:     "db.password",
		Usage:    "Postgres password",
		Required: true,
		Category: dbCategory,
		EnvVars:  []string{"DB_PASSWORD"},
	}
	DBName = &cli.StringFlag{
		Name:     "db.name",
		Usage:    "Postgres database name",
		Required: true,
		Category: dbCategory,
		EnvVars:  []string{"DB_NAME"},
	}
)

// Chain node connection flags.
var (
	NodeHost = &cli.StringFlag{
		Name:     "node.host",
		Usage:    "Host of the chain node's JSON-RPC/WS endpoint",
		Value:    "localhost",
		Category: nodeCategory,
		EnvVars:  []string{"NODE_HOST"},
	}
	NodePort = &cli.UintFlag{
		Name:     "node.port",
		Usage:    "Port of the chain node's JSON-RPC/WS endpoint",
		Required: true,
		Category: nodeCategory,
		EnvVars:  []string{"NODE_PORT"},
	}
)

// Prover backend connection flags.
var (
	ProverProtocol = &cli.StringFlag{
		Name:     "prover.protocol",
		Usage:    "Protocol of the external prover's JSON-RPC endpoint (http or https)",
		Value:    "http",
		Category: proverCategory,
		EnvVars:  []string{"PROVER_PROTOCOL"},
	}
	ProverHost = &cli.StringFlag{
		Name:     "prover.host",
		Usage:    "Host of the external prover's JSON-RPC endpoint",
		Required: true,
		Category: proverCategory,
		EnvVars:  []string{"PROVER_HOST"},
	}
	ProverPort = &cli.UintFlag{
		Name:     "prover.port",
		Usage:    "Port of the external prover's JSON-RPC endpoint",
		Required: true,
		Category: proverCategory,
		EnvVars:  []string{"PROVER_PORT"},
	}
	ProverTimeout = &cli.DurationFlag{
		Name:     "prover.timeout",
		Usage:    "Request timeout for a single prove/proveAsync call",
		Value:    300 * time.Second,
		Category: proverCategory,
		EnvVars:  []string{"PROVER_TIMEOUT"},
	}
)

// Monitor RPC and metrics server flags.
var (
	JSONRPCPort = &cli.UintFlag{
		Name:     "rpc.port",
		Usage:    "Port the monitor namespace's JSON-RPC server listens on",
		Value:    8080,
		Category: rpcCategory,
		EnvVars:  []string{"JSON_RPC_PORT"},
	}
	MetricsPort = &cli.UintFlag{
		Name:     "metrics.port",
		Usage:    "Port the Prometheus /metrics endpoint listens on",
		Value:    9090,
		Category: rpcCategory,
		EnvVars:  []string{"METRICS_PORT"},
	}
)

// MonitorFlags is the complete flag set for cmd/monitor.
var MonitorFlags = []cli.Flag{
	DBHost, DBPort, DBUser, DBPassword, DBName,
	NodeHost, NodePort,
	ProverProtocol, ProverHost, ProverPort, ProverTimeout,
	JSONRPCPort, MetricsPort,
}

// Guest program input flags: everything the execution environment
// would otherwise pass as private inputs, supplied here as plain flags
// since this module's scope stops at producing the journal (§4.8's
// Non-goals exclude the proving backend itself).
var (
	GuestContract = &cli.StringFlag{
		Name:     "contract",
		Usage:    "Address of the escrow contract to read",
		Required: true,
		Category: guestCategory,
		EnvVars:  []string{"GUEST_CONTRACT"},
	}
	GuestBlock = &cli.Uint64Flag{
		Name:     "block",
		Usage:    "Block number the commitment pins the read to",
		Required: true,
		Category: guestCategory,
		EnvVars:  []string{"GUEST_BLOCK"},
	}
	GuestCommitmentID = &cli.StringFlag{
		Name:     "commitment.id",
		Usage:    "Commitment ID assigned by the execution environment (decimal)",
		Required: true,
		Category: guestCategory,
		EnvVars:  []string{"GUEST_COMMITMENT_ID"},
	}
	GuestCommitmentDigest = &cli.StringFlag{
		Name:     "commitment.digest",
		Usage:    "Commitment digest assigned by the execution environment (32-byte hex)",
		Required: true,
		Category: guestCategory,
		EnvVars:  []string{"GUEST_COMMITMENT_DIGEST"},
	}
)

// GuestFlags is the complete flag set for cmd/guest.
var GuestFlags = []cli.Flag{
	NodeHost, NodePort,
	GuestContract, GuestBlock, GuestCommitmentID, GuestCommitmentDigest,
}
