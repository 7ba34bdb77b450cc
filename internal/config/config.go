package config

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// LoadDotEnv loads a local .env file if present, the way taiko-client's
// cmd entrypoints do before flag parsing. A missing file is not an
// error; this is a local/dev convenience only.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}

// MonitorConfig is the assembled configuration for cmd/monitor: a thin
// copy of the parsed flags, no validation framework and no hot reload
// per the system's scope.
type MonitorConfig struct {
	DBHost     string
	DBPort     uint
	DBUser     string
	DBPassword string
	DBName     string

	NodeHost string
	NodePort uint

	ProverProtocol string
	ProverHost     string
	ProverPort     uint
	ProverTimeout  time.Duration

	JSONRPCPort uint
	MetricsPort uint
}

// NewMonitorConfigFromCliContext assembles a MonitorConfig from a parsed
// cli.Context, mirroring taiko-client's NewConfigFromCliContext
// convention (prover/prover.go, proposer/proposer.go).
func NewMonitorConfigFromCliContext(c *cli.Context) (*MonitorConfig, error) {
	return &MonitorConfig{
		DBHost:         c.String(DBHost.Name),
		DBPort:         c.Uint(DBPort.Name),
		DBUser:         c.String(DBUser.Name),
		DBPassword:     c.String(DBPassword.Name),
		DBName:         c.String(DBName.Name),
		NodeHost:       c.String(NodeHost.Name),
		NodePort:       c.Uint(NodePort.Name),
		ProverProtocol: c.String(ProverProtocol.Name),
		ProverHost:     c.String(ProverHost.Name),
		ProverPort:     c.Uint(ProverPort.Name),
		ProverTimeout:  c.Duration(ProverTimeout.Name),
		JSONRPCPort:    c.Uint(JSONRPCPort.Name),
		MetricsPort:    c.Uint(MetricsPort.Name),
	}, nil
}

// DSN builds the Postgres connection string gorm's driver and
// lib/pq's Listener both accept.
func (m *MonitorConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		m.DBHost, m.DBPort, m.DBUser, m.DBPassword, m.DBName,
	)
}

// NodeWSEndpoint builds the chain node's websocket endpoint, required
// for log subscriptions (PhaseChanged).
func (m *MonitorConfig) NodeWSEndpoint() string {
	return fmt.Sprintf("ws://%s:%d", m.NodeHost, m.NodePort)
}

// ProverEndpoint builds the external prover's JSON-RPC endpoint.
func (m *MonitorConfig) ProverEndpoint() string {
	return fmt.Sprintf("%s://%s:%d", m.ProverProtocol, m.ProverHost, m.ProverPort)
}

// RPCListenAddr builds the Monitor RPC server's HTTP listen address.
func (m *MonitorConfig) RPCListenAddr() string {
	return fmt.Sprintf(":%d", m.JSONRPCPort)
}

// MetricsListenAddr builds the metrics server's HTTP listen address.
func (m *MonitorConfig) MetricsListenAddr() string {
	return fmt.Sprintf(":%d", m.MetricsPort)
}

// GuestConfig is the assembled configuration for cmd/guest.
type GuestConfig struct {
	NodeHost string
	NodePort uint

	Contract         common.Address
	Block            uint64
	CommitmentID     *big.Int
	CommitmentDigest common.Hash
}

// NewGuestConfigFromCliContext assembles a GuestConfig from a parsed
// cli.Context.
func NewGuestConfigFromCliContext(c *cli.Context) (*GuestConfig, error) {
	id, ok := new(big.Int).SetString(c.String(GuestCommitmentID.Name), 10)
	if !ok {
		return nil, fmt.Errorf("config: %s is not a valid decimal integer", GuestCommitmentID.Name)
	}
	return &GuestConfig{
		NodeHost:         c.String(NodeHost.Name),
		NodePort:         c.Uint(NodePort.Name),
		Contract:         common.HexToAddress(c.String(GuestContract.Name)),
		Block:            c.Uint64(GuestBlock.Name),
		CommitmentID:     id,
		CommitmentDigest: common.HexToHash(c.String(GuestCommitmentDigest.Name)),
	}, nil
}

// NodeHTTPEndpoint builds the chain node's HTTP endpoint, sufficient for
// the guest's pinned historical calls (no subscriptions needed).
func (g *GuestConfig) NodeHTTPEndpoint() string {
	return fmt.Sprintf("http://%s:%d", g.NodeHost, g.NodePort)
}
