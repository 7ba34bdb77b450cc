package config

import (
	"flag"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func cliContext(t *testing.T, flags []cli.Flag, args []string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestNewMonitorConfigFromCliContext(t *testing.T) {
	c := cliContext(t, MonitorFlags, []string{
		"--db.host=db.local",
		"--db.port=5433",
		"--db.user=ttc",
		"--db.password=secret",
		"--db.name=ttc_monitor",
		"--node.host=node.local",
		"--node.port=8545",
		"--prover.host=prover.local",
		"--prover.port=9000",
		"--prover.timeout=60s",
		"--rpc.port=8081",
		"--metrics.port=9091",
	})

	cfg, err := NewMonitorConfigFromCliContext(c)
	require.NoError(t, err)
	require.Equal(t, "db.local", cfg.DBHost)
	require.Equal(t, uint(5433), cfg.DBPort)
	require.Equal(t, 60*time.Second, cfg.ProverTimeout)
	require.Equal(t, "host=db.local port=5433 user=ttc password=secret dbname=ttc_monitor sslmode=disable", cfg.DSN())
	require.Equal(t, "ws://node.local:8545", cfg.NodeWSEndpoint())
	require.Equal(t, "http://prover.local:9000", cfg.ProverEndpoint())
	require.Equal(t, ":8081", cfg.RPCListenAddr())
	require.Equal(t, ":9091", cfg.MetricsListenAddr())
}

func TestNewGuestConfigFromCliContext(t *testing.T) {
	c := cliContext(t, GuestFlags, []string{
		"--node.host=archive.local",
		"--node.port=8545",
		"--contract=0x0000000000000000000000000000000000000042",
		"--block=100",
		"--commitment.id=12345",
		"--commitment.digest=0x0000000000000000000000000000000000000000000000000000000000000001",
	})

	cfg, err := NewGuestConfigFromCliContext(c)
	require.NoError(t, err)
	require.Equal(t, "http://archive.local:8545", cfg.NodeHTTPEndpoint())
	require.Equal(t, uint64(100), cfg.Block)
	require.Equal(t, big.NewInt(12345), cfg.CommitmentID)
}
