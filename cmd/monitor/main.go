// Command monitor runs the full TTC escrow proving monitor service: it
// serves the monitor JSON-RPC namespace, watches escrow contracts for
// their Trade-phase transition, dispatches proving work, and persists
// job/proof state in Postgres.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/l-adic/ttc-monitor/internal/chainwatch"
	"github.com/l-adic/ttc-monitor/internal/config"
	"github.com/l-adic/ttc-monitor/internal/escrow"
	"github.com/l-adic/ttc-monitor/internal/events"
	"github.com/l-adic/ttc-monitor/internal/metrics"
	"github.com/l-adic/ttc-monitor/internal/monitorrpc"
	"github.com/l-adic/ttc-monitor/internal/proverclient"
	"github.com/l-adic/ttc-monitor/internal/store"
	"github.com/l-adic/ttc-monitor/internal/store/notify"
)

// instrumentedStore wraps *store.Store to record the jobs_created_total
// and jobs_terminal_total counters in the three methods the service uses
// to mark a job created or terminal (CreateJob, CompleteProof, SetError).
type instrumentedStore struct {
	*store.Store
	m *metrics.Metrics
}

func (s *instrumentedStore) CreateJob(ctx context.Context, addr common.Address, blockNumber uint64, blockTimestamp time.Time) error {
	if err := s.Store.CreateJob(ctx, addr, blockNumber, blockTimestamp); err != nil {
		return err
	}
	s.m.JobsCreated.Inc()
	return nil
}

func (s *instrumentedStore) CompleteProof(ctx context.Context, addr common.Address, journal, seal []byte, at time.Time) error {
	if err := s.Store.CompleteProof(ctx, addr, journal, seal, at); err != nil {
		return err
	}
	s.m.JobsTerminal.WithLabelValues("completed").Inc()
	return nil
}

func (s *instrumentedStore) SetError(ctx context.Context, addr common.Address, msg string, at time.Time) error {
	if err := s.Store.SetError(ctx, addr, msg, at); err != nil {
		return err
	}
	s.m.JobsTerminal.WithLabelValues("errored").Inc()
	return nil
}

// instrumentedProver wraps a ProverRPC to record request latency in the
// prover_request_duration_seconds histogram.
type instrumentedProver struct {
	proverclient.ProverRPC
	m *metrics.Metrics
}

func (p *instrumentedProver) Prove(ctx context.Context, addr common.Address) ([]byte, []byte, error) {
	start := time.Now()
	defer func() { p.m.ProverRequestSecs.Observe(time.Since(start).Seconds()) }()
	return p.ProverRPC.Prove(ctx, addr)
}

// failedTask reports err immediately when run, used when the Events
// Manager's task factory cannot bind an escrow client for a requested
// address; the watch request still surfaces as a failed task rather
// than a nil-pointer panic deep inside chainwatch.
type failedTask struct{ err error }

func (t failedTask) Run(ctx context.Context, fromBlock uint64) error { return t.err }

// escrowClientCache memoizes bound escrow.Client instances per
// contract address so repeated RPC calls and watch requests for the
// same contract don't re-parse its ABI and re-bind its caller/
// transactor/filterer on every lookup.
type escrowClientCache struct {
	cache   *lru.Cache[common.Address, escrow.Client]
	backend bind.ContractBackend
}

func newEscrowClientCache(backend bind.ContractBackend, size int) (*escrowClientCache, error) {
	c, err := lru.New[common.Address, escrow.Client](size)
	if err != nil {
		return nil, fmt.Errorf("monitor: build escrow client cache: %w", err)
	}
	return &escrowClientCache{cache: c, backend: backend}, nil
}

func (c *escrowClientCache) resolve(addr common.Address) (escrow.Client, error) {
	if es, ok := c.cache.Get(addr); ok {
		return es, nil
	}
	es, err := escrow.NewClient(addr, c.backend)
	if err != nil {
		return nil, err
	}
	c.cache.Add(addr, es)
	return es, nil
}

func main() {
	app := &cli.App{
		Name:  "monitor",
		Usage: "watch escrow contracts and drive proving jobs to completion",
		Flags: config.MonitorFlags,
		Action: func(c *cli.Context) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.NewMonitorConfigFromCliContext(c)
			if err != nil {
				return err
			}
			return run(c.Context, cfg)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("monitor: fatal error", "err", err)
	}
}

func run(ctx context.Context, cfg *config.MonitorConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("monitor: open db: %w", err)
	}
	if err := store.Migrate(sqlDB); err != nil {
		return fmt.Errorf("monitor: migrate: %w", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("monitor: open gorm: %w", err)
	}

	reg := prometheus.NewRegistry()
	collectors := metrics.New(reg)
	db := &instrumentedStore{Store: store.New(gormDB), m: collectors}

	notifier := notify.New(cfg.DSN())
	if err := notifier.Start(ctx); err != nil {
		return fmt.Errorf("monitor: start notifier: %w", err)
	}
	defer notifier.Close()

	ethClient, err := ethclient.DialContext(ctx, cfg.NodeWSEndpoint())
	if err != nil {
		return fmt.Errorf("monitor: dial chain node: %w", err)
	}
	defer ethClient.Close()

	rpcProver, err := proverclient.DialRPCProver(ctx, cfg.ProverEndpoint(), cfg.ProverTimeout)
	if err != nil {
		return fmt.Errorf("monitor: dial prover: %w", err)
	}
	defer rpcProver.Close()

	escrowClients, err := newEscrowClientCache(ethClient, 256)
	if err != nil {
		return err
	}
	escrowFor := escrowClients.resolve

	instrumentedRPCProver := &instrumentedProver{ProverRPC: rpcProver, m: collectors}
	prover := &proverclient.Client{
		EscrowFor: escrowFor,
		Jobs:      db,
		Prover:    instrumentedRPCProver,
	}

	newTask := func(addr common.Address) events.Task {
		es, err := escrowFor(addr)
		if err != nil {
			return failedTask{err: fmt.Errorf("bind escrow client %s: %w", addr, err)}
		}
		return &chainwatch.Watcher{
			Address: addr,
			Escrow:  es,
			Headers: ethClient,
			Jobs:    db,
			Prover:  prover,
		}
	}
	eventsManager := events.NewManager(newTask)
	go eventsManager.Run(ctx, notifier)

	metricsServer := metrics.NewServer(cfg.MetricsListenAddr(), reg)
	go func() {
		if err := metricsServer.ListenAndServe(ctx); err != nil {
			log.Error("monitor: metrics server exited", "err", err)
		}
	}()

	api := &monitorrpc.API{
		Jobs:   db,
		Escrow: escrowFor,
		Events: eventsManager,
		Prover: instrumentedRPCProver,
	}
	rpcServer, err := monitorrpc.NewServer(api)
	if err != nil {
		return fmt.Errorf("monitor: build rpc server: %w", err)
	}

	log.Info("monitor: listening", "rpc", cfg.RPCListenAddr(), "metrics", cfg.MetricsListenAddr())
	return rpcServer.ListenAndServe(ctx, cfg.RPCListenAddr())
}
