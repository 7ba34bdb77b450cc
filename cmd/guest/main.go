// Command guest runs the TTC solver against an escrow contract's state
// at a pinned block and writes the resulting journal to stdout. It is
// the piece of this module that would run inside the zero-knowledge
// execution environment; everything downstream of the printed journal
// (wrapping it in a proof, verifying it on-chain) is out of scope.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/l-adic/ttc-monitor/internal/config"
	"github.com/l-adic/ttc-monitor/internal/guest"
	"github.com/l-adic/ttc-monitor/internal/journal"
)

func main() {
	app := &cli.App{
		Name:  "guest",
		Usage: "solve an escrow contract's top trading cycle at a pinned block and print the journal",
		Flags: config.GuestFlags,
		Action: func(c *cli.Context) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.NewGuestConfigFromCliContext(c)
			if err != nil {
				return err
			}
			return run(c.Context, cfg)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("guest: fatal error", "err", err)
	}
}

func run(ctx context.Context, cfg *config.GuestConfig) error {
	backend, err := ethclient.DialContext(ctx, cfg.NodeHTTPEndpoint())
	if err != nil {
		return fmt.Errorf("guest: dial chain node: %w", err)
	}
	defer backend.Close()

	reader, err := guest.NewContractReader(cfg.Contract, backend)
	if err != nil {
		return fmt.Errorf("guest: build contract reader: %w", err)
	}

	program := &guest.Program{Reader: reader, TTCContract: cfg.Contract}
	commitment := journal.Commitment{ID: cfg.CommitmentID, Digest: cfg.CommitmentDigest}

	j, err := program.Run(ctx, cfg.Block, commitment)
	if err != nil {
		return fmt.Errorf("guest: run: %w", err)
	}

	encoded, err := journal.Encode(j)
	if err != nil {
		return fmt.Errorf("guest: encode journal: %w", err)
	}

	fmt.Println(hex.EncodeToString(encoded))
	return nil
}
