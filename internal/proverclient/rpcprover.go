package proverclient

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// proveResult is the wire shape of the prover backend's prove response.
type proveResult struct {
	Journal hexutil.Bytes `json:"journal"`
	Seal    hexutil.Bytes `json:"seal"`
}

// RPCProver is the production ProverRPC, backed by a JSON-RPC 2.0
// connection to the external prover process.
type RPCProver struct {
	client  *rpc.Client
	timeout time.Duration
}

// DialRPCProver connects to the prover backend at url (e.g.
// "http://host:port") and returns a Prover RPC client that applies
// timeout to every outgoing request.
func DialRPCProver(ctx context.Context, url string, timeout time.Duration) (*RPCProver, error) {
	var client *rpc.Client
	err := backoff.Retry(func() error {
		c, err := rpc.DialContext(ctx, url)
		if err != nil {
			return err
		}
		client = c
		return nil
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return nil, fmt.Errorf("proverclient: dial %s: %w", url, err)
	}
	return &RPCProver{client: client, timeout: timeout}, nil
}

func (p *RPCProver) Prove(ctx context.Context, addr common.Address) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var result proveResult
	if err := p.client.CallContext(ctx, &result, "prover_prove", addr); err != nil {
		return nil, nil, fmt.Errorf("prover_prove %s: %w", addr, err)
	}
	return result.Journal, result.Seal, nil
}

func (p *RPCProver) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.CallContext(ctx, nil, "prover_healthCheck")
}

func (p *RPCProver) ImageIDContract(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	var imageID string
	if err := p.client.CallContext(ctx, &imageID, "prover_getImageIdContract"); err != nil {
		return "", fmt.Errorf("prover_getImageIdContract: %w", err)
	}
	return imageID, nil
}

// Close releases the underlying connection.
func (p *RPCProver) Close() {
	p.client.Close()
}
