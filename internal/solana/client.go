package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrMissingEndpoint is returned when no RPC endpoint is configured
var ErrMissingEndpoint = errors.New("solana RPC endpoint is not set")

// Client represents a connection to the Solana blockchain
type Client struct {
	rpcClient *rpc.Client
	endpoint  string
}

// NewClient creates a new Solana client and verifies connectivity
func NewClient(endpoint string) (*Client, error) {
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	rpcClient := rpc.New(endpoint)

	// Check connection by getting the latest block height
	_, err := rpcClient.GetBlockHeight(context.Background(), rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Solana RPC: %w", err)
	}

	return &Client{
		rpcClient: rpcClient,
		endpoint:  endpoint,
	}, nil
}

// TokenSupply returns the current circulating supply of a token mint
// in UI units, already adjusted for the mint's decimals.
func (c *Client) TokenSupply(ctx context.Context, mintAddress string) (float64, error) {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return 0, fmt.Errorf("invalid mint address %s: %w", mintAddress, err)
	}

	result, err := c.rpcClient.GetTokenSupply(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get token supply for %s: %w", mintAddress, err)
	}

	if result == nil || result.Value == nil || result.Value.UiAmount == nil {
		return 0, nil
	}

	return *result.Value.UiAmount, nil
}
