package eth

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Dial connects to a node over any transport supported by rpc (http, ws, ipc).
func Dial(ctx context.Context, rawurl string) (*ethclient.Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", rawurl)
	}
	return ethclient.NewClient(rpcClient), nil
}
