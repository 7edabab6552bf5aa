package client

import (
	"context"

	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/serializer"
	"github.com/ValentinKolb/dTX/rpc/transport"
)

// NewRPCAccountService creates a new RPC IAccountService
// The function takes a config, a transport and a serializer as parameters
// It returns an account.IAccountService and an error
func NewRPCAccountService(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (account.IAccountService, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcAccountService{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcAccountService struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the account package in interface.go)
// --------------------------------------------------------------------------

func (c *rpcAccountService) CreateAccount(ctx context.Context, name string, initialBalance int64) error {
	req := common.NewCreateAccountRequest(name, initialBalance)
	_, err := invokeRPCRequest(ctx, req, c.transport, c.serializer)
	return err
}

func (c *rpcAccountService) GetBalance(ctx context.Context, name string) (int64, error) {
	req := common.NewGetBalanceRequest(name)
	resp, err := invokeRPCRequest(ctx, req, c.transport, c.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

func (c *rpcAccountService) TransferFundsWithBroker(ctx context.Context, firstEmitter, secondEmitter, recipient, broker string, cash, fee int64) error {
	req := common.NewTransferRequest(firstEmitter, secondEmitter, recipient, broker, cash, fee)
	_, err := invokeRPCRequest(ctx, req, c.transport, c.serializer)
	return err
}
