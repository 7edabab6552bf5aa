package server

import (
	"context"

	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/rpc/common"
)

// transferParties is the number of accounts a transfer request names
const transferParties = 4

func NewAccountServerAdapter() IRPCServerAdapter {
	return &accountServerAdapterImpl{}
}

type accountServerAdapterImpl struct{}

func (adapter *accountServerAdapterImpl) Handle(ctx context.Context, req *common.Message, svc account.IAccountService) *common.Message {
	if svc == nil {
		return common.NewErrorResponse(store.RetCInternalError, "handler: account service is nil")
	}

	switch req.MsgType {
	case common.MsgTCreateAccount:
		err := svc.CreateAccount(ctx, req.Name, req.Amount)
		return common.NewCreateAccountResponse(err)
	case common.MsgTGetBalance:
		balance, err := svc.GetBalance(ctx, req.Name)
		return common.NewGetBalanceResponse(balance, err)
	case common.MsgTTransfer:
		if len(req.Parties) != transferParties {
			return common.NewTransferResponse(store.NewError(store.RetCInvalidState,
				"transfer needs %d parties, got %d", transferParties, len(req.Parties)))
		}
		p := req.Parties
		err := svc.TransferFundsWithBroker(ctx, p[0], p[1], p[2], p[3], req.Amount, req.Fee)
		return common.NewTransferResponse(err)
	default:
		return common.NewErrorResponse(store.RetCInvalidState,
			"RPC AccountAdapter - Unsupported message type: "+req.MsgType.String())
	}
}
