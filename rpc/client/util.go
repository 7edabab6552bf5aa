package client

import (
	"context"

	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/serializer"
	"github.com/ValentinKolb/dTX/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPC account service with composition pattern
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// Failures reported by the server are returned as the *store.Error the server produced,
// failures of the rpc layer itself as RetCInternalError
func invokeRPCRequest(ctx context.Context, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, store.NewError(store.RetCInternalError, "RPC client - serialize: %s", err)
	}

	respBytes, err := transport.Send(ctx, reqBytes)
	if err != nil {
		Logger.Debugf("RPC client - %s request failed: %v", req.MsgType, err)
		return nil, store.NewError(store.RetCInternalError, "RPC client - send: %s", err)
	}

	resp := &common.Message{}
	if err = serializer.Deserialize(respBytes, resp); err != nil {
		return nil, store.NewError(store.RetCInternalError, "RPC client - deserialize: %s", err)
	}

	// Check if the response is an error response
	if err := resp.AsError(); err != nil {
		return nil, err
	}
	if resp.MsgType == common.MsgTError {
		return nil, store.NewError(store.RetCInternalError, "RPC client - error response without message")
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, store.NewError(store.RetCInternalError,
			"RPC client - unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}
