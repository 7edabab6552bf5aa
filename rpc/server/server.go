package server

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/lib/lockmgr"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/lib/store/mstore"
	"github.com/ValentinKolb/dTX/lib/txn"
	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/serializer"
	"github.com/ValentinKolb/dTX/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}
}

// RPCServer serves one account service over a transport
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	tm         *txn.Manager
	svc        account.IAccountService
}

// NewRequestHandler returns the transport handler that decodes a request, runs it
// against svc and encodes the response.
func NewRequestHandler(svc account.IAccountService, ser serializer.IRPCSerializer) transport.ServerHandleFunc {
	adapter := NewAccountServerAdapter()

	return func(req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		if err := ser.Deserialize(req, &msg); err != nil {
			respMsg = *common.NewErrorResponse(store.RetCInvalidState,
				fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			respMsg = *adapter.Handle(context.Background(), &msg, svc)
		}

		val, err := ser.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = ser.Serialize(*common.NewErrorResponse(store.RetCInternalError,
				fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	}
}

// init creates the store, lock manager, transaction manager and account service
// and registers the request handler on the transport
func (s *RPCServer) init() error {
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	txConfig := txn.DefaultConfig()
	if timeout, ok := s.config.LockTimeout(); ok {
		txConfig.LockTimeout = timeout
	}

	s.tm = txn.NewTransactionManager(mstore.NewMemoryStore(), lockmgr.NewLockManager(), txConfig)
	s.svc = account.NewAccountService(s.tm)

	Logger.Infof("dTX setup completed successfully (lock timeout %s)", s.tm.LockTimeout())

	s.transport.RegisterHandler(NewRequestHandler(s.svc, s.serializer))
	return nil
}

// Serve starts the RPC server
// This function will also initialize the account service and start the transport layer
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
