package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/dTX/lib/store"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Name    string   `json:"name,omitempty"`    // Used for: CreateAccount, GetBalance
	Parties []string `json:"parties,omitempty"` // Used for: Transfer (firstEmitter, secondEmitter, recipient, broker)
	Amount  int64    `json:"amount,omitempty"`  // Used for: CreateAccount (initial), GetBalance (response), Transfer (cash)
	Fee     int64    `json:"fee,omitempty"`     // Used for: Transfer

	// Response only fields
	Code store.RetCode `json:"code,omitempty"` // RetCSuccess if no error, otherwise the error class
	Err  string        `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
}

// AsError converts the error fields of a response back into a *store.Error.
// Returns nil for successful responses.
func (m *Message) AsError() error {
	if m.Code == store.RetCSuccess && m.Err == "" {
		return nil
	}
	code := m.Code
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return &store.Error{Code: code, Msg: m.Err}
}

// setErr fills the error fields of a response
func (m *Message) setErr(err error) *Message {
	if err != nil {
		m.Code = store.CodeOf(err)
		var serr *store.Error
		if errors.As(err, &serr) {
			m.Err = serr.Msg
		} else {
			m.Err = err.Error()
		}
	}
	return m
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewCreateAccountRequest creates a new CreateAccount request
func NewCreateAccountRequest(name string, initialBalance int64) *Message {
	return &Message{
		MsgType: MsgTCreateAccount,
		Name:    name,
		Amount:  initialBalance,
	}
}

// NewCreateAccountResponse creates a new CreateAccount response
func NewCreateAccountResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTCreateAccount,
	}
	return msg.setErr(err)
}

// NewGetBalanceRequest creates a new GetBalance request
func NewGetBalanceRequest(name string) *Message {
	return &Message{
		MsgType: MsgTGetBalance,
		Name:    name,
	}
}

// NewGetBalanceResponse creates a new GetBalance response
func NewGetBalanceResponse(balance int64, err error) *Message {
	msg := &Message{
		MsgType: MsgTGetBalance,
		Amount:  balance,
	}
	return msg.setErr(err)
}

// NewTransferRequest creates a new Transfer request
func NewTransferRequest(firstEmitter, secondEmitter, recipient, broker string, cash, fee int64) *Message {
	return &Message{
		MsgType: MsgTTransfer,
		Parties: []string{firstEmitter, secondEmitter, recipient, broker},
		Amount:  cash,
		Fee:     fee,
	}
}

// NewTransferResponse creates a new Transfer response
func NewTransferResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTTransfer,
	}
	return msg.setErr(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code store.RetCode, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    code,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTCreateAccount:
		return "create"
	case MsgTGetBalance:
		return "balance"
	case MsgTTransfer:
		return "transfer"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "create":
		*t = MsgTCreateAccount
	case "balance":
		*t = MsgTGetBalance
	case "transfer":
		*t = MsgTTransfer
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	case "unknown":
		*t = MsgTUnknown
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IAccountService operations

	MsgTCreateAccount // Create an account with an initial balance
	MsgTGetBalance    // Read the balance of an account
	MsgTTransfer      // Transfer funds with a broker fee
)
