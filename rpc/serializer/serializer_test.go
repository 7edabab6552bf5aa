package serializer

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		*common.NewCreateAccountRequest("Bob", 1000),
		*common.NewGetBalanceRequest("Alice"),
		*common.NewGetBalanceResponse(990, nil),
		*common.NewTransferRequest("Bob", "Alice", "Eve", "Dave", 1000, 10),
		*common.NewTransferResponse(store.NewError(store.RetCInsufficientFunds, "Bob and Alice together cannot cover 500")),
		*common.NewErrorResponse(store.RetCInternalError, "test error message"),

		// Extreme values
		{
			MsgType: common.MsgTGetBalance,
			Name:    "max",
			Amount:  math.MaxInt64,
		},
		{
			MsgType: common.MsgTTransfer,
			Parties: []string{"", "b", "c", "d"},
			Amount:  -1,
			Fee:     math.MinInt64,
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for msgType := common.MsgTSuccess; msgType <= common.MsgTTransfer; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestErrorSurvivesRoundTrip checks that the error class of a failed operation
// reaches the client unchanged
func TestErrorSurvivesRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			resp := common.NewTransferResponse(store.NewError(store.RetCNotFound, "account Mallory does not exist"))
			data, err := serializer.Serialize(*resp)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			got := result.AsError()
			if !errors.Is(got, store.ErrNotFound) {
				t.Errorf("expected a not found error, got %v", got)
			}
			var serr *store.Error
			if !errors.As(got, &serr) || serr.Msg != "account Mallory does not exist" {
				t.Errorf("error message lost: %v", got)
			}

			ok := common.NewTransferResponse(nil)
			data, _ = serializer.Serialize(*ok)
			result = common.Message{}
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if result.AsError() != nil {
				t.Errorf("expected no error, got %v", result.AsError())
			}
		})
	}
}

// TestBinaryDeserializeResetsFields tests that reusing a message does not leak old values
func TestBinaryDeserializeResetsFields(t *testing.T) {
	serializer := NewBinarySerializer()

	full := common.NewTransferRequest("a", "b", "c", "d", 5, 1)
	full.Code = store.RetCLockTimeout
	full.Err = "old"
	data, err := serializer.Serialize(*common.NewGetBalanceRequest("x"))
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	if err := serializer.Deserialize(data, full); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}
	want := common.NewGetBalanceRequest("x")
	if !reflect.DeepEqual(*want, *full) {
		t.Errorf("stale fields after deserialize: %+v", *full)
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for name",
			data:        []byte{3, hasName, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims name length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Missing parties",
			data:        []byte{5, hasParties, 0, 2, 0, 0, 0, 1, 'a'}, // Claims two parties but only one provided
			expectError: true,
		},
		{
			name:        "Truncated amount",
			data:        []byte{4, hasAmount, 0, 0, 0}, // Amount needs 8 bytes
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
