package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasName    byte = 1 << 0
	hasParties byte = 1 << 1
	hasAmount  byte = 1 << 2
	hasFee     byte = 1 << 3
	hasCode    byte = 1 << 4
	hasErr     byte = 1 << 5
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	if len(msg.Parties) > 0xFFFF {
		return nil, fmt.Errorf("too many parties: %d", len(msg.Parties))
	}

	result := make([]byte, b.sizeBytes(msg))

	// Write message type
	result[0] = byte(msg.MsgType)

	var flags byte = 0
	pos := 2 // Start after MsgType and flags

	if msg.Name != "" {
		flags |= hasName
		pos = putString(result, pos, msg.Name)
	}

	// Parties: uint16 count followed by length prefixed strings
	if msg.Parties != nil {
		flags |= hasParties
		binary.BigEndian.PutUint16(result[pos:pos+2], uint16(len(msg.Parties)))
		pos += 2
		for _, p := range msg.Parties {
			pos = putString(result, pos, p)
		}
	}

	if msg.Amount != 0 {
		flags |= hasAmount
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Amount))
		pos += 8
	}

	if msg.Fee != 0 {
		flags |= hasFee
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Fee))
		pos += 8
	}

	if msg.Code != store.RetCSuccess {
		flags |= hasCode
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Code))
		pos += 8
	}

	if msg.Err != "" {
		flags |= hasErr
		pos = putString(result, pos, msg.Err)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2

	var err error

	// Read Name if present
	msg.Name = ""
	if flags&hasName != 0 {
		if msg.Name, pos, err = readString(data, pos, "name"); err != nil {
			return err
		}
	}

	// Read Parties if present
	msg.Parties = nil
	if flags&hasParties != 0 {
		if pos+2 > len(data) {
			return fmt.Errorf("data too short for parties count")
		}
		n := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		pos += 2

		msg.Parties = make([]string, n)
		for i := 0; i < n; i++ {
			if msg.Parties[i], pos, err = readString(data, pos, "party"); err != nil {
				return err
			}
		}
	}

	// Read Amount if present
	msg.Amount = 0
	if flags&hasAmount != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for amount")
		}
		msg.Amount = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	// Read Fee if present
	msg.Fee = 0
	if flags&hasFee != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for fee")
		}
		msg.Fee = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	// Read Code if present
	msg.Code = store.RetCSuccess
	if flags&hasCode != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for code")
		}
		msg.Code = store.RetCode(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	// Read Err if present
	msg.Err = ""
	if flags&hasErr != 0 {
		if msg.Err, _, err = readString(data, pos, "error"); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Name != "" {
		size += 4 + len(msg.Name) // 4 bytes for length + name string
	}
	if msg.Parties != nil {
		size += 2 // uint16 count
		for _, p := range msg.Parties {
			size += 4 + len(p)
		}
	}
	if msg.Amount != 0 {
		size += 8 // int64
	}
	if msg.Fee != 0 {
		size += 8 // int64
	}
	if msg.Code != store.RetCSuccess {
		size += 8 // uint64
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err) // 4 bytes for length + error string
	}

	return size
}

// putString writes a uint32 length prefixed string at pos and returns the new position
func putString(buf []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	copy(buf[pos:pos+len(s)], s)
	return pos + len(s)
}

// readString reads a uint32 length prefixed string at pos and returns it with the new position
func readString(data []byte, pos int, field string) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if n < 0 || pos+n > len(data) {
		return "", pos, fmt.Errorf("data too short for %s data", field)
	}
	return string(data[pos : pos+n]), pos + n, nil
}
