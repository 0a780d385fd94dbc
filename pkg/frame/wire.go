package frame

import (
	"encoding/binary"
	"fmt"
)

// WireSize is the on-wire size of a Frame: signal(4) + length(4) + payload(120).
// Ptr is never serialized.
const WireSize = 4 + 4 + MaxPayloadSize

// MarshalBinary encodes the frame in the little-endian signal|length|payload
// layout consumed by the UDP transceiver collaborator. Ptr is dropped.
func (f Frame) MarshalBinary() ([]byte, error) {
	buf := make([]byte, WireSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.Signal)
	binary.LittleEndian.PutUint32(buf[4:8], f.Length)
	copy(buf[8:], f.Payload[:])
	return buf, nil
}

// UnmarshalBinary decodes a frame from the wire layout. Ptr is always nil
// afterward: a received frame never carries the sender's out-of-band
// pointer.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) != WireSize {
		return fmt.Errorf("frame: wire payload must be %d bytes, got %d", WireSize, len(data))
	}
	f.Signal = binary.LittleEndian.Uint32(data[0:4])
	f.Length = binary.LittleEndian.Uint32(data[4:8])
	copy(f.Payload[:], data[8:])
	f.Ptr = nil
	return nil
}
