package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSignalRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		state    StateClass
		sigType  SignalType
		id       uint32
	}{
		{"info/op/monitoring", SeverityInfo, StateOperational, TypeMonitoring, 1},
		{"warn/init/database", SeverityWarning, StateInit, TypeDatabase, 0x3FFFFF},
		{"error/maint/http", SeverityError, StateMaintenance, TypeHTTP, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := MakeSignal(tt.severity, tt.state, tt.sigType, tt.id)
			assert.Equal(t, tt.severity, SeverityOf(sig))
			assert.Equal(t, tt.state, StateOf(sig))
			assert.Equal(t, tt.sigType, TypeOf(sig))
			assert.Equal(t, tt.id, IDOf(sig))
		})
	}
}

func TestDBSubEncodingRoundTrip(t *testing.T) {
	id := DBMessageID(DBWrite, 17, 200)
	sig := MakeSignal(SeverityInfo, StateOperational, TypeDatabase, id)

	assert.Equal(t, DBWrite, DBActionOf(sig))
	assert.Equal(t, uint32(17), DBTableID(sig))
	assert.Equal(t, uint32(200), DBRowIndex(sig))
}

func TestHTTPSubEncodingRoundTrip(t *testing.T) {
	id := HTTPMessageID(HTTPCommand, 9, 12345)
	sig := MakeSignal(SeverityInfo, StateOperational, TypeHTTP, id)

	assert.Equal(t, HTTPCommand, HTTPActionOf(sig))
	assert.Equal(t, uint32(9), HTTPFD(sig))
	assert.Equal(t, uint32(12345), HTTPOID(sig))
}

func TestFrameWireRoundTrip(t *testing.T) {
	original := New(MakeSignal(SeverityError, StateError, TypeCAN, 42), []byte("payload"))

	data, err := original.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, data, WireSize)

	var decoded Frame
	assert.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, original.Signal, decoded.Signal)
	assert.Equal(t, original.Length, decoded.Length)
	assert.Equal(t, original.Payload, decoded.Payload)
	assert.Nil(t, decoded.Ptr)
}

func TestFrameUnmarshalRejectsWrongSize(t *testing.T) {
	var f Frame
	err := f.UnmarshalBinary([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestNewTruncatesOversizedPayload(t *testing.T) {
	big := make([]byte, MaxPayloadSize+50)
	for i := range big {
		big[i] = byte(i)
	}

	f := New(0x1, big)
	assert.Equal(t, uint32(MaxPayloadSize), f.Length)
}
