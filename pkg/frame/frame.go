package frame

import "fmt"

// MaxPayloadSize is the inline payload capacity of a Frame.
const MaxPayloadSize = 120

// Frame is the message value passed between mailboxes and the broker's
// ingress queues. It is a value type and is copied by push/pop; Ptr is the
// exception, a reference shared with whoever set it.
type Frame struct {
	Signal  uint32
	Length  uint32
	Payload [MaxPayloadSize]byte
	// Ptr carries an out-of-band payload too large for Payload. Its
	// lifetime is not owned by the Frame; never written to the wire.
	Ptr any
}

// New builds a Frame from a signal and a payload slice, copying up to
// MaxPayloadSize bytes inline. Payloads longer than MaxPayloadSize are
// truncated; callers that need more must use Ptr instead.
func New(signal uint32, payload []byte) Frame {
	var f Frame
	f.Signal = signal
	n := copy(f.Payload[:], payload)
	f.Length = uint32(n)
	return f
}

// Severity, State, and Type bit fields packed into a signal.
type Severity uint8

const (
	SeverityInfo    Severity = 1
	SeverityWarning Severity = 2
	SeverityError   Severity = 3
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

type StateClass uint8

const (
	StateInit        StateClass = 1
	StateOperational StateClass = 2
	StateError       StateClass = 3
	StateLoader      StateClass = 4
	StateMaintenance StateClass = 5
)

type SignalType uint8

const (
	TypeMonitoring SignalType = 1
	TypeSNMP       SignalType = 2
	TypeHTTP       SignalType = 3
	TypeCAN        SignalType = 4
	TypeMemory     SignalType = 5
	TypeDatabase   SignalType = 6
	TypeGPIO       SignalType = 7
	TypeFS         SignalType = 8
)

const (
	severityShift = 30
	stateShift    = 26
	typeShift     = 22

	severityMask uint32 = 0x3
	stateMask    uint32 = 0xF
	typeMask     uint32 = 0xF
	idMask       uint32 = 0x3FFFFF // 22 bits
)

// MakeSignal packs severity, state, sigType and id into a 32-bit signal.
// Only the low bits of each field are kept; callers must not rely on
// out-of-range values being rejected.
func MakeSignal(severity Severity, state StateClass, sigType SignalType, id uint32) uint32 {
	return uint32(severity)&severityMask<<severityShift |
		uint32(state)&stateMask<<stateShift |
		uint32(sigType)&typeMask<<typeShift |
		id&idMask
}

// SeverityOf extracts the severity field from a signal.
func SeverityOf(signal uint32) Severity {
	return Severity(signal >> severityShift & severityMask)
}

// StateOf extracts the state-class field from a signal.
func StateOf(signal uint32) StateClass {
	return StateClass(signal >> stateShift & stateMask)
}

// TypeOf extracts the type field from a signal.
func TypeOf(signal uint32) SignalType {
	return SignalType(signal >> typeShift & typeMask)
}

// TypeTopic and TypeTopicMask build a broker.TopicConfig-style (topic, mask)
// pair that matches every signal of the given type regardless of severity,
// state, or id — the Go equivalent of the original's "subscribe by type
// nibble" plug-in pattern (ao_database.c/ao_websocket.c each mask-subscribe
// to their own type field rather than enumerating every exact signal).
func TypeTopic(t SignalType) uint32 {
	return uint32(t) & typeMask << typeShift
}

func TypeTopicMask() uint32 {
	return typeMask << typeShift
}

// IDOf extracts the 22-bit id field from a signal.
func IDOf(signal uint32) uint32 {
	return signal & idMask
}

// Database id sub-encoding: action(3) | table(5) | row(8), packed into the
// low 16 bits of the 22-bit id field.
const (
	dbActionShift = 13
	dbTableShift  = 8
	dbRowShift    = 0

	dbActionMask uint32 = 0x7
	dbTableMask  uint32 = 0x1F
	dbRowMask    uint32 = 0xFF
)

// DB action enum (supplemented from original_source/message.h, which
// documents the action/table/row subfield widths in more detail).
const (
	DBPublish DBAction = 1
	DBRead    DBAction = 2
	DBWrite   DBAction = 3
	DBUpdate  DBAction = 4
)

type DBAction uint32

// DBMessageID packs a database id subfield from action/table/row.
func DBMessageID(action DBAction, table, row uint32) uint32 {
	return uint32(action)&dbActionMask<<dbActionShift |
		table&dbTableMask<<dbTableShift |
		row&dbRowMask<<dbRowShift
}

// DBActionOf extracts the action subfield from a database signal.
func DBActionOf(signal uint32) DBAction {
	return DBAction(IDOf(signal) >> dbActionShift & dbActionMask)
}

// DBTableID extracts the table subfield from a database signal.
func DBTableID(signal uint32) uint32 {
	return IDOf(signal) >> dbTableShift & dbTableMask
}

// DBRowIndex extracts the row subfield from a database signal.
func DBRowIndex(signal uint32) uint32 {
	return IDOf(signal) >> dbRowShift & dbRowMask
}

// HTTP id sub-encoding: action(2) | fd(5) | oid(15).
const (
	httpActionShift = 20
	httpFDShift     = 15
	httpOIDShift    = 0

	httpActionMask uint32 = 0x3
	httpFDMask     uint32 = 0x1F
	httpOIDMask    uint32 = 0x7FFF
)

type HTTPAction uint32

const (
	HTTPQueryTX HTTPAction = 1
	HTTPQueryRX HTTPAction = 2
	HTTPCommand HTTPAction = 3
)

// HTTPMessageID packs an HTTP id subfield from action/fd/oid.
func HTTPMessageID(action HTTPAction, fd, oid uint32) uint32 {
	return uint32(action)&httpActionMask<<httpActionShift |
		fd&httpFDMask<<httpFDShift |
		oid&httpOIDMask<<httpOIDShift
}

// HTTPActionOf extracts the action subfield from an HTTP signal.
func HTTPActionOf(signal uint32) HTTPAction {
	return HTTPAction(IDOf(signal) >> httpActionShift & httpActionMask)
}

// HTTPFD extracts the file-descriptor subfield from an HTTP signal.
func HTTPFD(signal uint32) uint32 {
	return IDOf(signal) >> httpFDShift & httpFDMask
}

// HTTPOID extracts the object-id subfield from an HTTP signal.
func HTTPOID(signal uint32) uint32 {
	return IDOf(signal) >> httpOIDShift & httpOIDMask
}

// SNMP and WS/FS action enums, carried from original_source/message.h even
// though spec.md's prose only documents the DB/HTTP subfields in detail.
type SNMPAction uint32

const (
	SNMPGetRecv  SNMPAction = 1
	SNMPGetSent  SNMPAction = 2
	SNMPSetVar   SNMPAction = 3
	SNMPSendTrap SNMPAction = 4
)

type WSAction uint32

const (
	WSQueryTX WSAction = 1
	WSQueryRX WSAction = 2
	WSCommand WSAction = 3
)

type FSAction uint32

const (
	FSRead   FSAction = 1
	FSWrite  FSAction = 2
	FSDelete FSAction = 3
)
