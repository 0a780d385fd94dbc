/*
Package frame defines the message value exchanged between active objects and
the signal encoding used to route it.

A Frame is copied by value across every queue boundary in RTEF except for its
out-of-band Ptr field, which is shared by reference and never owned by the
frame itself. The 120-byte inline Payload covers the common case; Ptr exists
for the rare oversized blob and receivers must not free it unless a
topic-specific ownership protocol says so.

# Signal layout

	bits 31..30  severity  (1=info, 2=warn, 3=error)
	bits 29..26  state     (1=init, 2=op, 3=err, 4=loader, 5=maint)
	bits 25..22  type      (1=mon, 2=snmp, 3=http, 4=can, 5=mem, 6=db, 7=gpio, 8=fs)
	bits 21..0   id        (domain-specific subfields)

MakeSignal packs the four fields; SeverityOf/StateOf/TypeOf/IDOf unpack them.
The database and HTTP types further subdivide id into their own subfields via
DBMessageID/DBActionOf/DBTableID/DBRowIndex and
HTTPMessageID/HTTPActionOf/HTTPFD/HTTPOID.

Signals are opaque 32-bit routing keys to everything above pkg/frame — the
broker never decodes any field when matching topics; it compares the raw
32-bit value, under a mask for MASK topics.
*/
package frame
