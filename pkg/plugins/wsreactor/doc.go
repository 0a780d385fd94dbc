/*
Package wsreactor implements the HTTP/WebSocket reactor plug-in: an
active object that accepts one gorilla/websocket connection, republishes
every inbound WS message onto the broker as an HTTP-type signal
(frame.HTTPMessageID), and writes the HTTPCommand signals it receives
back to the socket; other HTTP-type signals are ignored. It also runs a background health.TCPChecker against
the peer's address so a silently-dead connection is caught even when
nothing is being read or written.
*/
package wsreactor
