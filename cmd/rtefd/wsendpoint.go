package main

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cuemby/rtef/pkg/activeobject"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/plugins/wsreactor"
	"github.com/cuemby/rtef/pkg/registry"
)

// wsEndpoint upgrades incoming HTTP connections to websockets and wires
// each one to its own wsreactor.Reactor, cleaning up once the peer
// disconnects.
type wsEndpoint struct {
	publisher       activeobject.Publisher
	registry        *registry.Registry
	upgrader        websocket.Upgrader
	nextFD          atomic.Uint32
	mailboxCapacity int
}

func newWSEndpoint(pub activeobject.Publisher, reg *registry.Registry, mailboxCapacity int) *wsEndpoint {
	return &wsEndpoint{publisher: pub, registry: reg, mailboxCapacity: mailboxCapacity}
}

func (e *wsEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithComponent("rtefd").Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	fd := e.nextFD.Add(1)
	reactor := wsreactor.New(wsreactor.Config{
		// The connection's active-object/registry identity is a uuid,
		// independent of fd — fd stays a small wire-protocol id packed
		// into frame.HTTPMessageID, while this name only needs to be
		// unique for the registry and logs.
		Name:            uuid.NewString(),
		Publisher:       e.publisher,
		Registry:        e.registry,
		Conn:            conn,
		FD:              fd,
		MailboxCapacity: e.mailboxCapacity,
	})

	ctx := context.Background()
	if err := reactor.Start(ctx); err != nil {
		log.WithComponent("rtefd").Warn().Err(err).Msg("wsreactor start failed")
		conn.Close()
		return
	}

	go func() {
		<-reactor.Done()
		reactor.Stop(ctx)
	}()
}
