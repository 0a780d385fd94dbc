package dbworker

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cuemby/rtef/pkg/activeobject"
	"github.com/cuemby/rtef/pkg/broker"
	"github.com/cuemby/rtef/pkg/frame"
	"github.com/cuemby/rtef/pkg/fsm"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/registry"
)

// Config configures a Worker.
type Config struct {
	Name      string
	Publisher activeobject.Publisher
	Registry  *registry.Registry
	// DSN is the modernc.org/sqlite data source name, e.g. ":memory:" or
	// a file path.
	DSN string
	// MailboxCapacity overrides the underlying active object's mailbox
	// capacity. Zero means use the package default.
	MailboxCapacity int
}

// Worker is a database-backed active object: it mask-subscribes to every
// database-type signal and upserts publish/write payloads into a generic
// kv table.
type Worker struct {
	*activeobject.Object
	db *sql.DB
}

// New opens db and constructs a Worker. The returned Worker is not
// started; call Start to subscribe and begin dispatching.
func New(cfg Config) (*Worker, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("dbworker: open %s: %w", cfg.DSN, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		table_id INTEGER NOT NULL,
		row_id   INTEGER NOT NULL,
		value    BLOB,
		PRIMARY KEY (table_id, row_id)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbworker: create schema: %w", err)
	}

	w := &Worker{db: db}
	w.Object = activeobject.New(activeobject.Config{
		Name:            cfg.Name,
		Publisher:       cfg.Publisher,
		Registry:        cfg.Registry,
		InitialState:    &fsm.State{Name: "serving"},
		Dispatcher:      w,
		MailboxCapacity: cfg.MailboxCapacity,
	})
	return w, nil
}

// Start subscribes to every database-type signal, then starts the
// underlying active object.
func (w *Worker) Start(ctx context.Context) error {
	w.Subscribe([]broker.TopicConfig{
		{Kind: broker.Mask, Topic: frame.TypeTopic(frame.TypeDatabase), Mask: frame.TypeTopicMask()},
	})
	return w.Object.Start(ctx)
}

// Close releases the database handle. Call after Stop.
func (w *Worker) Close() error {
	return w.db.Close()
}

// Dispatch decodes DB_PUBLISH/DB_WRITE signals and upserts their payload;
// everything else is ignored.
func (w *Worker) Dispatch(f frame.Frame) {
	if frame.TypeOf(f.Signal) != frame.TypeDatabase {
		return
	}

	switch frame.DBActionOf(f.Signal) {
	case frame.DBPublish, frame.DBWrite:
		table := frame.DBTableID(f.Signal)
		row := frame.DBRowIndex(f.Signal)
		value := append([]byte(nil), f.Payload[:f.Length]...)
		if err := w.upsert(table, row, value); err != nil {
			log.WithComponent("dbworker").Warn().Err(err).
				Uint32("table", table).Uint32("row", row).Msg("upsert failed")
		}
	}
}

func (w *Worker) upsert(table, row uint32, value []byte) error {
	_, err := w.db.Exec(`INSERT INTO kv (table_id, row_id, value) VALUES (?, ?, ?)
		ON CONFLICT(table_id, row_id) DO UPDATE SET value = excluded.value`,
		table, row, value)
	return err
}

// Lookup returns the stored value for (table, row), if any.
func (w *Worker) Lookup(table, row uint32) ([]byte, bool, error) {
	var value []byte
	err := w.db.QueryRow(`SELECT value FROM kv WHERE table_id = ? AND row_id = ?`, table, row).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
