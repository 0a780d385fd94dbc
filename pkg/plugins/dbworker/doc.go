/*
Package dbworker implements the SQLite-backed database plug-in: an
active object that mask-subscribes to every database-type signal, decodes
the table/row subfields on publish/write signals, and upserts the payload
into a generic key-value table on top of a real modernc.org/sqlite
connection.
*/
package dbworker
