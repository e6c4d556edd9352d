package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/biyonik/fluent-query/pkg/events"
)

// QueryEvent, query.executed ve query.failed event'lerinin payload'ıdır.
type QueryEvent struct {
	Connection string
	SQL        string
	Bindings   []any
	Duration   time.Duration
	TxID       uuid.UUID // transaction dışında uuid.Nil
	Err        error     // yalnızca query.failed için dolu
}

// CacheEvent, cache.hit ve cache.miss event'lerinin payload'ıdır.
type CacheEvent struct {
	Connection string
	Key        string
	SQL        string
}

// TransactionEvent, transaction.* event'lerinin payload'ıdır.
type TransactionEvent struct {
	Connection string
	TxID       uuid.UUID
}

// WithEvents, bağlantının statement, cache ve transaction event'lerini
// dispatcher üzerinden yayınlamasını sağlar.
//
//	dispatcher.Listen(events.QueryFailed, alert)
//	conn := database.NewConnection("default", db, grammar, database.WithEvents(dispatcher))
func WithEvents(dispatcher *events.Dispatcher) Option {
	return func(c *Connection) {
		c.events = dispatcher
	}
}

// emit, dinleyen varsa event'i senkron olarak yayınlar. Payload yalnızca
// gerektiğinde üretilir. Listener hataları dispatcher tarafından loglanır ve
// statement sonucunu etkilemez.
func (c *Connection) emit(name string, payload func() any) {
	if c.events == nil || !c.events.HasListeners(name) {
		return
	}
	_ = c.events.Dispatch(events.NewBaseEvent(name, payload()))
}

func (c *Connection) emitQuery(name, query string, args []any, took time.Duration, err error) {
	c.emit(name, func() any {
		return QueryEvent{
			Connection: c.name,
			SQL:        query,
			Bindings:   args,
			Duration:   took,
			TxID:       c.txID,
			Err:        err,
		}
	})
}
