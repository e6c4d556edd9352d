// -----------------------------------------------------------------------------
// Query Events
// -----------------------------------------------------------------------------
// Bir bağlantı üzerinde olan biten her şey (statement çalıştı, cache'ten
// okundu, transaction commit edildi) bir event olarak yayınlanabilir.
// Laravel'deki DB::listen() karşılığıdır:
//
//	dispatcher.Listen(events.QueryExecuted, events.ListenerFunc(func(e events.Event) error {
//	    q := e.Payload().(database.QueryEvent)
//	    log.Printf("%s (%s)", q.SQL, q.Duration)
//	    return nil
//	}))
//
// Payload tipleri event'i yayınlayan paket tarafından belirlenir; bu paket
// yalnızca taşıyıcıdır ve hiçbir pakete bağımlı değildir.
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

// Event, dispatcher üzerinden taşınan her olayın arayüzüdür.
type Event interface {
	// Name, event'in adını döndürür. Örnek: "query.executed"
	Name() string

	// OccurredAt, event'in gerçekleşme zamanını döndürür.
	OccurredAt() time.Time

	// Payload, event ile taşınan veriyi döndürür.
	Payload() any
}

// BaseEvent, Event'in varsayılan implementasyonudur.
type BaseEvent struct {
	name       string
	occurredAt time.Time
	payload    any
}

// NewBaseEvent, şu anki zamanla yeni bir event oluşturur.
//
//	event := events.NewBaseEvent(events.QueryExecuted, payload)
func NewBaseEvent(name string, payload any) *BaseEvent {
	return &BaseEvent{
		name:       name,
		occurredAt: time.Now(),
		payload:    payload,
	}
}

func (e *BaseEvent) Name() string          { return e.name }
func (e *BaseEvent) OccurredAt() time.Time { return e.occurredAt }
func (e *BaseEvent) Payload() any          { return e.payload }

// -----------------------------------------------------------------------------
// Event Names
// -----------------------------------------------------------------------------

const (
	// Wildcard'a kaydedilen listener'lar tüm event'leri alır.
	Wildcard = "*"

	// Statement events
	QueryExecuted = "query.executed"
	QueryFailed   = "query.failed"

	// Result cache events
	CacheHit  = "cache.hit"
	CacheMiss = "cache.miss"

	// Transaction events
	TransactionBegan      = "transaction.began"
	TransactionCommitted  = "transaction.committed"
	TransactionRolledBack = "transaction.rolledback"
)
