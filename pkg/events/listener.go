// -----------------------------------------------------------------------------
// Event Listeners
// -----------------------------------------------------------------------------
// Listener, bir event yayınlandığında çalışacak kod bloğudur. Yavaş sorgu
// loglama, metrik toplama ya da test sırasında statement sayma gibi işler
// listener olarak yazılır:
//
//	slow := events.NewConditionalListener(logSlowQuery, func(e events.Event) bool {
//	    return e.Payload().(database.QueryEvent).Duration > 200*time.Millisecond
//	})
//	dispatcher.Listen(events.QueryExecuted, slow)
// -----------------------------------------------------------------------------

package events

// Listener, event'leri işleyen arayüzdür.
//
// Handle hata dönerse dispatcher bu hatayı loglar; diğer listener'lar yine
// çalışır ve statement'ın kendisi etkilenmez.
type Listener interface {
	Handle(event Event) error
}

// ListenerFunc, fonksiyonları Listener arayüzüne uyarlar.
type ListenerFunc func(Event) error

// Handle, f(event) çağırır.
func (f ListenerFunc) Handle(event Event) error {
	return f(event)
}

// Logger, dispatcher ve listener'ların kullandığı log arayüzüdür.
// *log.Logger bu arayüzü sağlar.
type Logger interface {
	Printf(format string, v ...any)
	Println(v ...any)
}

// -----------------------------------------------------------------------------
// Async Listener Wrapper
// -----------------------------------------------------------------------------

// AsyncListener, listener'ı ayrı bir goroutine'de çalıştırır. Statement
// yolunu bloklamaması gereken (ağ üzerinden metrik gönderimi gibi) işler
// için kullanılır.
type AsyncListener struct {
	listener Listener
	logger   Logger
}

// NewAsyncListener, listener'ı asenkron çalışacak şekilde sarar.
func NewAsyncListener(listener Listener, logger Logger) *AsyncListener {
	return &AsyncListener{
		listener: listener,
		logger:   logger,
	}
}

// Handle, listener'ı goroutine'de başlatır ve hemen nil döner.
// Hatalar yalnızca loglanır.
func (a *AsyncListener) Handle(event Event) error {
	go func() {
		if err := a.listener.Handle(event); err != nil {
			a.logger.Printf("❌ Async listener hatası '%s': %v", event.Name(), err)
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------
// Conditional Listener
// -----------------------------------------------------------------------------

// ConditionalListener, yalnızca koşul sağlandığında çalışan listener'dır.
type ConditionalListener struct {
	listener  Listener
	condition func(Event) bool
}

// NewConditionalListener, listener'ı condition ile filtreler.
func NewConditionalListener(listener Listener, condition func(Event) bool) *ConditionalListener {
	return &ConditionalListener{
		listener:  listener,
		condition: condition,
	}
}

// Handle, koşul sağlanıyorsa listener'ı çalıştırır.
func (c *ConditionalListener) Handle(event Event) error {
	if c.condition(event) {
		return c.listener.Handle(event)
	}
	return nil
}
