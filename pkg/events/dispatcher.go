// -----------------------------------------------------------------------------
// Event Dispatcher
// -----------------------------------------------------------------------------
// Dispatcher, event'leri kayıtlı listener'lara dağıtan merkezi yapıdır.
// Bir Connection'a database.WithEvents(dispatcher) ile bağlanır; her statement,
// cache erişimi ve transaction adımı burada yayınlanır.
//
// Kullanım:
//
//	dispatcher := events.NewDispatcher(logger)
//	defer dispatcher.Shutdown()
//
//	dispatcher.Listen(events.QueryFailed, alertOnFailure)
//	conn := database.NewConnection("default", db, grammar, database.WithEvents(dispatcher))
//
// Statement başına yayın yapıldığından Dispatch sessizdir: yalnızca listener
// hataları loglanır.
// -----------------------------------------------------------------------------

package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Dispatcher, event'leri yöneten thread-safe yapıdır.
//
// Özellikler:
//   - Event başına birden fazla listener
//   - Wildcard ("*") listener desteği
//   - Senkron ve asenkron dispatch
//   - Bekleyen async event'leri tamamlayan Shutdown
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    Logger
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewDispatcher, yeni bir Dispatcher oluşturur. Kullanım bittiğinde
// Shutdown() çağrılmalıdır.
func NewDispatcher(logger Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Listen, eventName için bir listener kaydeder. Aynı event'e kaydedilen
// listener'lar kayıt sırasıyla çağrılır.
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
}

// Subscribe, bir listener'ı birden fazla event'e kaydeder.
//
//	dispatcher.Subscribe([]string{events.TransactionCommitted, events.TransactionRolledBack}, audit)
func (d *Dispatcher) Subscribe(eventNames []string, listener Listener) {
	for _, name := range eventNames {
		d.Listen(name, listener)
	}
}

// listenersFor, event'e özel listener'ları ve ardından wildcard listener'ları döndürür.
func (d *Dispatcher) listenersFor(name string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()

	specific := d.listeners[name]
	wildcard := d.listeners[Wildcard]
	if name == Wildcard || len(wildcard) == 0 {
		return specific
	}

	out := make([]Listener, 0, len(specific)+len(wildcard))
	out = append(out, specific...)
	return append(out, wildcard...)
}

// Dispatch, event'i listener'lara senkron olarak iletir.
//
// Bir listener hata dönerse loglanır ve diğerleri çalışmaya devam eder.
// Son hata döndürülür.
func (d *Dispatcher) Dispatch(event Event) error {
	var lastErr error
	for _, listener := range d.listenersFor(event.Name()) {
		if err := listener.Handle(event); err != nil {
			lastErr = err
			d.logger.Printf("❌ Listener hatası '%s': %v", event.Name(), err)
		}
	}
	return lastErr
}

// DispatchAsync, event'i bir goroutine'de dağıtır ve hemen döner.
// Shutdown çağrıldıktan sonra gelen event'ler yok sayılır.
func (d *Dispatcher) DispatchAsync(event Event) {
	select {
	case <-d.ctx.Done():
		d.logger.Printf("⚠️  Dispatcher kapanıyor, async event '%s' yok sayıldı", event.Name())
		return
	default:
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		select {
		case <-d.ctx.Done():
			return
		default:
		}

		_ = d.Dispatch(event)
	}()
}

// HasListeners, event'i alacak en az bir listener (wildcard dahil) olup
// olmadığını döndürür. Yayıncılar payload hazırlamadan önce bunu kontrol eder.
func (d *Dispatcher) HasListeners(eventName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.listeners[eventName]) > 0 || len(d.listeners[Wildcard]) > 0
}

// Forget, eventName için kayıtlı tüm listener'ları kaldırır.
func (d *Dispatcher) Forget(eventName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, eventName)
}

// Stats, event adı -> listener sayısı eşlemesini döndürür.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int, len(d.listeners))
	for name, listeners := range d.listeners {
		stats[name] = len(listeners)
	}
	return stats
}

// Shutdown, yeni async event'leri engeller ve bekleyenlerin bitmesini bekler.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
}

// ShutdownWithTimeout, Shutdown gibidir ancak en fazla timeout kadar bekler.
func (d *Dispatcher) ShutdownWithTimeout(timeout time.Duration) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		d.logger.Println("⚠️  Event dispatcher shutdown timeout, bazı event'ler tamamlanmamış olabilir")
		return fmt.Errorf("events: shutdown timeout exceeded (%s)", timeout)
	}
}
