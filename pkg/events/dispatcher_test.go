// -----------------------------------------------------------------------------
// Event Dispatcher Tests
// -----------------------------------------------------------------------------
// Testler:
// - Senkron / asenkron dispatch
// - Wildcard listener'lar
// - Graceful shutdown ve goroutine leak
// - Listener hata izolasyonu
// - Eşzamanlı dispatch (go test -race)
// -----------------------------------------------------------------------------

package events

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockLogger, log satırlarını toplayan thread-safe logger.
type mockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *mockLogger) Printf(format string, v ...any) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprintf(format, v...))
	m.mu.Unlock()
}

func (m *mockLogger) Println(v ...any) {
	m.mu.Lock()
	m.logs = append(m.logs, fmt.Sprint(v...))
	m.mu.Unlock()
}

func (m *mockLogger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// countingListener, çağrı sayısını tutan listener.
type countingListener struct {
	handled atomic.Int32
	delay   time.Duration
	err     error
}

func (l *countingListener) Handle(Event) error {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.handled.Add(1)
	return l.err
}

func (l *countingListener) count() int {
	return int(l.handled.Load())
}

func TestDispatcher_Dispatch(t *testing.T) {
	logger := &mockLogger{}
	dispatcher := NewDispatcher(logger)
	defer dispatcher.Shutdown()

	executed := &countingListener{}
	failed := &countingListener{}
	dispatcher.Listen(QueryExecuted, executed)
	dispatcher.Listen(QueryFailed, failed)

	if err := dispatcher.Dispatch(NewBaseEvent(QueryExecuted, "SELECT 1;")); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if executed.count() != 1 {
		t.Errorf("Expected executed listener once, got: %d", executed.count())
	}
	if failed.count() != 0 {
		t.Errorf("Expected failed listener not to run, got: %d", failed.count())
	}
	if logger.count() != 0 {
		t.Errorf("Successful dispatch must not log, got %d lines", logger.count())
	}
}

func TestDispatcher_NoListeners(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	if dispatcher.HasListeners(CacheHit) {
		t.Error("Expected no listeners")
	}
	if err := dispatcher.Dispatch(NewBaseEvent(CacheHit, nil)); err != nil {
		t.Errorf("Expected nil error, got: %v", err)
	}
}

func TestDispatcher_Wildcard(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	order := make([]string, 0, 4)
	record := func(tag string) Listener {
		return ListenerFunc(func(e Event) error {
			order = append(order, tag+":"+e.Name())
			return nil
		})
	}

	dispatcher.Listen(Wildcard, record("all"))
	dispatcher.Listen(CacheMiss, record("miss"))

	if !dispatcher.HasListeners(TransactionBegan) {
		t.Error("Wildcard listener must count for every event")
	}

	_ = dispatcher.Dispatch(NewBaseEvent(CacheMiss, nil))
	_ = dispatcher.Dispatch(NewBaseEvent(TransactionBegan, nil))

	want := []string{"miss:cache.miss", "all:cache.miss", "all:transaction.began"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, order)
	}
}

func TestDispatcher_SubscribeForgetStats(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	audit := &countingListener{}
	dispatcher.Subscribe([]string{TransactionCommitted, TransactionRolledBack}, audit)

	stats := dispatcher.Stats()
	if stats[TransactionCommitted] != 1 || stats[TransactionRolledBack] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}

	dispatcher.Forget(TransactionCommitted)
	_ = dispatcher.Dispatch(NewBaseEvent(TransactionCommitted, nil))
	_ = dispatcher.Dispatch(NewBaseEvent(TransactionRolledBack, nil))

	if audit.count() != 1 {
		t.Errorf("Expected 1 call after Forget, got: %d", audit.count())
	}
}

func TestDispatcher_ListenerError(t *testing.T) {
	logger := &mockLogger{}
	dispatcher := NewDispatcher(logger)
	defer dispatcher.Shutdown()

	first := &countingListener{}
	broken := &countingListener{err: fmt.Errorf("simulated error")}
	last := &countingListener{}

	dispatcher.Listen(QueryExecuted, first)
	dispatcher.Listen(QueryExecuted, broken)
	dispatcher.Listen(QueryExecuted, last)

	if err := dispatcher.Dispatch(NewBaseEvent(QueryExecuted, nil)); err == nil {
		t.Error("Expected error from broken listener, got nil")
	}

	for i, l := range []*countingListener{first, broken, last} {
		if l.count() != 1 {
			t.Errorf("Listener %d: expected 1 call, got %d", i, l.count())
		}
	}
	if logger.count() != 1 {
		t.Errorf("Expected the error to be logged once, got %d", logger.count())
	}
}

func TestDispatcher_ConditionalListener(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	slow := &countingListener{}
	dispatcher.Listen(QueryExecuted, NewConditionalListener(slow, func(e Event) bool {
		return e.Payload().(time.Duration) > 100*time.Millisecond
	}))

	_ = dispatcher.Dispatch(NewBaseEvent(QueryExecuted, 5*time.Millisecond))
	_ = dispatcher.Dispatch(NewBaseEvent(QueryExecuted, 250*time.Millisecond))

	if slow.count() != 1 {
		t.Errorf("Expected 1 slow query, got: %d", slow.count())
	}
}

func TestDispatcher_AsyncDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})

	listener := &countingListener{delay: 100 * time.Millisecond}
	dispatcher.Listen(QueryExecuted, listener)

	start := time.Now()
	dispatcher.DispatchAsync(NewBaseEvent(QueryExecuted, nil))
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("DispatchAsync blocked for %v, expected < 50ms", elapsed)
	}

	dispatcher.Shutdown()

	if listener.count() != 1 {
		t.Errorf("Expected listener to be called once, got: %d", listener.count())
	}
}

func TestAsyncListener(t *testing.T) {
	logger := &mockLogger{}
	done := make(chan struct{})

	async := NewAsyncListener(ListenerFunc(func(Event) error {
		defer close(done)
		return fmt.Errorf("metrics endpoint down")
	}), logger)

	if err := async.Handle(NewBaseEvent(QueryExecuted, nil)); err != nil {
		t.Errorf("AsyncListener must return nil, got: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async listener did not run")
	}

	deadline := time.Now().Add(time.Second)
	for logger.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if logger.count() != 1 {
		t.Errorf("Expected async error to be logged, got %d lines", logger.count())
	}
}

func TestDispatcher_Shutdown(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})

	listener := &countingListener{delay: 50 * time.Millisecond}
	dispatcher.Listen(QueryExecuted, listener)

	for i := 0; i < 10; i++ {
		dispatcher.DispatchAsync(NewBaseEvent(QueryExecuted, i))
	}
	dispatcher.Shutdown()

	if listener.count() != 10 {
		t.Errorf("Expected 10 listener calls, got: %d", listener.count())
	}
}

func TestDispatcher_ShutdownWithTimeout(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})

	listener := &countingListener{delay: 500 * time.Millisecond}
	dispatcher.Listen(QueryExecuted, listener)
	dispatcher.DispatchAsync(NewBaseEvent(QueryExecuted, nil))

	if err := dispatcher.ShutdownWithTimeout(100 * time.Millisecond); err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestDispatcher_AsyncAfterShutdown(t *testing.T) {
	logger := &mockLogger{}
	dispatcher := NewDispatcher(logger)

	listener := &countingListener{}
	dispatcher.Listen(QueryExecuted, listener)

	dispatcher.Shutdown()
	dispatcher.DispatchAsync(NewBaseEvent(QueryExecuted, nil))
	time.Sleep(50 * time.Millisecond)

	if listener.count() != 0 {
		t.Errorf("Expected 0 listener calls after shutdown, got: %d", listener.count())
	}
	if logger.count() != 1 {
		t.Errorf("Expected the ignored event to be logged, got %d lines", logger.count())
	}
}

func TestDispatcher_NoGoroutineLeak(t *testing.T) {
	initial := runtime.NumGoroutine()

	dispatcher := NewDispatcher(&mockLogger{})
	dispatcher.Listen(QueryExecuted, &countingListener{})
	for i := 0; i < 100; i++ {
		dispatcher.DispatchAsync(NewBaseEvent(QueryExecuted, i))
	}
	dispatcher.Shutdown()
	time.Sleep(50 * time.Millisecond)

	if final := runtime.NumGoroutine(); final > initial+5 {
		t.Errorf("Potential goroutine leak: initial=%d, final=%d", initial, final)
	}
}

func TestDispatcher_ConcurrentDispatch(t *testing.T) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	listener := &countingListener{}
	dispatcher.Listen(QueryExecuted, listener)

	var wg sync.WaitGroup
	workers, perWorker := 50, 20

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = dispatcher.Dispatch(NewBaseEvent(QueryExecuted, j))
			}
		}()
	}

	// Listener eklemek dispatch ile yarışmamalı.
	dispatcher.Listen(CacheHit, &countingListener{})
	wg.Wait()

	if got, want := listener.count(), workers*perWorker; got != want {
		t.Errorf("Expected %d listener calls, got: %d", want, got)
	}
}

func BenchmarkDispatcher_Dispatch(b *testing.B) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	dispatcher.Listen(QueryExecuted, &countingListener{})
	event := NewBaseEvent(QueryExecuted, "SELECT 1;")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = dispatcher.Dispatch(event)
	}
}

func BenchmarkDispatcher_HasListenersMiss(b *testing.B) {
	dispatcher := NewDispatcher(&mockLogger{})
	defer dispatcher.Shutdown()

	for i := 0; i < b.N; i++ {
		_ = dispatcher.HasListeners(QueryExecuted)
	}
}
