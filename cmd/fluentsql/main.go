// fluentsql, yapılandırılmış bir bağlantı üzerinde ham statement çalıştıran
// küçük bir komut satırı aracıdır. Statement türü ilk kelimeden çıkarılır ve
// çalıştırılmadan önce doğrulanır.
//
//	fluentsql -connection reporting "SELECT * FROM users WHERE id = ?" 42
//	fluentsql -slow 200ms "UPDATE users SET active = ? WHERE id = ?" 0 7
//	fluentsql -check "DELETE FROM users WHERE id = ?"
//	fluentsql -list
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/biyonik/fluent-query/internal/config"
	"github.com/biyonik/fluent-query/pkg/cache"
	"github.com/biyonik/fluent-query/pkg/database"
	"github.com/biyonik/fluent-query/pkg/events"
)

func main() {
	logger := log.New(os.Stderr, "[fluentsql] ", log.LstdFlags)

	if err := run(logger, os.Args[1:]); err != nil {
		logger.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger, argv []string) error {
	fs := flag.NewFlagSet("fluentsql", flag.ContinueOnError)
	connection := fs.String("connection", "", "bağlantı adı (varsayılan: DB_CONNECTION)")
	check := fs.Bool("check", false, "yalnızca statement türünü doğrula, çalıştırma")
	list := fs.Bool("list", false, "yapılandırılmış bağlantıları listele")
	timeout := fs.Duration("timeout", 30*time.Second, "statement timeout")
	slow := fs.Duration("slow", 0, "bu süreyi aşan statement'ları logla (0 = kapalı)")
	if err := fs.Parse(argv); err != nil {
		return err
	}

	cfg := config.Load()

	if *list {
		conns, err := cfg.Connections()
		if err != nil {
			return err
		}
		registry := database.NewRegistry(logger)
		registry.RegisterAll(conns)
		for _, name := range registry.Names() {
			fmt.Printf("%s\t%s\n", name, conns[name].Dialect)
		}
		return nil
	}

	if fs.NArg() == 0 {
		return errors.New("kullanım: fluentsql [-connection ad] [-check] \"SQL\" [arg ...]")
	}
	query := fs.Arg(0)
	args := make([]any, 0, fs.NArg()-1)
	for _, a := range fs.Args()[1:] {
		args = append(args, a)
	}

	kind, err := statementKind(query)
	if err != nil {
		return err
	}
	if err := database.ValidateQuery(query, kind); err != nil {
		return err
	}
	if *check {
		fmt.Printf("✅ geçerli %s statement\n", kind)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dispatcher := events.NewDispatcher(logger)
	defer dispatcher.Shutdown()
	if *slow > 0 {
		dispatcher.Listen(events.QueryExecuted, slowQueryListener(logger, *slow))
	}

	registry, closeCache, err := boot(ctx, cfg, logger, database.WithEvents(dispatcher))
	if err != nil {
		return err
	}
	defer closeCache()
	defer registry.Close()

	name := *connection
	if name == "" {
		name = cfg.DB.Connection
	}
	conn, err := registry.Boot(ctx, name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	return execute(ctx, conn, kind, query, args)
}

// statementKind, SQL'in ilk kelimesinden statement türünü çıkarır.
func statementKind(query string) (database.QueryKind, error) {
	fields := strings.Fields(strings.ToUpper(query))
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: boş statement", database.ErrInvalidRawQuery)
	}

	switch kind := database.QueryKind(strings.TrimRight(fields[0], "(;")); kind {
	case database.KindSelect, database.KindInsert, database.KindUpdate, database.KindDelete:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: desteklenmeyen statement %q", database.ErrInvalidRawQuery, fields[0])
	}
}

// slowQueryListener, threshold'u aşan statement'ları loglayan listener döndürür.
func slowQueryListener(logger *log.Logger, threshold time.Duration) events.Listener {
	logSlow := events.ListenerFunc(func(e events.Event) error {
		q := e.Payload().(database.QueryEvent)
		logger.Printf("🐢 [%s] Yavaş statement (%s): %s", q.Connection, q.Duration, q.SQL)
		return nil
	})
	return events.NewConditionalListener(logSlow, func(e events.Event) bool {
		q, ok := e.Payload().(database.QueryEvent)
		return ok && q.Duration >= threshold
	})
}

// boot, registry'yi ve query cache sürücüsünü yapılandırır.
func boot(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...database.Option) (*database.Registry, func(), error) {
	conns, err := cfg.Connections()
	if err != nil {
		return nil, nil, err
	}

	closeCache := func() {}

	switch cfg.QueryCache.Driver {
	case "memory":
		mc := cache.NewMemoryCache(logger)
		opts = append(opts, database.WithResultCache(mc, cfg.QueryCache.Prefix))
		closeCache = mc.Stop
	case "redis":
		client, err := cache.NewRedisClient(ctx, &cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		rc := cache.NewRedisCache(client.Client(), logger, cfg.QueryCache.Prefix)
		opts = append(opts, database.WithResultCache(rc, ""))
		closeCache = func() { _ = client.Close() }
	}

	registry := database.NewRegistry(logger, opts...)
	registry.RegisterAll(conns)
	return registry, closeCache, nil
}

// execute, statement'ı türüne göre çalıştırır ve sonucu JSON olarak yazar.
func execute(ctx context.Context, conn *database.Connection, kind database.QueryKind, query string, args []any) error {
	out := map[string]any{"connection": conn.Name(), "kind": kind}

	switch kind {
	case database.KindSelect:
		res, err := conn.SelectRaw(ctx, query, args...)
		if err != nil {
			return err
		}
		out["row_count"] = res.RowCount
		out["items"] = res.ToArray()
	case database.KindInsert:
		id, err := conn.CreateRaw(ctx, query, args...)
		if err != nil {
			return err
		}
		out["last_insert_id"] = id
	case database.KindUpdate:
		n, err := conn.UpdateRaw(ctx, query, args...)
		if err != nil {
			return err
		}
		out["rows_affected"] = n
	case database.KindDelete:
		n, err := conn.DeleteRaw(ctx, query, args...)
		if err != nil {
			return err
		}
		out["rows_affected"] = n
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
