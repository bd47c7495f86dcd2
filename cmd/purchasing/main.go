// 采购单 CSV 摄取服务入口。
//
// 接收 multipart 表单提交的采购单（供应商、日期、CSV 明细文件），
// 逐行校验后原子落库，失败的提交不留任何数据。
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"purchasing/api"
	"purchasing/cache"
	"purchasing/config"
	httpx "purchasing/http"
	"purchasing/logging"
	"purchasing/notify"
	"purchasing/order"
	"purchasing/server"
	"purchasing/storage/database"
	basicdb "purchasing/storage/database/basic"
	sqlstore "purchasing/store/sql"
	"purchasing/upload"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（留空使用默认配置）")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.GetLogger().Error(context.Background(), "server exited", logging.Error(err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.NewStdLoggerAt("purchasing", logging.ParseLevel(cfg.LogLevel))
	logging.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := basicdb.New(database.DBConfig{
		Driver: "sqlite",
		DSN:    cfg.Database.Path,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := sqlstore.NewOrderStore(db, sqlstore.WithLogger(logger))
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	uploads, err := upload.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		return err
	}

	var notifier notify.IOrderNotifier = notify.NewNoopNotifier()
	if cfg.Nats.Enabled {
		natsNotifier, err := notify.NewNatsNotifier(notify.Config{
			URL:     cfg.Nats.URL,
			Subject: cfg.Nats.Subject,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		notifier = natsNotifier
	}
	defer notifier.Close()

	handler := api.NewPurchaseOrderHandler(store, uploads, logger,
		api.WithMaxFileSize(cfg.Upload.MaxFileSize),
		api.WithNotifier(notifier),
		api.WithCache(cache.New[int64, *order.PurchaseOrder](5*time.Minute, 256)))

	web := httpx.DefaultWebConfig()
	if cfg.Server.ReadTimeout > 0 {
		web.ReadTimeout = cfg.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout > 0 {
		web.WriteTimeout = cfg.Server.WriteTimeout
	}
	if cfg.Server.IdleTimeout > 0 {
		web.IdleTimeout = cfg.Server.IdleTimeout
	}

	srv := server.New([]server.IRouteRegistrar{handler},
		server.WithName("purchasing"),
		server.WithHost(cfg.Server.Host),
		server.WithPort(cfg.Server.Port),
		server.WithBasePath(cfg.Server.BasePath),
		server.WithWebConfig(web),
		server.WithLogger(logger))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
