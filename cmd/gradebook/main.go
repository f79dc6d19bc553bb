package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/app"
	"github.com/Carsk101/acutea/internal/auth"
	"github.com/Carsk101/acutea/internal/config"
	"github.com/Carsk101/acutea/internal/ctxutil"
	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/gradebook"
	"github.com/Carsk101/acutea/internal/jobs"
	"github.com/Carsk101/acutea/internal/logging"
	"github.com/Carsk101/acutea/internal/metrics"
	"github.com/Carsk101/acutea/internal/notify"
	"github.com/Carsk101/acutea/internal/observability"
	"github.com/Carsk101/acutea/internal/tg"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctxutil.DefaultDBTimeout = cfg.DBTimeout
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database); err != nil {
			logger.Fatal("Миграция не удалась", zap.Error(err))
		}
	}
	store := db.NewStore(database)

	authLog := lg.Named("auth")
	provider := auth.NewProvider(store, authLog, auth.WithTTL(cfg.SessionTTL))
	provider.Subscribe(func(e auth.Event) {
		metrics.SessionEvents.WithLabelValues(string(e.Kind)).Inc()
		authLog.Info("сессия", zap.String("event", string(e.Kind)), zap.Int64("user_id", e.Session.UserID))
	})

	sinks := notify.Multi{notify.LogSink{Log: lg.Named("notice")}}
	var opsSink notify.Sink = notify.Nop{}
	if cfg.TelegramEnabled() {
		bot, err := tg.NewBot(cfg.BotToken)
		if err != nil {
			logger.Error("telegram: бот не запущен, уведомления только в лог", zap.Error(err))
		} else {
			logger.Info("telegram: уведомления включены", zap.String("bot", bot.Self.UserName))
			opsSink = notify.TelegramSink{Bot: bot, ChatIDs: cfg.NotifyChatIDs, MinLevel: notify.Error, Log: lg.Named("telegram")}
			sinks = append(sinks, opsSink)
		}
	}

	book := gradebook.NewService(store, lg.Named("gradebook"))

	jobsLog := lg.Named("jobs")
	runner := jobs.New(ctx, jobsLog)
	runner.Every(cfg.WeightAuditInterval, "weight_audit", jobs.WeightAuditJob(store, notify.Multi{notify.LogSink{Log: jobsLog}, opsSink}, jobsLog))
	runner.Every(cfg.SessionGCInterval, "session_gc", jobs.SessionGCJob(store, jobsLog))

	srv := app.NewServer(store, provider, book, sinks, lg.Named("http"), app.WithLocation(cfg.Location))
	hs, err := app.StartHTTP(ctx, cfg.HTTPAddr, srv.Routes(), lg.Named("http"))
	if err != nil {
		logger.Fatal("http: не удалось занять адрес", zap.String("addr", cfg.HTTPAddr), zap.Error(err))
	}

	logger.Info("Журнал запущен", zap.String("addr", hs.Addr()), zap.String("env", cfg.Env))
	<-ctx.Done()
	logger.Info("Остановка")
	<-hs.Done()
}
