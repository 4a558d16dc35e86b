package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"holdem-server/internal/config"
	"holdem-server/internal/jwt"
	"holdem-server/internal/mux"
	"holdem-server/pkg/cache"
	"holdem-server/pkg/db"
	"holdem-server/pkg/model"
	"holdem-server/pkg/room"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()

	cfg := config.Instance()
	setupLogger(cfg)

	// fail fast
	keys, err := jwt.LoadKeys(cfg.JWT.PublicKey, "")
	if err != nil {
		logrus.WithError(err).Fatal("could not load jwt keys")
	}

	dbh := db.Instance(cfg.PGDSN)
	if err := db.Migrate(dbh, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	opts := []room.Option{
		room.WithActionTimeout(cfg.Game.ActionTimeout),
		room.WithRoomDefaults(room.RoomDefaults{
			SmallBlind:    cfg.Game.SmallBlind,
			BigBlind:      cfg.Game.BigBlind,
			MaxPlayers:    cfg.Game.MaxPlayers,
			StartingChips: cfg.Game.StartingChips,
		}),
	}

	if cfg.Redis.URL != "" {
		c, err := cache.New(cache.Config{URL: cfg.Redis.URL, RoomTTL: cfg.Redis.RoomTTL, SnapshotTTL: cfg.Redis.SnapshotTTL})
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to redis")
		}
		defer c.Close()

		opts = append(opts, room.WithCache(c))
	} else {
		logrus.Warn("redis is not configured, running without a cache")
	}

	pitBoss := room.NewPitBoss(model.NewPostgres(dbh), opts...)

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	m := mux.NewMux(Version, pitBoss, keys, mux.SocketConfig{
		MessagesPerSecond: cfg.Socket.MessagesPerSecond,
		Burst:             cfg.Socket.Burst,
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(cfg, c.Handler(m)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("could not listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	pitBoss.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("could not shut down cleanly")
	}
}

func loggingHandler(cfg config.Config, next http.Handler) http.Handler {
	if cfg.Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger(cfg config.Config) {
	if lvl := cfg.Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(cfg.Log.Format) == "json" || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
