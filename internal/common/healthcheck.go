package common

import (
	"context"
	"net/http"

	"github.com/khanghh/clubhub/params"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Ping checks the database and, when configured, the redis connection.
func Ping(ctx context.Context, db *gorm.DB, rdb redis.UniversalClient) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if rdb != nil {
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			return err
		}
	}
	return nil
}

func StartHealthCheckServer(ctx context.Context, done chan struct{}, rdb redis.UniversalClient, db *gorm.DB) {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := Ping(r.Context(), db, rdb); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    params.HealthCheckServerAddr,
		Handler: mux,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		server.Close()
		close(done)
	case <-serverErr:
		close(done)
	}
}
