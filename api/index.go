package handler

import (
	"net/http"
	"roadbook/config"
	"roadbook/di"
	"roadbook/shared/logger"
	"sync"
)

var (
	app  http.Handler
	once sync.Once
)

// Handler is the serverless entrypoint. The application is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger(cfg)

		logger.SetLogLevel(cfg)

		app = di.InitializeService()
	})

	app.ServeHTTP(w, r)
}
