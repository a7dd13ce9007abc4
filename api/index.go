package handler

import (
	"net/http"
	"sync"

	"localguide/config"
	"localguide/di"
	"localguide/shared/logger"
	transport "localguide/transport/http"
)

var (
	once   sync.Once
	server *transport.HTTP
)

// Handler is the serverless entrypoint. The container is built once per instance and reused across invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger(cfg)

		logger.SetLogLevel(cfg)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
