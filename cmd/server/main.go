package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/astrostream/internal/api"
	"github.com/example/astrostream/internal/astro"
	"github.com/example/astrostream/internal/music"
	"github.com/example/astrostream/internal/providers/llm"
)

func main() {
	_ = godotenv.Load()

	log := newLogger()
	defer log.Sync()

	ctx := context.Background()

	// Backend handles are built once here and injected; a missing generation
	// backend leaves the streaming endpoints answering 503 instead of
	// failing mid-stream.
	llmClient, err := llm.NewFromEnv(ctx)
	if err != nil {
		log.Warn("text generation backend not configured", zap.Error(err))
		llmClient = nil
	}

	charts, err := astro.NewHTTPProviderFromEnv()
	if err != nil {
		log.Fatal("chart provider not configured", zap.Error(err))
	}

	musicClient := music.NewClientFromEnv(log)
	if musicClient == nil {
		log.Warn("LAST_FM_API_KEY not set, prompts go out without genre tracks")
	}

	srv := api.New(llmClient, charts, musicClient, log)
	mux := http.NewServeMux()
	srv.Register(mux)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	log.Info("server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, cors(mux)); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	if os.Getenv("LOG_LEVEL") == "debug" {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// cors allows the browser frontend to call the API. CORS_ALLOWED_ORIGIN
// restricts it to one origin; unset means any, which suits local dev.
func cors(next http.Handler) http.Handler {
	origin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
