package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Pipeline は本サーバーが依存するオーケストレーターの操作なのだ。
// テストではフェイクを差し込めるよう、具象型ではなくこの最小契約に依存します。
type Pipeline interface {
	Start(ctx context.Context, audio []byte, mimeType string) error
	Reset()
	State() domain.Snapshot
	Subscribe() (<-chan domain.Snapshot, func())
}

// NewRouter はAPIのルーティングを構築します。
func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Post("/runs", startRunHandler(cfg))
		r.Get("/state", stateHandler(cfg))
		r.Get("/events", eventsHandler(cfg))
		r.Post("/reset", resetHandler(cfg))
		r.Get("/images/{name}", imageHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// startRunHandler は multipart の音声ファイルを受け取り、新しい実行を開始します。
// メディアタイプの検証はネットワーク呼び出しの前に行われ、音声以外は 400 で拒否されます。
func startRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("audio")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "multipart フィールド 'audio' が必要です", "BAD_REQUEST")
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
		}
		if !strings.HasPrefix(mimeType, "audio/") {
			WriteError(w, http.StatusBadRequest,
				fmt.Sprintf("音声ファイルではありません (content-type: %s)", mimeType), "NOT_AUDIO")
			return
		}

		if snap := cfg.Pipeline.State(); snap.State != domain.PhaseIdle {
			WriteError(w, http.StatusConflict,
				fmt.Sprintf("別の実行が進行中です (state: %s)", snap.State), "RUN_ACTIVE")
			return
		}

		audio, err := io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "音声ファイルの読み込みに失敗しました", "BAD_REQUEST")
			return
		}

		// 実行はリクエストの寿命に縛られないバックグラウンドで進める。
		// 以降の進捗は /api/state と /api/events から観測できる。
		go func() {
			if err := cfg.Pipeline.Start(context.Background(), audio, mimeType); err != nil {
				cfg.Logger.Error("パイプライン実行が失敗しました", "error", err)
			}
		}()

		WriteJSON(w, http.StatusAccepted, RunAcceptedResponse{State: domain.PhaseAnalyzing.String()})
	}
}

func stateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Pipeline.State())
	}
}

// eventsHandler はスナップショットをSSEでストリーム配信します。
// 購読直後に現在のスナップショットが1件再生され、以降は更新のたびに届きます。
func eventsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		snapshots, cancel := cfg.Pipeline.Subscribe()
		defer cancel()

		for {
			select {
			case <-r.Context().Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				data, err := json.Marshal(snap)
				if err != nil {
					cfg.Logger.Error("スナップショットのエンコードに失敗しました", "error", err)
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Pipeline.Reset()
		if cfg.Sink != nil {
			cfg.Sink.Clear()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func imageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		blob, ok := cfg.Sink.Get(name)
		if !ok {
			WriteError(w, http.StatusNotFound, "画像が見つかりません", "NOT_FOUND")
			return
		}
		w.Header().Set("Content-Type", blob.MimeType)
		w.WriteHeader(http.StatusOK)
		w.Write(blob.Data)
	}
}
