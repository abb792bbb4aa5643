package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Version はAPIの公開バージョンなのだ。
const Version = "0.1.0"

// ServerConfig はHTTPサーバーの依存関係を束ねます。
type ServerConfig struct {
	Port      int
	Pipeline  Pipeline
	Sink      *MemorySink
	Logger    *slog.Logger
	StartTime time.Time
}

// Server はパイプラインの進行を配信するHTTPプレゼンテーション層なのだ。
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer は ServerConfig からHTTPサーバーを構築します。
func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// SSEを流し続けるため WriteTimeout は設定しない
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start はHTTPサーバーを起動し、正常終了以外のエラーを返します。
func (s *Server) Start() error {
	s.logger.Info("HTTPサーバーを起動します", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown はHTTPサーバーを穏やかに停止します。
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTPサーバーを停止します")
	return s.httpServer.Shutdown(ctx)
}

// Addr は待ち受けアドレスを返します。
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
