package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shouni/go-storyboard-kit/internal/api"
	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/runner"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// Execute は音声ファイルからの完全な実行（Phase 1〜3 + 公開）を行うのだ。
// Phase 1 完了時点で storyboard.json を途中保存し、画像は生成のたびに書き出されます。
func Execute(ctx context.Context, cfg *config.Config) error {
	audio, mimeType, err := runner.ReadAudioFile(cfg.Options.AudioFile)
	if err != nil {
		return err
	}

	client, err := builder.BuildVisionClient(ctx, cfg)
	if err != nil {
		return err
	}

	pub := publisher.NewStoryboardPublisher(publisher.NewLocalWriter(), cfg.Options.OutputDir)
	orch := builder.BuildOrchestrator(cfg, client, pub.Assets())

	snapshots, cancel := orch.Subscribe()
	defer cancel()

	watcher := &runner.SnapshotWatcher{
		OnPlan: func(sb *domain.Storyboard) {
			if path, planErr := pub.PublishPlan(ctx, sb); planErr != nil {
				slog.Warn("絵コンテJSONの途中保存に失敗しました", "error", planErr)
			} else {
				slog.Info("Phase 1 の絵コンテを保存しました", "path", path)
			}
		},
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Watch(snapshots)
	}()

	runErr := orch.Start(ctx, audio, mimeType)
	cancel()
	<-done
	if runErr != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", runErr)
	}

	return publishFinal(ctx, pub, orch.State().Storyboard)
}

// ExecuteAnalyzeOnly は Phase 1（音声解析）のみを実行し、絵コンテJSONを保存するのだ。
// 生成済みJSONを手で調整してから render で画像化する二段構えのワークフロー用なのだよ。
func ExecuteAnalyzeOnly(ctx context.Context, cfg *config.Config) error {
	audio, mimeType, err := runner.ReadAudioFile(cfg.Options.AudioFile)
	if err != nil {
		return err
	}

	client, err := builder.BuildVisionClient(ctx, cfg)
	if err != nil {
		return err
	}

	slog.Info("音声解析を開始します", "file", cfg.Options.AudioFile, "model", cfg.GeminiModel)
	sb, err := client.AnalyzeAudio(ctx, audio, mimeType)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(sb, "", "  ")
	if err != nil {
		return fmt.Errorf("絵コンテのエンコードに失敗しました: %w", err)
	}

	outputPath := cfg.Options.OutputFile
	writer := publisher.NewLocalWriter()
	if err := writer.Write(ctx, outputPath, data); err != nil {
		return err
	}

	slog.Info("絵コンテを保存したのだ！", "path", outputPath, "scenes", len(sb.Scenes))
	return nil
}

// ExecuteRenderOnly は解析済みの絵コンテJSONを読み込み、Phase 2〜3 と公開のみを実行するのだ。
// テキスト解析のコストを抑えつつ、画像の再生成や調整を行いたい場合に便利なのだ。
func ExecuteRenderOnly(ctx context.Context, cfg *config.Config) error {
	raw, err := os.ReadFile(cfg.Options.ScriptFile)
	if err != nil {
		return fmt.Errorf("絵コンテJSON '%s' の読み込みに失敗しました: %w", cfg.Options.ScriptFile, err)
	}

	var sb domain.Storyboard
	if err := json.Unmarshal(raw, &sb); err != nil {
		return fmt.Errorf("絵コンテJSON '%s' のデコードに失敗しました: %w", cfg.Options.ScriptFile, err)
	}

	client, err := builder.BuildVisionClient(ctx, cfg)
	if err != nil {
		return err
	}

	pub := publisher.NewStoryboardPublisher(publisher.NewLocalWriter(), cfg.Options.OutputDir)
	orch := builder.BuildOrchestrator(cfg, client, pub.Assets())

	snapshots, cancel := orch.Subscribe()
	defer cancel()

	watcher := &runner.SnapshotWatcher{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Watch(snapshots)
	}()

	runErr := orch.RunFromStoryboard(ctx, &sb)
	cancel()
	<-done
	if runErr != nil {
		return fmt.Errorf("画像生成中にエラーが発生したのだ: %w", runErr)
	}

	return publishFinal(ctx, pub, orch.State().Storyboard)
}

// ExecuteServe はHTTPプレゼンテーション層を起動するのだ。
// 画像はメモリ上に保持され、/api/images/{name} から配信されます。
func ExecuteServe(ctx context.Context, cfg *config.Config) error {
	client, err := builder.BuildVisionClient(ctx, cfg)
	if err != nil {
		return err
	}

	sink := api.NewMemorySink()
	orch := builder.BuildOrchestrator(cfg, client, sink)

	server := api.NewServer(api.ServerConfig{
		Port:      cfg.Options.Port,
		Pipeline:  orch,
		Sink:      sink,
		Logger:    slog.Default(),
		StartTime: time.Now(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("シグナルを受信しました。停止します", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// publishFinal は完成した絵コンテの最終成果物を書き出します。
func publishFinal(ctx context.Context, pub *publisher.StoryboardPublisher, sb *domain.Storyboard) error {
	if sb == nil {
		return fmt.Errorf("公開対象の絵コンテが存在しません")
	}
	result, err := pub.PublishFinal(ctx, sb)
	if err != nil {
		return fmt.Errorf("成果物の公開に失敗したのだ: %w", err)
	}
	slog.Info("すべての生成工程が完了したのだ！", "json", result.JSONPath, "markdown", result.MarkdownPath)
	return nil
}
