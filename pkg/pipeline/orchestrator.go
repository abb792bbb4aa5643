package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

// Config はオーケストレーターの依存関係と動作設定なのだ。
type Config struct {
	Client  GenerationClient
	Prompts *prompts.Builder

	// Sink は生成画像の保存先。nil の場合は保存せずメモリ上にのみ保持します。
	Sink AssetSink

	// RateInterval は生成リクエスト間の最小間隔。0 で制限なしです。
	RateInterval time.Duration
}

// Orchestrator は3フェーズの生成シーケンス（解析 → 要素デザイン → シーン描画）を駆動し、
// 進行状況を不変スナップショットとして購読者へ段階的に公開する状態機械なのだ。
//
// 同一実行内で外部呼び出しが2つ同時に飛ぶことは決してありません。各フェーズは
// 対象コレクションを厳密に1件ずつ処理し、未処理分の画像は単に「欠けている」状態で公開されます。
type Orchestrator struct {
	client  GenerationClient
	prompts *prompts.Builder
	sink    AssetSink
	limiter *rate.Limiter

	mu         sync.Mutex
	state      domain.Phase
	storyboard *domain.Storyboard
	progress   int
	errMsg     string

	// runID は実行世代のカウンターです。Reset で世代が進むと、
	// 旧世代の実行から届いた結果はすべて破棄されます。
	runID     uint64
	cancelRun context.CancelFunc

	hub *hub
}

// New は Orchestrator を構築します。状態は Idle から始まります。
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		client:  cfg.Client,
		prompts: cfg.Prompts,
		sink:    cfg.Sink,
		state:   domain.PhaseIdle,
		hub:     newHub(),
	}
	if cfg.RateInterval > 0 {
		o.limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	}
	return o
}

// Start は音声ペイロードを受け取り、3フェーズを呼び出し元のゴルーチン上で最後まで実行します。
// 宣言メディアタイプが audio/* でない場合は、ネットワーク呼び出しに入る前に
// ErrNotAudio を返し、状態は Idle のまま変化しません。
func (o *Orchestrator) Start(ctx context.Context, audio []byte, mimeType string) error {
	if !strings.HasPrefix(mimeType, "audio/") {
		return fmt.Errorf("%w: '%s'", ErrNotAudio, mimeType)
	}

	runCtx, runID, err := o.begin(ctx)
	if err != nil {
		return err
	}
	defer o.finishRun(runID)

	slog.Info("Phase 1: 音声解析を開始します", "mime_type", mimeType, "bytes", len(audio))

	sb, err := o.client.AnalyzeAudio(runCtx, audio, mimeType)
	if err != nil {
		o.fail(runID, err)
		return err
	}

	o.commit(runID, func() {
		o.storyboard = sb
		o.setStateLocked(domain.PhaseDesigningElements)
		o.progress = 0
	})

	return o.runGenerationPhases(runCtx, runID, sb)
}

// RunFromStoryboard は解析済みの絵コンテから Phase 2 以降を実行します。
// render コマンドのように、テキスト部分を確定済みのJSONから再開する入口なのだ。
func (o *Orchestrator) RunFromStoryboard(ctx context.Context, sb *domain.Storyboard) error {
	runCtx, runID, err := o.begin(ctx)
	if err != nil {
		return err
	}
	defer o.finishRun(runID)

	if err := sb.Validate(); err != nil {
		o.fail(runID, err)
		return err
	}
	sb.SortScenes()

	o.commit(runID, func() {
		o.storyboard = sb
		o.setStateLocked(domain.PhaseDesigningElements)
		o.progress = 0
	})

	return o.runGenerationPhases(runCtx, runID, sb)
}

// Reset はどの状態からでもパイプラインを Idle に戻し、実行中の処理を放棄します。
// 放棄された実行の結果は世代カウンターにより破棄され、状態を二度と変更できません。
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancelRun != nil {
		o.cancelRun()
		o.cancelRun = nil
	}
	o.runID++
	o.state = domain.PhaseIdle
	o.storyboard = nil
	o.progress = 0
	o.errMsg = ""
	o.publishLocked()
}

// State は現在の状態の不変スナップショットを返します。
func (o *Orchestrator) State() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Subscribe はスナップショットの購読チャネルと購読解除関数を返します。
// 購読直後に現在のスナップショットが1件再生されます。
func (o *Orchestrator) Subscribe() (<-chan domain.Snapshot, func()) {
	o.mu.Lock()
	latest := o.snapshotLocked()
	o.mu.Unlock()
	return o.hub.subscribe(latest)
}

// begin は新しい実行のスロットを獲得します。Idle 以外からの起動は ErrRunActive です。
func (o *Orchestrator) begin(ctx context.Context) (context.Context, uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != domain.PhaseIdle {
		return nil, 0, fmt.Errorf("%w (現在の状態: %s)", ErrRunActive, o.state)
	}

	o.runID++
	runID := o.runID
	runCtx, cancel := context.WithCancel(ctx)
	o.cancelRun = cancel
	o.setStateLocked(domain.PhaseAnalyzing)
	o.progress = 0
	o.errMsg = ""
	o.publishLocked()

	return runCtx, runID, nil
}

// finishRun は実行終了時に cancel 関数を解放します（世代が進んでいれば何もしません）。
func (o *Orchestrator) finishRun(runID uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.runID == runID && o.cancelRun != nil {
		o.cancelRun()
		o.cancelRun = nil
	}
}

// runGenerationPhases は Phase 2（要素デザイン）と Phase 3（シーン描画）を順に実行します。
func (o *Orchestrator) runGenerationPhases(ctx context.Context, runID uint64, sb *domain.Storyboard) error {
	if err := o.designElements(ctx, runID, sb); err != nil {
		return err
	}
	if err := o.renderScenes(ctx, runID, sb); err != nil {
		return err
	}

	o.commit(runID, func() {
		o.setStateLocked(domain.PhaseReady)
		o.progress = 100
	})

	slog.Info("全フェーズが完了しました", "title", sb.Title, "scenes", len(sb.Scenes))
	return nil
}

// designElements は Phase 2 を実行します。要素を1件ずつ順番に処理し、
// 成功のたびにスナップショットを公開するため、購読者には画像が1枚ずつ現れます。
func (o *Orchestrator) designElements(ctx context.Context, runID uint64, sb *domain.Storyboard) error {
	elements := sb.ProductionDesign.RecurringElements
	total := len(elements)

	slog.Info("Phase 2: リファレンス画像の生成を開始します", "elements", total)

	for i := range elements {
		el := &elements[i]

		if err := o.waitTurn(ctx); err != nil {
			o.fail(runID, err)
			return err
		}

		prompt := o.prompts.ElementSheet(sb.ProductionDesign.ArtStyle, *el)
		blob, err := o.client.GenerateImage(ctx, prompt, nil)
		if err != nil {
			o.fail(runID, err)
			return err
		}

		url, err := o.saveElement(ctx, *el, blob)
		if err != nil {
			o.fail(runID, err)
			return err
		}

		done := i + 1
		o.commit(runID, func() {
			el.Image = blob
			el.ImageURL = url
			o.progress = percent(done, total)
		})

		slog.Info("リファレンス画像を生成しました", "element", el.Name, "done", done, "total", total)
	}

	o.commit(runID, func() {
		o.setStateLocked(domain.PhaseGeneratingImages)
		o.progress = 0
	})
	return nil
}

// renderScenes は Phase 3 を実行します。要素順に収集したリファレンス画像一式を
// すべてのシーン生成に添付し、タイムスタンプ順に1件ずつ描画します。
func (o *Orchestrator) renderScenes(ctx context.Context, runID uint64, sb *domain.Storyboard) error {
	refs := sb.ReferenceImages()
	total := len(sb.Scenes)

	slog.Info("Phase 3: シーン画像の生成を開始します", "scenes", total, "references", len(refs))

	for i := range sb.Scenes {
		sc := &sb.Scenes[i]

		if err := o.waitTurn(ctx); err != nil {
			o.fail(runID, err)
			return err
		}

		prompt := o.prompts.SceneShot(sb.ProductionDesign.ArtStyle, *sc)
		blob, err := o.client.GenerateImage(ctx, prompt, refs)
		if err != nil {
			o.fail(runID, err)
			return err
		}

		url, err := o.saveScene(ctx, i, *sc, blob)
		if err != nil {
			o.fail(runID, err)
			return err
		}

		done := i + 1
		o.commit(runID, func() {
			sc.Image = blob
			sc.ImageURL = url
			o.progress = percent(done, total)
		})

		slog.Info("シーン画像を生成しました", "timestamp", sc.Timestamp, "done", done, "total", total)
	}
	return nil
}

// saveElement は Sink が設定されている場合のみ画像を保存し、ハンドルを返します。
func (o *Orchestrator) saveElement(ctx context.Context, el domain.VisualElement, blob *domain.ImageBlob) (string, error) {
	if o.sink == nil {
		return "", nil
	}
	return o.sink.SaveElement(ctx, el, *blob)
}

// saveScene は Sink が設定されている場合のみ画像を保存し、ハンドルを返します。
func (o *Orchestrator) saveScene(ctx context.Context, index int, sc domain.Scene, blob *domain.ImageBlob) (string, error) {
	if o.sink == nil {
		return "", nil
	}
	return o.sink.SaveScene(ctx, index, sc, *blob)
}

// waitTurn はレートリミッターが設定されている場合、次のリクエストの順番を待ちます。
func (o *Orchestrator) waitTurn(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}
	return o.limiter.Wait(ctx)
}

// commit は実行世代が現役の場合のみ変更を適用し、スナップショットを公開します。
// Reset 後に届いた古い実行の結果はここで破棄されます。
func (o *Orchestrator) commit(runID uint64, mutate func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.runID != runID {
		slog.Debug("破棄された実行の結果を無視します", "stale_run", runID, "current_run", o.runID)
		return false
	}
	mutate()
	o.publishLocked()
	return true
}

// fail は実行を Error 状態で終端し、エラーメッセージをそのまま公開します。
func (o *Orchestrator) fail(runID uint64, err error) {
	o.commit(runID, func() {
		o.setStateLocked(domain.PhaseError)
		o.errMsg = err.Error()
	})
}

// setStateLocked は状態遷移表に従って状態を更新します。呼び出し側がロックを保持します。
func (o *Orchestrator) setStateLocked(to domain.Phase) {
	if !domain.CanTransition(o.state, to) {
		slog.Warn("状態遷移表にない遷移を要求されました", "from", o.state.String(), "to", to.String())
		return
	}
	o.state = to
}

// snapshotLocked は現在の状態のディープコピーを組み立てます。呼び出し側がロックを保持します。
func (o *Orchestrator) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		State:      o.state,
		Storyboard: o.storyboard.Clone(),
		Progress:   o.progress,
		Err:        o.errMsg,
	}
}

// publishLocked は現在のスナップショットを購読者へ配信します。呼び出し側がロックを保持します。
func (o *Orchestrator) publishLocked() {
	o.hub.publish(o.snapshotLocked())
}

// percent はフェーズ内の進捗率を四捨五入した 0〜100 の整数で返します。
func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
