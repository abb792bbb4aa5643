package runner

import (
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// SnapshotWatcher はスナップショットの購読チャネルを監視し、
// 状態遷移と進捗をログに流すのだ。CLI実行における進捗バーの代わりなのだよ。
type SnapshotWatcher struct {
	// OnPlan は Phase 1 完了（DesigningElements への遷移）を最初に観測したときに
	// 1度だけ呼ばれます。storyboard.json の途中保存などに使います。nil 可。
	OnPlan func(sb *domain.Storyboard)
}

// Watch は終端状態（Ready または Error）のスナップショットを観測するまでブロックします。
// チャネルが閉じられた場合もそこで戻ります。
func (w *SnapshotWatcher) Watch(snapshots <-chan domain.Snapshot) {
	var lastState domain.Phase = domain.PhaseIdle
	lastProgress := -1
	planSeen := false

	for snap := range snapshots {
		if snap.State != lastState {
			slog.Info("フェーズが遷移しました", "from", lastState.String(), "to", snap.State.String())
			lastState = snap.State
			lastProgress = -1

			if snap.State == domain.PhaseDesigningElements && !planSeen && w.OnPlan != nil {
				planSeen = true
				w.OnPlan(snap.Storyboard)
			}
		}

		if snap.Progress != lastProgress && snap.State.Working() {
			slog.Info("進捗", "phase", snap.State.String(), "percent", snap.Progress)
			lastProgress = snap.Progress
		}

		if snap.State.Terminal() {
			if snap.Err != "" {
				slog.Error("パイプラインがエラーで終了しました", "error", snap.Err)
			}
			return
		}
	}
}
