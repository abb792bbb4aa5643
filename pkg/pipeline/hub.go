package pipeline

import (
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// hub はスナップショットの配信を担う最小のファンアウト機構なのだ。
// 各購読者はバッファ1の latest-wins チャネルを持ち、遅い購読者がいても
// オーケストレーターの進行を妨げません（古いスナップショットは捨てられます）。
type hub struct {
	mu   sync.Mutex
	subs map[chan domain.Snapshot]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan domain.Snapshot]struct{})}
}

// subscribe は購読チャネルと購読解除関数を返します。
// latest には現在のスナップショットを渡し、購読直後に必ず1件届くようにします。
func (h *hub) subscribe(latest domain.Snapshot) (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)
	ch <- latest

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// publish は全購読者へスナップショットを配信します。
// 未読の古いスナップショットは破棄してから最新版を入れるため、送信はブロックしません。
func (h *hub) publish(snap domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
