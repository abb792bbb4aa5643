package vision

import (
	"context"
	"time"
)

// retryPolicy は「実行 → 失敗なら線形バックオフで再試行」を抽象化した小さなポリシーなのだ。
// MaxRetries は初回を除く追加試行回数で、合計 MaxRetries+1 回まで試行します。
// Sleep を差し替えられるようにしてあるため、テストでは待ち時間ゼロで検証できます。
type retryPolicy struct {
	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
}

// newRetryPolicy は step × 試行番号（1始まり）の線形バックオフを持つポリシーを返します。
func newRetryPolicy(maxRetries int, step time.Duration) retryPolicy {
	return retryPolicy{
		MaxRetries: maxRetries,
		Backoff: func(attempt int) time.Duration {
			return step * time.Duration(attempt)
		},
		Sleep: sleepWithContext,
	}
}

// Do は op を成功するまで、または試行回数を使い切るまで実行します。
// 最後の試行の後には待機しません。context の取消は待機中にも即座に反映されます。
func (p retryPolicy) Do(ctx context.Context, op func(attempt int) error) error {
	total := p.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= total; attempt++ {
		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == total {
			break
		}
		if err := p.Sleep(ctx, p.Backoff(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// sleepWithContext は context の取消を尊重する time.Sleep の代替なのだ。
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
