package beds

import (
	"context"
	"time"
)

// Run 以 1 秒周期推进 TAT 倒计时，直到 ctx 取消
// 每次 Tick 在锁内同步完成后才会等待下一个周期，不存在重叠执行。
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	t.logger.Info("TAT ticker started")
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("TAT ticker stopped")
			return
		case now := <-ticker.C:
			t.Tick(ctx, now)
		}
	}
}
