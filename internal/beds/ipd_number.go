package beds

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hospilink-data/internal/store"
)

// counterKeyPrefix 每日入院流水号键前缀（键形如 ipd-counter-20250831）
const counterKeyPrefix = "ipd-counter-"

// nextIPDNumber 分配下一个 IPD 号：IPD-<YYYYMMDD>-<seq%03d>
// 流水号按自然日从 1 递增，KV 中读-增-写；跨天自动从 001 重新开始。
// 流水号永不回退：出院/重置都不会归还已分配的编号。
func (t *Tracker) nextIPDNumber(ctx context.Context, now time.Time) (string, error) {
	day := now.Format("20060102")
	key := counterKeyPrefix + day

	seq := 0
	val, err := t.kv.Get(ctx, key)
	switch {
	case err == nil:
		// 损坏的计数值当作 0 处理，编号从头继续
		if n, perr := strconv.Atoi(val); perr == nil && n > 0 {
			seq = n
		}
	case err != store.ErrMiss:
		return "", fmt.Errorf("failed to read ipd counter: %w", err)
	}

	seq++
	if err := t.kv.Set(ctx, key, strconv.Itoa(seq), 0); err != nil {
		return "", fmt.Errorf("failed to advance ipd counter: %w", err)
	}

	return fmt.Sprintf("IPD-%s-%03d", day, seq), nil
}
