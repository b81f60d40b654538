package beds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hospilink-data/internal/domain"
	"hospilink-data/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotKey 床位快照在 KV 中的键（全量 Bed[] JSON）
const SnapshotKey = "hospital-ipd-beds"

// 操作错误（调用方可选择忽略，床位状态保证未改变）
var (
	ErrBedNotFound       = errors.New("bed not found")
	ErrBedOccupied       = errors.New("bed already occupied")
	ErrBedVacant         = errors.New("bed has no patient")
	ErrEmptyNote         = errors.New("note is empty")
	ErrInvalidTransition = errors.New("invalid tat transition")
)

// SyncClient 患者目录的入出院状态回写（尽力而为：失败不回滚本地状态）
type SyncClient interface {
	SetAdmissionStatus(ctx context.Context, patientID string, admitted bool, bedNumber int) error
}

// AlertNotifier TAT 超时报警出口
type AlertNotifier interface {
	TATExpired(ctx context.Context, bed domain.Bed)
}

// Tracker IPD 床位/TAT 状态机
// 固定 40 张床位，所有变更走整表复制（copy-on-write），变更后立即全量写回 KV 快照。
// 本地状态为该界面的权威数据源（local-first），远端回写失败只记录 pending_sync。
type Tracker struct {
	mu       sync.Mutex
	kv       store.KV
	sync     SyncClient
	notifier AlertNotifier
	logger   *zap.Logger
	now      func() time.Time

	beds []domain.Bed
}

// NewTracker 创建床位跟踪器（需随后调用 Load 完成快照恢复/初始化）
func NewTracker(kv store.KV, sc SyncClient, notifier AlertNotifier, logger *zap.Logger) *Tracker {
	return &Tracker{
		kv:       kv,
		sync:     sc,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Load 从 KV 恢复床位快照
// 快照缺失或 JSON 损坏时静默回退到 40 张全新空床（不向用户暴露错误）
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	val, err := t.kv.Get(ctx, SnapshotKey)
	if err != nil {
		if err != store.ErrMiss {
			return fmt.Errorf("failed to load bed snapshot: %w", err)
		}
		t.beds = initializeBeds()
		t.persistLocked(ctx)
		return nil
	}

	var beds []domain.Bed
	if err := json.Unmarshal([]byte(val), &beds); err != nil || len(beds) == 0 {
		t.logger.Warn("Bed snapshot unreadable, reinitializing",
			zap.String("key", SnapshotKey),
			zap.Error(err),
		)
		t.beds = initializeBeds()
		t.persistLocked(ctx)
		return nil
	}

	t.beds = beds
	return nil
}

// Beds 返回床位列表副本
func (t *Tracker) Beds() []domain.Bed {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Bed, len(t.beds))
	copy(out, t.beds)
	return out
}

// Bed 按 bed_id 查找
func (t *Tracker) Bed(bedID string) (domain.Bed, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexOf(bedID); i >= 0 {
		return t.beds[i], true
	}
	return domain.Bed{}, false
}

// Admit 入院：分配 IPD 号、占用床位、重置 TAT、清除上次的知情同意记录
// 远端状态回写在本地提交之后进行，失败只告警并置 pending_sync
func (t *Tracker) Admit(ctx context.Context, bedID string, patient domain.AdmittedPatient) (domain.Bed, error) {
	t.mu.Lock()
	i := t.indexOf(bedID)
	if i < 0 {
		t.mu.Unlock()
		return domain.Bed{}, ErrBedNotFound
	}
	if t.beds[i].Status == domain.BedOccupied {
		t.mu.Unlock()
		return domain.Bed{}, ErrBedOccupied
	}

	now := t.now()
	ipdNumber, err := t.nextIPDNumber(ctx, now)
	if err != nil {
		t.mu.Unlock()
		return domain.Bed{}, err
	}

	next := t.copyBeds()
	bed := &next[i]
	bed.Status = domain.BedOccupied
	bed.Patient = &patient
	bed.AdmissionDate = &now
	bed.IPDNumber = ipdNumber
	bed.TATStatus = domain.TATIdle
	bed.TATStartTime = nil
	bed.TATRemainingSeconds = domain.TATDurationSeconds
	bed.PendingSync = false
	if bed.Forms != nil {
		delete(bed.Forms, domain.FormConsent)
	}

	t.beds = next
	t.persistLocked(ctx)

	// 旧版子表单通过 <bedId>-ipdNumber 兜底恢复 IPD 号
	if err := t.kv.Set(ctx, legacyIPDKey(bedID), ipdNumber, 0); err != nil {
		t.logger.Warn("Failed to write legacy ipd number key", zap.String("bed_id", bedID), zap.Error(err))
	}

	admitted := next[i]
	t.mu.Unlock()

	t.syncStatus(ctx, bedID, patient.PatientID, true, admitted.Number)

	bed2, _ := t.Bed(bedID)
	return bed2, nil
}

// Discharge 出院：床位回到空床默认值（IPD 每日流水号不回退，编号永不复用）
func (t *Tracker) Discharge(ctx context.Context, bedID string) (domain.Bed, error) {
	t.mu.Lock()
	i := t.indexOf(bedID)
	if i < 0 {
		t.mu.Unlock()
		return domain.Bed{}, ErrBedNotFound
	}
	if t.beds[i].Patient == nil {
		t.mu.Unlock()
		return domain.Bed{}, ErrBedVacant
	}

	patientID := t.beds[i].Patient.PatientID
	number := t.beds[i].Number

	next := t.copyBeds()
	next[i] = domain.NewVacantBed(number)

	t.beds = next
	t.persistLocked(ctx)

	if err := t.kv.Del(ctx, legacyIPDKey(bedID)); err != nil {
		t.logger.Warn("Failed to clear legacy ipd number key", zap.String("bed_id", bedID), zap.Error(err))
	}
	t.mu.Unlock()

	t.syncStatus(ctx, bedID, patientID, false, 0)

	bed, _ := t.Bed(bedID)
	return bed, nil
}

// StartTAT 启动 30 分钟倒计时（仅占用中的床位，idle → running）
func (t *Tracker) StartTAT(ctx context.Context, bedID string) error {
	return t.transition(ctx, bedID, func(bed *domain.Bed, now time.Time) error {
		if bed.Status != domain.BedOccupied {
			return ErrBedVacant
		}
		if bed.TATStatus != domain.TATIdle {
			return fmt.Errorf("%w: %s -> running", ErrInvalidTransition, bed.TATStatus)
		}
		start := now
		bed.TATStatus = domain.TATRunning
		bed.TATStartTime = &start
		bed.TATRemainingSeconds = domain.TATDurationSeconds
		return nil
	})
}

// StopTAT 停止倒计时（running → completed；剩余秒数保留，停止不等于超时）
func (t *Tracker) StopTAT(ctx context.Context, bedID string) error {
	return t.transition(ctx, bedID, func(bed *domain.Bed, now time.Time) error {
		if bed.TATStatus != domain.TATRunning {
			return fmt.Errorf("%w: %s -> completed", ErrInvalidTransition, bed.TATStatus)
		}
		bed.TATStatus = domain.TATCompleted
		bed.TATStartTime = nil
		return nil
	})
}

// ResetTAT 重置倒计时（completed/expired → idle）
func (t *Tracker) ResetTAT(ctx context.Context, bedID string) error {
	return t.transition(ctx, bedID, func(bed *domain.Bed, now time.Time) error {
		if bed.TATStatus != domain.TATCompleted && bed.TATStatus != domain.TATExpired {
			return fmt.Errorf("%w: %s -> idle", ErrInvalidTransition, bed.TATStatus)
		}
		bed.TATStatus = domain.TATIdle
		bed.TATStartTime = nil
		bed.TATRemainingSeconds = domain.TATDurationSeconds
		return nil
	})
}

// Tick 推进所有 running 状态的倒计时
// remaining = max(0, 1800 - (now - start))；首次归零时迁移到 expired 并触发一次报警
func (t *Tracker) Tick(ctx context.Context, now time.Time) {
	t.mu.Lock()

	var expired []domain.Bed
	var next []domain.Bed
	changed := false

	for i := range t.beds {
		if t.beds[i].TATStatus != domain.TATRunning || t.beds[i].TATStartTime == nil {
			continue
		}
		if !changed {
			next = t.copyBeds()
			changed = true
		}
		elapsed := int(now.Sub(*t.beds[i].TATStartTime).Seconds())
		remaining := domain.TATDurationSeconds - elapsed
		if remaining <= 0 {
			next[i].TATRemainingSeconds = 0
			next[i].TATStatus = domain.TATExpired
			next[i].TATStartTime = nil
			expired = append(expired, next[i])
		} else {
			next[i].TATRemainingSeconds = remaining
		}
	}

	if changed {
		t.beds = next
		t.persistLocked(ctx)
	}
	t.mu.Unlock()

	for _, bed := range expired {
		t.notifier.TATExpired(ctx, bed)
	}
}

// AddConsultantNote 追加会诊备注（空白文本拒绝，无状态变更）
func (t *Tracker) AddConsultantNote(ctx context.Context, bedID, text, addedBy string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyNote
	}
	return t.transition(ctx, bedID, func(bed *domain.Bed, now time.Time) error {
		notes := make([]domain.ConsultantNote, len(bed.ConsultantNotes), len(bed.ConsultantNotes)+1)
		copy(notes, bed.ConsultantNotes)
		bed.ConsultantNotes = append(notes, domain.ConsultantNote{
			NoteID:    uuid.NewString(),
			Note:      text,
			AddedBy:   addedBy,
			Timestamp: now,
		})
		return nil
	})
}

// SubmitForm 记录临床表单提交
// 护理医嘱束的子表单（vitalChart/intakeOutput/...）按子类型合并进同一条
// nursesOrders 记录的 Payload，而不是整体覆盖；首次贡献时写入提交时间。
func (t *Tracker) SubmitForm(ctx context.Context, bedID string, kind domain.FormKind, payload map[string]any) error {
	return t.transition(ctx, bedID, func(bed *domain.Bed, now time.Time) error {
		forms := make(map[domain.FormKind]domain.FormSubmission, len(bed.Forms)+1)
		for k, v := range bed.Forms {
			forms[k] = v
		}

		if domain.IsNursesOrderKind(kind) {
			rec, ok := forms[domain.FormNursesOrders]
			if !ok {
				rec = domain.FormSubmission{Payload: map[string]any{}, SubmittedAt: now}
			}
			merged := make(map[string]any, len(rec.Payload)+1)
			for k, v := range rec.Payload {
				merged[k] = v
			}
			merged[string(kind)] = payload
			rec.Payload = merged
			forms[domain.FormNursesOrders] = rec
		} else {
			forms[kind] = domain.FormSubmission{Payload: payload, SubmittedAt: now}
		}

		bed.Forms = forms
		return nil
	})
}

// ResetAll 清空快照并重建 40 张空床（每日 IPD 流水号保留，编号继续递增）
func (t *Tracker) ResetAll(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.kv.Del(ctx, SnapshotKey); err != nil {
		t.logger.Warn("Failed to clear bed snapshot", zap.Error(err))
	}
	if keys, err := t.kv.ScanKeys(ctx, "bed-*-ipdNumber"); err == nil && len(keys) > 0 {
		if err := t.kv.Del(ctx, keys...); err != nil {
			t.logger.Warn("Failed to clear legacy ipd number keys", zap.Error(err))
		}
	}

	t.beds = initializeBeds()
	t.persistLocked(ctx)
}

// transition 通用的单床位 copy-on-write 变更
func (t *Tracker) transition(ctx context.Context, bedID string, fn func(bed *domain.Bed, now time.Time) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(bedID)
	if i < 0 {
		return ErrBedNotFound
	}

	next := t.copyBeds()
	if err := fn(&next[i], t.now()); err != nil {
		return err
	}

	t.beds = next
	t.persistLocked(ctx)
	return nil
}

// syncStatus 远端入出院状态回写（local-first：失败告警并置 pending_sync，绝不回滚）
func (t *Tracker) syncStatus(ctx context.Context, bedID, patientID string, admitted bool, bedNumber int) {
	if t.sync == nil {
		return
	}
	if err := t.sync.SetAdmissionStatus(ctx, patientID, admitted, bedNumber); err != nil {
		t.logger.Warn("Patient status sync failed, local state kept",
			zap.String("bed_id", bedID),
			zap.String("patient_id", patientID),
			zap.Bool("admitted", admitted),
			zap.Error(err),
		)
		t.mu.Lock()
		if i := t.indexOf(bedID); i >= 0 {
			next := t.copyBeds()
			next[i].PendingSync = true
			t.beds = next
			t.persistLocked(ctx)
		}
		t.mu.Unlock()
	}
}

// persistLocked 全量快照写回（调用方持锁；仅在非空时写）
func (t *Tracker) persistLocked(ctx context.Context) {
	if len(t.beds) == 0 {
		return
	}
	data, err := json.Marshal(t.beds)
	if err != nil {
		t.logger.Error("Failed to marshal bed snapshot", zap.Error(err))
		return
	}
	if err := t.kv.Set(ctx, SnapshotKey, string(data), 0); err != nil {
		t.logger.Warn("Failed to persist bed snapshot", zap.Error(err))
	}
}

func (t *Tracker) indexOf(bedID string) int {
	for i := range t.beds {
		if t.beds[i].BedID == bedID {
			return i
		}
	}
	return -1
}

func (t *Tracker) copyBeds() []domain.Bed {
	next := make([]domain.Bed, len(t.beds))
	copy(next, t.beds)
	return next
}

func initializeBeds() []domain.Bed {
	beds := make([]domain.Bed, 0, domain.BedCount)
	for n := 1; n <= domain.BedCount; n++ {
		beds = append(beds, domain.NewVacantBed(n))
	}
	return beds
}

func legacyIPDKey(bedID string) string {
	return bedID + "-ipdNumber"
}
