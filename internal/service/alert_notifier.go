package service

import (
	"context"
	"encoding/json"
	"time"

	"hospilink-data/internal/domain"
	"hospilink-data/pkg/mqtt"

	"go.uber.org/zap"
)

// TATAlert TAT 超时报警载荷
type TATAlert struct {
	BedID     string `json:"bed_id"`
	BedNumber int    `json:"bed_number"`
	IPDNumber string `json:"ipd_number,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
	ExpiredAt int64  `json:"expired_at"` // Unix timestamp
}

// LogAlertNotifier 仅写日志的报警出口（MQTT 未启用时使用）
type LogAlertNotifier struct {
	Logger *zap.Logger
}

func NewLogAlertNotifier(logger *zap.Logger) *LogAlertNotifier {
	return &LogAlertNotifier{Logger: logger}
}

func (n *LogAlertNotifier) TATExpired(ctx context.Context, bed domain.Bed) {
	fields := []zap.Field{
		zap.String("bed_id", bed.BedID),
		zap.Int("bed_number", bed.Number),
		zap.String("ipd_number", bed.IPDNumber),
	}
	if bed.Patient != nil {
		fields = append(fields, zap.String("patient_id", bed.Patient.PatientID))
	}
	n.Logger.Warn("TAT expired for bed", fields...)
}

// MQTTAlertNotifier 经 MQTT 推送 TAT 超时报警（推送失败降级为日志）
type MQTTAlertNotifier struct {
	client *mqtt.Client
	topic  string
	logger *zap.Logger
}

func NewMQTTAlertNotifier(client *mqtt.Client, topic string, logger *zap.Logger) *MQTTAlertNotifier {
	return &MQTTAlertNotifier{client: client, topic: topic, logger: logger}
}

func (n *MQTTAlertNotifier) TATExpired(ctx context.Context, bed domain.Bed) {
	alert := TATAlert{
		BedID:     bed.BedID,
		BedNumber: bed.Number,
		IPDNumber: bed.IPDNumber,
		ExpiredAt: time.Now().Unix(),
	}
	if bed.Patient != nil {
		alert.PatientID = bed.Patient.PatientID
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		n.logger.Error("Failed to marshal TAT alert", zap.Error(err))
		return
	}

	if err := n.client.Publish(n.topic, 1, false, payload); err != nil {
		n.logger.Warn("Failed to publish TAT alert, falling back to log",
			zap.String("bed_id", bed.BedID),
			zap.Error(err),
		)
	}
}
