package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PatientSyncClient 患者目录服务客户端
// 入出院时回写 ipd_status / ipd_bed_number；调用方按 best-effort 处理失败。
type PatientSyncClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewPatientSyncClient 创建患者目录客户端
func NewPatientSyncClient(baseURL, apiKey string, logger *zap.Logger) *PatientSyncClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if apiKey != "" {
		client.SetHeader("X-API-Key", apiKey)
	}

	return &PatientSyncClient{
		httpClient: client,
		logger:     logger,
	}
}

type patientStatusPatch struct {
	IPDStatus    string `json:"ipd_status"`
	IPDBedNumber int    `json:"ipd_bed_number"`
}

// SetAdmissionStatus 回写入出院状态
func (c *PatientSyncClient) SetAdmissionStatus(ctx context.Context, patientID string, admitted bool, bedNumber int) error {
	status := "DISCHARGED"
	if admitted {
		status = "ADMITTED"
	}

	c.logger.Debug("Syncing patient admission status",
		zap.String("patient_id", patientID),
		zap.String("status", status),
		zap.Int("bed_number", bedNumber),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(patientStatusPatch{IPDStatus: status, IPDBedNumber: bedNumber}).
		Patch(fmt.Sprintf("/api/v1/patients/%s/status", patientID))
	if err != nil {
		return fmt.Errorf("patient status sync request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("patient status sync returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
