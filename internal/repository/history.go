package repository

import (
	"time"

	"dcache-admin/internal/db"
	"dcache-admin/internal/model"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Save(result model.TransferResult) error {
	errMsg := ""
	if result.Err != nil {
		errMsg = result.Err.Error()
	}

	history := model.History{
		TransferID:     result.Request.ID,
		Status:         result.Status,
		SourceURL:      result.Request.SourceURL,
		DestinationURL: result.Request.DestinationURL,
		FTSJobID:       result.JobID,
		Checksum:       result.Checksum,
		Size:           result.Size,
		ErrMsg:         errMsg,
		SubmittedAt:    time.Now(),
	}

	return db.DB.Create(&history).Error
}

type Stats struct {
	Total     int64 `json:"total"`
	Submitted int64 `json:"submitted"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.History{}).
		Where("status = ?", model.TransferSubmitted).
		Count(&stats.Submitted).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.History{}).
		Where("status = ?", model.TransferDropped).
		Count(&stats.Dropped).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Submitted - stats.Dropped
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Order("submitted_at desc, id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

// GetFailed returns the most recent transfers that were not submitted.
func (r *HistoryRepository) GetFailed(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Where("status <> ?", model.TransferSubmitted).
		Order("submitted_at desc, id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}
