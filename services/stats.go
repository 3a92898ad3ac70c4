package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

// MaxStatsDays giới hạn số ngày một lần thống kê.
const MaxStatsDays = 366

type DailyPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReviewStats là số liệu tổng hợp cho trang duyệt.
type ReviewStats struct {
	Total    int64                             `json:"total"`
	ByStatus map[models.SubmissionStatus]int64 `json:"by_status"`
	Daily    []DailyPoint                      `json:"daily_uploads"`
}

// Stats đếm hồ sơ theo trạng thái và số lượt upload mỗi ngày trong [from, to].
func (s *SubmissionService) Stats(ctx context.Context, from, to time.Time) (*ReviewStats, error) {
	if to.Sub(truncateDay(from)) >= MaxStatsDays*24*time.Hour {
		return nil, utils.NewValidationError("Khoảng ngày quá dài", map[string]string{
			"from": fmt.Sprintf("Tối đa %d ngày", MaxStatsDays),
		})
	}
	db := s.db.WithContext(ctx)

	var rows []struct {
		Status models.SubmissionStatus
		Count  int64
	}
	if err := db.Model(&models.Submission{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count submissions by status")
	}

	stats := &ReviewStats{ByStatus: map[models.SubmissionStatus]int64{
		models.StatusPending:  0,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
	}}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}

	// Gom theo ngày ở Go để không phụ thuộc hàm ngày của từng DB
	var times []time.Time
	if err := db.Model(&models.Submission{}).
		Where("uploaded_at BETWEEN ? AND ?", from, to).
		Pluck("uploaded_at", &times).Error; err != nil {
		return nil, errors.Wrap(err, "load upload times")
	}
	counts := map[string]int64{}
	for _, t := range times {
		counts[t.Format("2006-01-02")]++
	}
	for d := truncateDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		stats.Daily = append(stats.Daily, DailyPoint{Date: key, Count: counts[key]})
	}
	return stats, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
