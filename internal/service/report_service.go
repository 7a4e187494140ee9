package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"qacollect/internal/cache"
	"qacollect/internal/models"
	"qacollect/internal/repository"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{
	"post_id",
	"source",
	"caption",
	"comment",
	"aspects_and_sentiments",
	"general_sentiment",
	"collector",
	"created_at",
}

// DailyCount is one entry of the trailing 7-day post series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardStats is the per-user aggregate served by the dashboard endpoint.
type DashboardStats struct {
	TotalPosts    int64                `json:"totalPosts"`
	TotalComments int64                `json:"totalComments"`
	SourcesCount  int64                `json:"sourcesCount"`
	LastSevenDays []DailyCount         `json:"lastSevenDays"`
	TopSources    []models.SourceCount `json:"topSources"`
}

// ReportService serves the read-only reporting surface: CSV export and
// dashboard aggregates.
type ReportService struct {
	postRepo repository.PostRepository
}

func NewReportService(postRepo repository.PostRepository) *ReportService {
	return &ReportService{postRepo: postRepo}
}

// WriteCSV streams the caller's posts as CSV, one row per (post, comment)
// pair in post-id then comment insertion order. Each row carries the
// comment's aspects as a JSON object of aspect_name to sentiment; a comment
// without aspects emits {}.
func (s *ReportService) WriteCSV(ctx context.Context, userID uint, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	return s.postRepo.ForEachOwned(ctx, userID, func(posts []*models.Post) error {
		for _, post := range posts {
			for i := range post.Comments {
				comment := &post.Comments[i]

				aspects := make(map[string]string, len(comment.Aspects))
				for _, a := range comment.Aspects {
					aspects[a.AspectName] = a.Sentiment
				}
				encoded, err := json.Marshal(aspects)
				if err != nil {
					return err
				}

				if err := writer.Write([]string{
					strconv.FormatUint(uint64(post.ID), 10),
					post.Source.Name,
					post.Caption,
					comment.Text,
					string(encoded),
					comment.GeneralSentiment,
					post.User.Username,
					post.CreatedAt.Format("2006-01-02 15:04:05"),
				}); err != nil {
					return err
				}
			}
		}
		return writer.Error()
	})
}

// DashboardStats returns the caller's aggregates, cache-aside with a short
// TTL. Post writes invalidate the cached entry eagerly.
func (s *ReportService) DashboardStats(ctx context.Context, userID uint) (*DashboardStats, error) {
	var stats DashboardStats
	err := cache.Aside(ctx, cache.StatsKey(userID), &stats, cache.StatsTTL, func() error {
		return s.computeStats(ctx, userID, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ReportService) computeStats(ctx context.Context, userID uint, stats *DashboardStats) error {
	var err error
	if stats.TotalPosts, err = s.postRepo.CountByUser(ctx, userID); err != nil {
		return err
	}
	if stats.TotalComments, err = s.postRepo.CountCommentsByUser(ctx, userID); err != nil {
		return err
	}
	if stats.SourcesCount, err = s.postRepo.CountDistinctSourcesByUser(ctx, userID); err != nil {
		return err
	}
	if stats.TopSources, err = s.postRepo.TopSourcesByUser(ctx, userID, 5); err != nil {
		return err
	}
	if stats.TopSources == nil {
		stats.TopSources = []models.SourceCount{}
	}

	stats.LastSevenDays, err = s.lastSevenDays(ctx, userID)
	return err
}

// lastSevenDays builds a zero-filled daily post-count series for the 7
// calendar days ending today.
func (s *ReportService) lastSevenDays(ctx context.Context, userID uint) ([]DailyCount, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -6)

	stamps, err := s.postRepo.CreatedAtsSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, 7)
	for _, stamp := range stamps {
		counts[stamp.In(now.Location()).Format("2006-01-02")]++
	}

	series := make([]DailyCount, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DailyCount{Date: date, Count: counts[date]})
	}
	return series, nil
}
