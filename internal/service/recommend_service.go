package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/logging"
	"github.com/rcliao/taskmarket/internal/metrics"
	"github.com/rcliao/taskmarket/internal/recommend"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

var tracer = otel.Tracer("github.com/rcliao/taskmarket/internal/service")

type RecommendationPage struct {
	Items    []recommend.Ranked `json:"items"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Total    int                `json:"total"`
}

type RecommendService struct {
	ranker          *recommend.Ranker
	users           UserLookup
	defaultPageSize int
	maxPageSize     int
	log             zerolog.Logger
}

// NewRecommendService pages ranked results; zero sizes fall back to 15 and 100.
func NewRecommendService(ranker *recommend.Ranker, users UserLookup, defaultPageSize, maxPageSize int) *RecommendService {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	return &RecommendService{
		ranker:          ranker,
		users:           users,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		log:             logging.With("recommend"),
	}
}

// Recommend ranks every active task for userID and returns one page of the
// ordering. Integrity faults are returned unchanged.
func (s *RecommendService) Recommend(ctx context.Context, userID string, page domain.PageRequest) (*RecommendationPage, error) {
	ctx, span := tracer.Start(ctx, "recommend.rank")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	ranked, err := s.ranker.Rank(ctx, userID)
	elapsed := time.Since(start)
	metrics.RankingDuration.Observe(elapsed.Seconds())

	if err != nil {
		kind := "store"
		if errors.Is(err, domain.ErrIntegrity) {
			kind = "integrity"
		}
		metrics.RankingErrors.WithLabelValues(kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		s.log.Error().Err(err).Str("user", userID).Str("kind", kind).Msg("ranking failed")
		return nil, err
	}

	metrics.RankingCandidates.Observe(float64(len(ranked)))
	span.SetAttributes(attribute.Int("candidates", len(ranked)))

	from, to, size := page.Bounds(len(ranked), s.defaultPageSize, s.maxPageSize)
	pageNum := page.Page
	if pageNum <= 0 {
		pageNum = 1
	}

	s.log.Debug().
		Str("user", userID).
		Int("candidates", len(ranked)).
		Int("page", pageNum).
		Dur("elapsed", elapsed).
		Msg("ranked tasks")

	return &RecommendationPage{
		Items:    ranked[from:to],
		Page:     pageNum,
		PageSize: size,
		Total:    len(ranked),
	}, nil
}
