package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/dtos"
	"github.com/quilltips/payments-service/internal/repositories"
)

const recentTipsLimit = 10

// TipAnalyticsService summarizes an author's tip history for the
// dashboard.
type TipAnalyticsService struct {
	tipRepo repositories.TipRepository
}

func NewTipAnalyticsService(tipRepo repositories.TipRepository) *TipAnalyticsService {
	return &TipAnalyticsService{tipRepo: tipRepo}
}

func (s *TipAnalyticsService) GetAuthorTipAnalytics(ctx context.Context, authorID uuid.UUID) (*dtos.TipAnalyticsResponse, error) {
	stats, err := s.tipRepo.GetAuthorTipStats(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("could not load tip stats: %w", err)
	}

	recent, err := s.tipRepo.ListByAuthor(ctx, authorID, recentTipsLimit)
	if err != nil {
		return nil, fmt.Errorf("could not load recent tips: %w", err)
	}

	resp := &dtos.TipAnalyticsResponse{
		TipCount:         stats.TipCount,
		TotalAmountCents: stats.TotalAmountCents,
		LastTipAt:        stats.LastTipAt,
		RecentTips:       make([]dtos.TipSummary, 0, len(recent)),
	}
	for _, t := range recent {
		resp.RecentTips = append(resp.RecentTips, dtos.TipSummary{
			AmountCents: t.AmountCents,
			ReaderName:  t.ReaderName,
			Message:     t.Message,
			CreatedAt:   t.CreatedAt,
		})
	}
	return resp, nil
}
