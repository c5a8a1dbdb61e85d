package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/repositories"
	"github.com/quilltips/payments-service/internal/utils"
)

// QRCodeService manages an author's QR codes. New codes start pending
// and unpaid until their checkout completes.
type QRCodeService struct {
	profileRepo repositories.ProfileRepository
	qrCodeRepo  repositories.QRCodeRepository
}

func NewQRCodeService(profileRepo repositories.ProfileRepository, qrCodeRepo repositories.QRCodeRepository) *QRCodeService {
	return &QRCodeService{profileRepo: profileRepo, qrCodeRepo: qrCodeRepo}
}

func (s *QRCodeService) CreateQRCode(ctx context.Context, authorID uuid.UUID, bookTitle string) (*models.QRCode, error) {
	author, err := s.profileRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve profile: %w", err)
	}
	if author == nil {
		return nil, utils.ErrProfileNotFound
	}
	if author.Role != models.RoleAuthor {
		return nil, utils.ErrNotAnAuthor
	}

	qrCode := &models.QRCode{
		ID:           uuid.New(),
		AuthorID:     authorID,
		BookTitle:    bookTitle,
		QRCodeStatus: models.QRCodeStatusPending,
		IsPaid:       false,
	}
	if err := s.qrCodeRepo.Create(ctx, qrCode); err != nil {
		return nil, fmt.Errorf("could not create QR code: %w", err)
	}
	return qrCode, nil
}

func (s *QRCodeService) ListQRCodes(ctx context.Context, authorID uuid.UUID) ([]*models.QRCode, error) {
	return s.qrCodeRepo.ListByAuthor(ctx, authorID)
}
