package kiosk

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenBytes = 32

type KioskServiceImpl struct {
	kioskRepo kiosk.KioskRepository
	hashCost  int
}

func NewKioskService(kioskRepo kiosk.KioskRepository, hashCost int) kiosk.KioskService {
	if hashCost < bcrypt.MinCost {
		hashCost = bcrypt.DefaultCost
	}
	return &KioskServiceImpl{kioskRepo: kioskRepo, hashCost: hashCost}
}

// ListKiosks implements kiosk.KioskService.
func (s *KioskServiceImpl) ListKiosks(ctx context.Context) ([]kiosk.KioskResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	kiosks, err := s.kioskRepo.ListByCompany(ctx, identity.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kiosks: %w", err)
	}

	responses := make([]kiosk.KioskResponse, 0, len(kiosks))
	for _, k := range kiosks {
		responses = append(responses, kiosk.NewKioskResponse(k))
	}
	return responses, nil
}

// CreateKiosk implements kiosk.KioskService. The plain token is returned
// once and never stored.
func (s *KioskServiceImpl) CreateKiosk(ctx context.Context, req kiosk.CreateKioskRequest) (kiosk.CreateKioskResponse, error) {
	if err := req.Validate(); err != nil {
		return kiosk.CreateKioskResponse{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return kiosk.CreateKioskResponse{}, err
	}

	token, err := generateToken()
	if err != nil {
		return kiosk.CreateKioskResponse{}, fmt.Errorf("failed to generate kiosk token: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.hashCost)
	if err != nil {
		return kiosk.CreateKioskResponse{}, fmt.Errorf("failed to hash kiosk token: %w", err)
	}

	created, err := s.kioskRepo.Create(ctx, kiosk.Kiosk{
		CompanyID: identity.CompanyID,
		Name:      strings.TrimSpace(req.Name),
		TokenHash: string(hash),
		IsActive:  true,
	})
	if err != nil {
		if errors.Is(err, kiosk.ErrKioskNameConflict) {
			return kiosk.CreateKioskResponse{}, err
		}
		return kiosk.CreateKioskResponse{}, fmt.Errorf("failed to create kiosk: %w", err)
	}

	slog.InfoContext(ctx, "Kiosk created", "kiosk_id", created.ID, "company_id", created.CompanyID)
	return kiosk.CreateKioskResponse{KioskResponse: kiosk.NewKioskResponse(created), Token: token}, nil
}

// UpdateKiosk implements kiosk.KioskService.
func (s *KioskServiceImpl) UpdateKiosk(ctx context.Context, req kiosk.UpdateKioskRequest) (kiosk.KioskResponse, error) {
	if err := req.Validate(); err != nil {
		return kiosk.KioskResponse{}, err
	}

	k, err := s.owned(ctx, req.ID)
	if err != nil {
		return kiosk.KioskResponse{}, err
	}
	if req.Name != nil {
		k.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		k.IsActive = *req.IsActive
	}

	if err := s.kioskRepo.Update(ctx, k); err != nil {
		if errors.Is(err, kiosk.ErrKioskNameConflict) {
			return kiosk.KioskResponse{}, err
		}
		return kiosk.KioskResponse{}, fmt.Errorf("failed to update kiosk: %w", err)
	}
	return kiosk.NewKioskResponse(k), nil
}

// DeleteKiosk implements kiosk.KioskService.
func (s *KioskServiceImpl) DeleteKiosk(ctx context.Context, id string) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	if err := s.kioskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete kiosk: %w", err)
	}

	slog.InfoContext(ctx, "Kiosk deleted", "kiosk_id", id)
	return nil
}

// owned loads a kiosk and checks it belongs to the caller's company.
func (s *KioskServiceImpl) owned(ctx context.Context, id string) (kiosk.Kiosk, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return kiosk.Kiosk{}, err
	}

	k, err := s.kioskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kiosk.Kiosk{}, kiosk.ErrKioskNotFound
		}
		return kiosk.Kiosk{}, fmt.Errorf("failed to get kiosk: %w", err)
	}
	if k.CompanyID != identity.CompanyID {
		return kiosk.Kiosk{}, kiosk.ErrKioskForbidden
	}
	return k, nil
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
