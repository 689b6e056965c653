package kiosk

import "context"

type KioskRepository interface {
	GetByID(ctx context.Context, id string) (Kiosk, error)
	ListByCompany(ctx context.Context, companyID string) ([]Kiosk, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]Kiosk, error)
	Create(ctx context.Context, kiosk Kiosk) (Kiosk, error)
	Update(ctx context.Context, kiosk Kiosk) error
	Delete(ctx context.Context, id string) error
}
