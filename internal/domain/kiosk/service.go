package kiosk

import "context"

type KioskService interface {
	ListKiosks(ctx context.Context) ([]KioskResponse, error)
	CreateKiosk(ctx context.Context, req CreateKioskRequest) (CreateKioskResponse, error)
	UpdateKiosk(ctx context.Context, req UpdateKioskRequest) (KioskResponse, error)
	DeleteKiosk(ctx context.Context, id string) error
}
