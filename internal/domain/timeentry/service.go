package timeentry

import "context"

// PunchService validates and records punches for the authenticated employee.
type PunchService interface {
	Submit(ctx context.Context, req PunchRequest) (PunchResponse, error)
	MyStatus(ctx context.Context) (StatusResponse, error)
	MyEntries(ctx context.Context, filter ListEntriesFilter) ([]TimeEntryResponse, error)
}

// TimeEntryService holds administrator actions on recorded punches.
type TimeEntryService interface {
	ListPending(ctx context.Context) ([]TimeEntryResponse, error)
	Approve(ctx context.Context, req ReviewEntryRequest) (TimeEntryResponse, error)
	Reject(ctx context.Context, req ReviewEntryRequest) (TimeEntryResponse, error)
	Edit(ctx context.Context, req EditEntryRequest) (TimeEntryResponse, error)
	RecordMedicalCertificate(ctx context.Context, req MedicalCertificateRequest) (TimeEntryResponse, error)
}
