package rates

import (
	"context"

	"ratesvc/internal/domain/fees"
)

// Service manages the rate configuration of one contract and quotes fee
// distributions against it.
type Service interface {
	// Configuration
	Instantiate(ctx context.Context, req InstantiateRequest) (*ActionResponse, error)
	UpdateRates(ctx context.Context, sender string, entries []fees.RateEntry) (*ActionResponse, error)
	UpdateSaleTimestamp(ctx context.Context, sender string, lastTimestamp uint64) (*ActionResponse, error)
	Execute(ctx context.Context, sender string, msg fees.Instruction) (*ActionResponse, error)

	// Queries
	Payments(ctx context.Context) (*PaymentsResponse, error)
	DeductedFunds(ctx context.Context, funds fees.Funds) (*OnFundsTransferResponse, error)
}
