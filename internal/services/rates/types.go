package rates

import (
	"context"
	"log/slog"
	"time"

	"ratesvc/internal/domain/fees"
	"ratesvc/internal/models"

	"github.com/jonboulle/clockwork"
)

// InstantiateRequest creates the rates contract state.
type InstantiateRequest struct {
	Owner     string           `json:"owner"`
	Operators []string         `json:"operators"`
	Rates     []fees.RateEntry `json:"rates"`
}

// ActionResponse mirrors the attributes an execute call reports back.
type ActionResponse struct {
	Attributes []fees.Attribute `json:"attributes"`
}

func actionResponse(action string) *ActionResponse {
	return &ActionResponse{Attributes: []fees.Attribute{{Key: "action", Value: action}}}
}

// PaymentsResponse is the configured rate list and the decay clock.
type PaymentsResponse struct {
	Payments      []fees.RateEntry `json:"payments"`
	LastTimestamp uint64           `json:"last_timestamp"`
}

// OnFundsTransferResponse is a quoted distribution. The caller executes Msgs,
// including the trailing timestamp update, and forwards LeftoverFunds.
type OnFundsTransferResponse struct {
	fees.DistributionResult
	EvaluationID string `json:"evaluation_id"`
	Digest       string `json:"digest"`
}

// ServiceConfig holds the non-storage dependencies of the service.
type ServiceConfig struct {
	ContractAddress string
	Clock           clockwork.Clock
	Logger          *slog.Logger
}

// ConfigCache is the read-through cache in front of the repository.
type ConfigCache interface {
	GetRatesConfig(ctx context.Context, contract string) (*models.RatesConfig, error)
	CacheRatesConfig(ctx context.Context, cfg *models.RatesConfig) error
	InvalidateRatesConfig(ctx context.Context, contract string) error
}

// MetricsCollector defines the interface for collecting rate evaluation metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordError(operation, errType string)
	RecordFee(eventType string)
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
}
