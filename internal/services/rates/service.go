package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ratesvc/internal/domain/fees"
	"ratesvc/internal/models"
	"ratesvc/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Operation names used in logs and metrics
const (
	OpInstantiate         = "instantiate"
	OpUpdateRates         = "update_rates"
	OpUpdateSaleTimestamp = "update_sale_timestamp"
	OpPayments            = "payments"
	OpDeductedFunds       = "deducted_funds"
)

type service struct {
	repo     repositories.RatesRepository
	cache    ConfigCache
	metrics  MetricsCollector
	clock    clockwork.Clock
	log      *slog.Logger
	contract string
}

// NewService creates the rates service for a single contract address.
func NewService(repo repositories.RatesRepository, cache ConfigCache, cfg ServiceConfig, metrics MetricsCollector) (Service, error) {
	if repo == nil {
		return nil, errors.New("rates repository is required")
	}
	if strings.TrimSpace(cfg.ContractAddress) == "" {
		return nil, errors.New("contract address is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		repo:     repo,
		cache:    cache,
		metrics:  metrics,
		clock:    cfg.Clock,
		log:      cfg.Logger.With("contract", cfg.ContractAddress),
		contract: cfg.ContractAddress,
	}, nil
}

func (s *service) Instantiate(ctx context.Context, req InstantiateRequest) (*ActionResponse, error) {
	defer s.track(OpInstantiate, s.clock.Now())

	if strings.TrimSpace(req.Owner) == "" {
		return nil, s.fail(OpInstantiate, fmt.Errorf("%w: owner is required", ErrInvalidRequest))
	}
	if err := fees.ValidateRates(req.Rates); err != nil {
		return nil, s.fail(OpInstantiate, err)
	}

	cfg := &models.RatesConfig{
		ContractAddress: s.contract,
		Owner:           req.Owner,
		Operators:       req.Operators,
		Rates:           models.RateEntries(req.Rates),
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRatesConfig) {
			err = ErrAlreadyInstantiated
		}
		return nil, s.fail(OpInstantiate, err)
	}

	s.invalidate(ctx)
	s.log.Info("rates contract instantiated", "owner", req.Owner, "rates", len(req.Rates))
	s.metrics.RecordOperationResult(OpInstantiate, "success")
	return actionResponse(OpInstantiate), nil
}

// UpdateRates replaces the whole rate list. Nothing is stored unless every
// entry validates.
func (s *service) UpdateRates(ctx context.Context, sender string, entries []fees.RateEntry) (*ActionResponse, error) {
	defer s.track(OpUpdateRates, s.clock.Now())

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, s.fail(OpUpdateRates, err)
	}
	if !cfg.IsOperator(sender) {
		return nil, s.fail(OpUpdateRates, fmt.Errorf("%w: %s may not update rates", ErrUnauthorized, sender))
	}
	if err := fees.ValidateRates(entries); err != nil {
		return nil, s.fail(OpUpdateRates, err)
	}

	if err := s.repo.UpdateRates(ctx, s.contract, models.RateEntries(entries)); err != nil {
		return nil, s.fail(OpUpdateRates, s.mapNotFound(err))
	}

	s.invalidate(ctx)
	s.log.Info("rates updated", "sender", sender, "rates", len(entries))
	s.metrics.RecordOperationResult(OpUpdateRates, "success")
	return actionResponse(OpUpdateRates), nil
}

// UpdateSaleTimestamp persists the decay clock. The contract itself may call it
// to apply the instruction returned by DeductedFunds.
func (s *service) UpdateSaleTimestamp(ctx context.Context, sender string, lastTimestamp uint64) (*ActionResponse, error) {
	defer s.track(OpUpdateSaleTimestamp, s.clock.Now())

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, s.fail(OpUpdateSaleTimestamp, err)
	}
	if sender != s.contract && !cfg.IsOperator(sender) {
		return nil, s.fail(OpUpdateSaleTimestamp, fmt.Errorf("%w: %s may not update the sale timestamp", ErrUnauthorized, sender))
	}
	if lastTimestamp < cfg.LastTimestamp {
		return nil, s.fail(OpUpdateSaleTimestamp, fmt.Errorf("%w: %d is before stored %d",
			fees.ErrInvalidTimestamp, lastTimestamp, cfg.LastTimestamp))
	}

	if err := s.repo.UpdateLastTimestamp(ctx, s.contract, lastTimestamp); err != nil {
		if errors.Is(err, repositories.ErrStaleTimestamp) {
			// the cached config was behind the database
			s.invalidate(ctx)
			err = fmt.Errorf("%w: %d is before the stored timestamp", fees.ErrInvalidTimestamp, lastTimestamp)
		}
		return nil, s.fail(OpUpdateSaleTimestamp, s.mapNotFound(err))
	}

	s.invalidate(ctx)
	s.log.Debug("sale timestamp updated", "sender", sender, "last_timestamp", lastTimestamp)
	s.metrics.RecordOperationResult(OpUpdateSaleTimestamp, "success")
	return actionResponse(OpUpdateSaleTimestamp), nil
}

// Execute applies an instruction previously returned by DeductedFunds. Only
// timestamp updates addressed to this contract are handled here; transfers
// belong to the ledger.
func (s *service) Execute(ctx context.Context, sender string, msg fees.Instruction) (*ActionResponse, error) {
	update := msg.UpdateSaleTimestamp
	if update == nil {
		return nil, s.fail(OpUpdateSaleTimestamp, fmt.Errorf("%w: only update_sale_timestamp can be executed", ErrUnsupportedInstruction))
	}
	if update.Contract != s.contract {
		return nil, s.fail(OpUpdateSaleTimestamp, fmt.Errorf("%w: instruction is addressed to %s", ErrUnsupportedInstruction, update.Contract))
	}
	return s.UpdateSaleTimestamp(ctx, sender, update.LastTimestamp)
}

func (s *service) Payments(ctx context.Context) (*PaymentsResponse, error) {
	defer s.track(OpPayments, s.clock.Now())

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, s.fail(OpPayments, err)
	}
	s.metrics.RecordOperationResult(OpPayments, "success")
	return &PaymentsResponse{Payments: cfg.Rates, LastTimestamp: cfg.LastTimestamp}, nil
}

// DeductedFunds quotes the distribution of funds against the current rate list.
// It never writes: the returned timestamp instruction must be executed by the
// caller for threshold decay to advance.
func (s *service) DeductedFunds(ctx context.Context, funds fees.Funds) (*OnFundsTransferResponse, error) {
	start := s.clock.Now()
	defer s.track(OpDeductedFunds, start)

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, s.fail(OpDeductedFunds, err)
	}

	env := fees.Env{ContractAddress: s.contract, Time: uint64(start.Unix())}
	res, err := fees.Distribute(cfg.Rates, funds, env, cfg.LastTimestamp)
	if err != nil {
		return nil, s.fail(OpDeductedFunds, err)
	}

	digest, err := res.Digest()
	if err != nil {
		return nil, s.fail(OpDeductedFunds, err)
	}

	for _, ev := range res.Events {
		s.metrics.RecordFee(ev.Type)
	}
	id := uuid.NewString()
	s.log.Debug("funds distributed", "evaluation_id", id, "result", res.Describe(), "digest", digest)
	s.metrics.RecordOperationResult(OpDeductedFunds, "success")

	return &OnFundsTransferResponse{
		DistributionResult: *res,
		EvaluationID:       id,
		Digest:             digest,
	}, nil
}

// load reads the config through the cache. Cache failures fall back to the
// repository.
func (s *service) load(ctx context.Context) (*models.RatesConfig, error) {
	if s.cache != nil {
		cfg, err := s.cache.GetRatesConfig(ctx, s.contract)
		if err != nil {
			s.log.Warn("rates cache read failed", "error", err)
		}
		if cfg != nil {
			s.metrics.RecordCacheHit(s.contract)
			return cfg, nil
		}
		s.metrics.RecordCacheMiss(s.contract)
	}

	cfg, err := s.repo.GetByContract(ctx, s.contract)
	if err != nil {
		return nil, s.mapNotFound(err)
	}

	if s.cache != nil {
		if err := s.cache.CacheRatesConfig(ctx, cfg); err != nil {
			s.log.Warn("rates cache write failed", "error", err)
		}
	}
	return cfg, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRatesConfig(ctx, s.contract); err != nil {
		s.log.Warn("rates cache invalidation failed", "error", err)
	}
}

func (s *service) mapNotFound(err error) error {
	if errors.Is(err, repositories.ErrRatesConfigNotFound) {
		return ErrNotInstantiated
	}
	return err
}

func (s *service) fail(op string, err error) error {
	kind := ErrorKind(err)
	s.metrics.RecordError(op, kind)
	s.metrics.RecordOperationResult(op, "error")
	if kind == "internal" {
		s.log.Error("rates operation failed", "operation", op, "error", err)
	} else {
		s.log.Debug("rates operation rejected", "operation", op, "kind", kind, "error", err)
	}
	return err
}

func (s *service) track(op string, start time.Time) {
	s.metrics.RecordOperationDuration(op, s.clock.Since(start))
}
