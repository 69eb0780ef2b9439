package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculateFee returns the fee owed for a single rate against payment.
//
// Flat fees are charged in the rate's own denomination and, when a threshold is
// configured and an earlier evaluation happened, decay with the time elapsed
// since lastTimestamp. Percentage fees are charged in the payment denomination
// and round any remainder up in favour of the fee recipient.
func CalculateFee(rate Rate, payment Coin, threshold *Threshold, currentTimestamp, lastTimestamp uint64) (Coin, error) {
	if lastTimestamp != 0 && currentTimestamp <= lastTimestamp {
		return Coin{}, ErrInvalidTimestamp
	}

	switch {
	case rate.Flat != nil:
		return flatFee(*rate.Flat, threshold, currentTimestamp, lastTimestamp)
	case rate.Percent != nil:
		return percentFee(rate.Percent.Percent, payment)
	default:
		return Coin{}, fmt.Errorf("%w: rate has no flat or percent value", ErrInvalidRate)
	}
}

func flatFee(flat Coin, threshold *Threshold, currentTimestamp, lastTimestamp uint64) (Coin, error) {
	if threshold == nil || lastTimestamp == 0 {
		return flat, nil
	}
	if err := threshold.Validate(); err != nil {
		return Coin{}, err
	}

	periods := NewAmount((currentTimestamp - lastTimestamp) / threshold.Duration)
	decrement, err := periods.CheckedMul(NewAmount(threshold.Unit))
	if err != nil {
		return Coin{}, fmt.Errorf("threshold decrement: %w", err)
	}
	decremented, err := flat.Amount.CheckedSub(decrement)
	if err != nil {
		return Coin{}, fmt.Errorf("threshold decrement %s exceeds flat fee %s: %w", decrement, flat.Amount, err)
	}

	if decremented.Cmp(threshold.Value) < 0 {
		return Coin{Amount: threshold.Value, Denom: flat.Denom}, nil
	}
	return Coin{Amount: decremented, Denom: flat.Denom}, nil
}

func percentFee(percent decimal.Decimal, payment Coin) (Coin, error) {
	// Callers validate rates up front; an unvalidated one must still never
	// charge more than the payment.
	if err := checkFraction(percent); err != nil {
		return Coin{}, err
	}

	paid := decimal.NewFromBigInt(payment.Amount.Big(), 0)
	fee := paid.Mul(percent).Floor()

	// Reverse the truncated fee through the inverse fraction. If that lands
	// below the payment the payer kept a fractional unit, so the fee rounds up.
	inverse, _ := decimal.NewFromInt(1).QuoRem(percent, FractionPrecision)
	reversed := fee.Mul(inverse).Floor()

	amount, err := amountFromBig(fee.BigInt())
	if err != nil {
		return Coin{}, err
	}
	if paid.GreaterThan(reversed) {
		if amount, err = amount.CheckedAdd(NewAmount(1)); err != nil {
			return Coin{}, fmt.Errorf("percent fee rounding: %w", err)
		}
	}
	return Coin{Amount: amount, Denom: payment.Denom}, nil
}
