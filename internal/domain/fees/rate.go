package fees

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FractionPrecision is the number of decimal places a percentage may carry.
const FractionPrecision = 18

// Coin is an amount of a single native denomination. For token payments the
// denomination is the token contract address.
type Coin struct {
	Amount Amount `json:"amount"`
	Denom  string `json:"denom"`
}

func NewCoin(amount uint64, denom string) Coin {
	return Coin{Amount: NewAmount(amount), Denom: denom}
}

// String renders the coin the way payment attributes expect it, e.g. "20uusd".
func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// PercentRate wraps the fraction so that both rate arms share the same nesting.
type PercentRate struct {
	Percent decimal.Decimal `json:"percent"`
}

// Rate is either a flat fee or a percentage of the payment. Exactly one field is set.
type Rate struct {
	Flat    *Coin        `json:"flat,omitempty"`
	Percent *PercentRate `json:"percent,omitempty"`
}

// FlatRate returns a flat Rate.
func FlatRate(amount uint64, denom string) Rate {
	c := NewCoin(amount, denom)
	return Rate{Flat: &c}
}

// PercentOf returns a percentage Rate for the given fraction, e.g. 0.1 for 10%.
func PercentOf(fraction decimal.Decimal) Rate {
	return Rate{Percent: &PercentRate{Percent: fraction}}
}

// Percent returns a Rate of n percent.
func Percent(n int64) Rate {
	return PercentOf(decimal.New(n, -2))
}

// IsNonZero reports whether the rate would charge anything at all.
func (r Rate) IsNonZero() bool {
	switch {
	case r.Flat != nil:
		return !r.Flat.Amount.IsZero()
	case r.Percent != nil:
		return !r.Percent.Percent.IsZero()
	default:
		return false
	}
}

// Validate checks the rate is well formed, non-zero and, for percentages, no
// greater than one. The rate is returned unchanged on success.
func (r Rate) Validate() (Rate, error) {
	if (r.Flat == nil) == (r.Percent == nil) {
		return Rate{}, fmt.Errorf("%w: exactly one of flat or percent must be set", ErrInvalidRate)
	}
	if !r.IsNonZero() {
		return Rate{}, fmt.Errorf("%w: rate must be non-zero", ErrInvalidRate)
	}
	if r.Flat != nil && strings.TrimSpace(r.Flat.Denom) == "" {
		return Rate{}, fmt.Errorf("%w: flat rate denom is required", ErrInvalidRate)
	}
	if p := r.Percent; p != nil {
		if err := checkFraction(p.Percent); err != nil {
			return Rate{}, err
		}
		if !p.Percent.Equal(p.Percent.Truncate(FractionPrecision)) {
			return Rate{}, fmt.Errorf("%w: percent exceeds %d decimal places", ErrInvalidRate, FractionPrecision)
		}
	}
	return r, nil
}

func checkFraction(p decimal.Decimal) error {
	if !p.IsPositive() || p.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: percent must be in (0, 1], got %s", ErrInvalidRate, p)
	}
	return nil
}

// Threshold decays a flat fee by Unit every Duration seconds since the last
// evaluation, never below Value.
type Threshold struct {
	Unit     uint64 `json:"unit"`
	Duration uint64 `json:"duration"`
	Value    Amount `json:"value"`
}

func (t Threshold) Validate() error {
	if t.Duration == 0 {
		return fmt.Errorf("%w: duration must be greater than zero", ErrInvalidThreshold)
	}
	return nil
}

type Recipient struct {
	Address string `json:"address"`
}

// RateEntry is one configured fee. Threshold only applies to flat rates.
type RateEntry struct {
	Rate        Rate        `json:"rate"`
	IsAdditive  bool        `json:"is_additive"`
	Description *string     `json:"description,omitempty"`
	Recipients  []Recipient `json:"recipients"`
	Threshold   *Threshold  `json:"threshold,omitempty"`
}

func (e RateEntry) Validate() error {
	if _, err := e.Rate.Validate(); err != nil {
		return err
	}
	if len(e.Recipients) == 0 {
		return ErrNoRecipients
	}
	for i, r := range e.Recipients {
		if strings.TrimSpace(r.Address) == "" {
			return fmt.Errorf("%w: recipient %d has no address", ErrInvalidRecipient, i)
		}
	}
	if e.Threshold != nil {
		if err := e.Threshold.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRates rejects the whole list if any entry is invalid.
func ValidateRates(entries []RateEntry) error {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("rate %d: %w", i, err)
		}
	}
	return nil
}
