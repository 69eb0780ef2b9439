package fees

import (
	"fmt"
	"strings"
)

const (
	EventTax     = "tax"
	EventRoyalty = "royalty"
)

// PaymentAttribute records one recipient's share of a fee.
type PaymentAttribute struct {
	Receiver string
	Amount   Coin
}

func (p PaymentAttribute) String() string {
	return p.Receiver + "<" + p.Amount.String()
}

// Distribute evaluates every entry against funds in configured order. Percentage
// fees are always taken from the full payment, not from what earlier entries left.
//
// Additive entries ("tax") are paid on top of the payment and leave the leftover
// untouched; non-additive entries ("royalty") are deducted from it. The final
// instruction always hands the current time back to the contract so the decay
// clock can be persisted. No partial result is returned on error.
func Distribute(entries []RateEntry, funds Funds, env Env, lastTimestamp uint64) (*DistributionResult, error) {
	if err := funds.Validate(); err != nil {
		return nil, err
	}
	if lastTimestamp != 0 && env.Time <= lastTimestamp {
		return nil, ErrInvalidTimestamp
	}

	payment := funds.Coin()
	leftover := payment
	msgs := make([]Instruction, 0, len(entries)+1)
	events := make([]Event, 0, len(entries))

	for i, entry := range entries {
		if len(entry.Recipients) == 0 {
			return nil, fmt.Errorf("rate %d: %w", i, ErrNoRecipients)
		}

		fee, err := CalculateFee(entry.Rate, payment, entry.Threshold, env.Time, lastTimestamp)
		if err != nil {
			return nil, fmt.Errorf("rate %d: %w", i, err)
		}

		event := NewEvent(EventTax)
		if !entry.IsAdditive {
			event = NewEvent(EventRoyalty)
		}
		if entry.Description != nil {
			event = event.AddAttribute("description", *entry.Description)
		}

		if !entry.IsAdditive {
			if fee.Denom != leftover.Denom {
				return nil, fmt.Errorf("rate %d: %w: fee denom %s does not match payment denom %s",
					i, ErrInsufficientFunds, fee.Denom, leftover.Denom)
			}
			if leftover.Amount, err = leftover.Amount.CheckedSub(fee.Amount); err != nil {
				return nil, fmt.Errorf("rate %d: fee %s exceeds remaining funds: %w", i, fee, err)
			}
			event = event.AddAttribute("deducted", fee.String())
		}

		for j, share := range splitFee(fee.Amount, len(entry.Recipients)) {
			receiver := entry.Recipients[j].Address
			paid := Coin{Amount: share, Denom: fee.Denom}
			event = event.AddAttribute("payment", PaymentAttribute{Receiver: receiver, Amount: paid}.String())
			if share.IsZero() {
				continue
			}
			msgs = append(msgs, transferMsg(funds, receiver, paid))
		}

		events = append(events, event)
	}

	msgs = append(msgs, Instruction{UpdateSaleTimestamp: &UpdateSaleTimestamp{
		Contract:      env.ContractAddress,
		LastTimestamp: env.Time,
	}})

	return &DistributionResult{
		Msgs:          msgs,
		Events:        events,
		LeftoverFunds: funds.withAmount(leftover.Amount),
	}, nil
}

// splitFee divides fee equally among n recipients; the first one takes the remainder.
func splitFee(fee Amount, n int) []Amount {
	share, rem := fee.DivMod(uint64(n))
	shares := make([]Amount, n)
	for i := range shares {
		shares[i] = share
	}
	// share*n + rem == fee, so this cannot overflow
	shares[0], _ = share.CheckedAdd(rem)
	return shares
}

// transferMsg pays receiver out of the incoming funds. Token payments are always
// moved on the payment's own token contract, whatever the fee's denomination.
func transferMsg(funds Funds, receiver string, amount Coin) Instruction {
	if funds.Token != nil {
		return Instruction{TokenTransfer: &TokenTransfer{
			Contract:  funds.Token.Address,
			Recipient: receiver,
			Amount:    amount.Amount,
		}}
	}
	return Instruction{BankSend: &BankSend{
		ToAddress: receiver,
		Amount:    []Coin{amount},
	}}
}

// Describe is a one-line summary of a result for logs.
func (r *DistributionResult) Describe() string {
	var b strings.Builder
	for i, ev := range r.Events {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ev.Type)
	}
	return fmt.Sprintf("%d msgs, events [%s], leftover %s", len(r.Msgs), b.String(), r.LeftoverFunds.Coin())
}
