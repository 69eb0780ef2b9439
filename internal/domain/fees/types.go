package fees

import "fmt"

// TokenCoin is an amount held on a token contract's ledger.
type TokenCoin struct {
	Address string `json:"address"`
	Amount  Amount `json:"amount"`
}

// Funds is an incoming payment, either native or token denominated. Exactly
// one field is set.
type Funds struct {
	Native *Coin      `json:"native,omitempty"`
	Token  *TokenCoin `json:"cw20,omitempty"`
}

func NativeFunds(amount uint64, denom string) Funds {
	c := NewCoin(amount, denom)
	return Funds{Native: &c}
}

func TokenFunds(amount uint64, address string) Funds {
	return Funds{Token: &TokenCoin{Address: address, Amount: NewAmount(amount)}}
}

func (f Funds) Validate() error {
	switch {
	case (f.Native == nil) == (f.Token == nil):
		return fmt.Errorf("%w: exactly one of native or cw20 must be set", ErrInvalidFunds)
	case f.Native != nil && f.Native.Denom == "":
		return fmt.Errorf("%w: native denom is required", ErrInvalidFunds)
	case f.Token != nil && f.Token.Address == "":
		return fmt.Errorf("%w: token address is required", ErrInvalidFunds)
	}
	return nil
}

// Coin returns the payment as a coin; token payments use the contract address
// as their denomination.
func (f Funds) Coin() Coin {
	if f.Token != nil {
		return Coin{Amount: f.Token.Amount, Denom: f.Token.Address}
	}
	return *f.Native
}

func (f Funds) withAmount(a Amount) Funds {
	if f.Token != nil {
		return Funds{Token: &TokenCoin{Address: f.Token.Address, Amount: a}}
	}
	return Funds{Native: &Coin{Amount: a, Denom: f.Native.Denom}}
}

// BankSend moves native coins directly to an address.
type BankSend struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

// TokenTransfer asks a token contract to move part of its internal balance.
type TokenTransfer struct {
	Contract  string `json:"contract_addr"`
	Recipient string `json:"recipient"`
	Amount    Amount `json:"amount"`
}

// UpdateSaleTimestamp is addressed back to the rates contract itself so the
// caller can persist the decay clock.
type UpdateSaleTimestamp struct {
	Contract      string `json:"contract_addr"`
	LastTimestamp uint64 `json:"last_timestamp"`
}

// Instruction is one outbound message for the caller to execute. Exactly one
// field is set.
type Instruction struct {
	BankSend            *BankSend            `json:"bank_send,omitempty"`
	TokenTransfer       *TokenTransfer       `json:"token_transfer,omitempty"`
	UpdateSaleTimestamp *UpdateSaleTimestamp `json:"update_sale_timestamp,omitempty"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

func NewEvent(typ string) Event {
	return Event{Type: typ, Attributes: []Attribute{}}
}

func (e Event) AddAttribute(key, value string) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

// Env identifies the evaluating contract and the current platform time in seconds.
type Env struct {
	ContractAddress string
	Time            uint64
}

// DistributionResult is everything a single evaluation produces.
type DistributionResult struct {
	Msgs          []Instruction `json:"msgs"`
	Events        []Event       `json:"events"`
	LeftoverFunds Funds         `json:"leftover_funds"`
}
