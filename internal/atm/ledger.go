package atm

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotNumeric          = errors.New("amount is not numeric")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeBalance     = errors.New("initial balance must not be negative")
)

// Ledger holds the balance of a single session. It is not safe for concurrent use.
type Ledger struct {
	balance decimal.Decimal
}

func NewLedger(initial decimal.Decimal) (*Ledger, error) {
	if initial.IsNegative() {
		return nil, ErrNegativeBalance
	}
	return &Ledger{balance: initial}, nil
}

func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

func (l *Ledger) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return l.balance, ErrNonPositiveAmount
	}
	l.balance = l.balance.Add(amount)
	return l.balance, nil
}

func (l *Ledger) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return l.balance, ErrNonPositiveAmount
	}
	if amount.GreaterThan(l.balance) {
		return l.balance, ErrInsufficientBalance
	}
	l.balance = l.balance.Sub(amount)
	return l.balance, nil
}

// ParseAmount reads a user-typed monetary amount. Surrounding whitespace is ignored.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, ErrNotNumeric
	}
	return amount, nil
}

func formatMoney(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}
