package atm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

var ErrInputClosed = errors.New("input closed")

const (
	choiceBalance  = "1"
	choiceDeposit  = "2"
	choiceWithdraw = "3"
	choiceExit     = "4"
)

// Session is one card-holder interaction: PIN check followed by the menu loop.
type Session struct {
	ledger *Ledger
	auth   *Authenticator
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

func NewSession(ledger *Ledger, auth *Authenticator, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ledger: ledger,
		auth:   auth,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

func (s *Session) Balance() string {
	return formatMoney(s.ledger.Balance())
}

// Authenticate reads up to MaxAttempts PIN entries. It returns false once
// the card is blocked.
func (s *Session) Authenticate() (bool, error) {
	attempts := s.auth.MaxAttempts()
	for attempts > 0 {
		pin, err := s.prompt("Enter your 4-digit PIN: ")
		if err != nil {
			return false, err
		}

		if s.auth.Check(pin) {
			s.println("Authentication successful!\n")
			s.logger.Info("Session authenticated",
				zap.Int("attempts_used", s.auth.MaxAttempts()-attempts+1))
			return true, nil
		}

		attempts--
		s.printf("Incorrect PIN. %d attempts remaining.\n", attempts)
		s.logger.Debug("PIN mismatch", zap.Int("attempts_remaining", attempts))
	}

	s.println("Too many incorrect attempts. Card blocked.")
	s.logger.Warn("Card blocked after failed PIN attempts",
		zap.Int("attempts", s.auth.MaxAttempts()))
	return false, nil
}

// Run authenticates and then serves the menu until the user exits, the input
// ends, or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	ok, err := s.Authenticate()
	if err != nil || !ok {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.println("===== ATM Menu =====")
		s.println("1. Check Balance")
		s.println("2. Deposit Money")
		s.println("3. Withdraw Money")
		s.println("4. Exit")

		choice, err := s.prompt("Choose an option (1-4): ")
		if err != nil {
			return err
		}

		switch choice {
		case choiceBalance:
			s.checkBalance()
		case choiceDeposit:
			if err := s.deposit(); err != nil {
				return err
			}
		case choiceWithdraw:
			if err := s.withdraw(); err != nil {
				return err
			}
		case choiceExit:
			s.println("Thank you for using the ATM. Goodbye!")
			s.logger.Info("Session ended", zap.String("balance", s.ledger.Balance().StringFixed(2)))
			return nil
		default:
			s.println("Invalid option. Please choose again.\n")
		}
	}
}

func (s *Session) checkBalance() {
	s.printf("Your current balance is %s\n\n", s.Balance())
}

func (s *Session) deposit() error {
	input, err := s.prompt("Enter amount to deposit: ₹")
	if err != nil {
		return err
	}

	amount, err := ParseAmount(input)
	if err != nil {
		s.println("Invalid input. Please enter a numeric value.")
		return nil
	}

	if _, err := s.ledger.Deposit(amount); err != nil {
		s.reportLedgerError(err)
		return nil
	}

	s.printf("Successfully deposited %s\n", formatMoney(amount))
	s.logger.Debug("Deposit applied", zap.String("amount", amount.String()))
	s.checkBalance()
	return nil
}

func (s *Session) withdraw() error {
	input, err := s.prompt("Enter amount to withdraw: ₹")
	if err != nil {
		return err
	}

	amount, err := ParseAmount(input)
	if err != nil {
		s.println("Invalid input. Please enter a numeric value.")
		return nil
	}

	if _, err := s.ledger.Withdraw(amount); err != nil {
		s.reportLedgerError(err)
		return nil
	}

	s.printf("Successfully withdrawn %s\n", formatMoney(amount))
	s.logger.Debug("Withdrawal applied", zap.String("amount", amount.String()))
	s.checkBalance()
	return nil
}

func (s *Session) reportLedgerError(err error) {
	switch {
	case errors.Is(err, ErrNonPositiveAmount):
		s.println("Invalid amount. Please enter a positive number.")
	case errors.Is(err, ErrInsufficientBalance):
		s.println("Insufficient balance.")
	default:
		s.printf("Transaction failed: %v\n", err)
	}
	s.logger.Debug("Transaction rejected", zap.Error(err))
}

func (s *Session) prompt(text string) (string, error) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimRight(s.in.Text(), "\r"), nil
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
