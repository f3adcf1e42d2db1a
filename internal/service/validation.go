package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
)

var ErrInvalidInput = errors.New("invalid input")

// Prices are stored as NUMERIC(12,2).
const priceScale = 2

var priceLimit = decimal.New(1, 10)

// ValidationError lists every field problem found in one input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// parseProductInput turns raw edit-field text into a product.
func parseProductInput(input core.ProductInput) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Quantity = strings.TrimSpace(input.Quantity)
	input.Price = strings.TrimSpace(input.Price)

	if err := validate.Struct(input); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			problems := make([]string, 0, len(ve))
			for _, fe := range ve {
				problems = append(problems, fieldError(fe))
			}
			return nil, &ValidationError{Problems: problems}
		}
		return nil, err
	}

	var problems []string

	quantity, err := strconv.ParseInt(input.Quantity, 10, 32)
	if err != nil {
		problems = append(problems, "quantity is out of range")
	}

	price, err := decimal.NewFromString(input.Price)
	switch {
	case err != nil:
		problems = append(problems, "price must be a number")
	case price.IsNegative():
		problems = append(problems, "price must not be negative")
	case !price.Equal(price.Truncate(priceScale)):
		problems = append(problems, "price must have at most 2 decimal places")
	case price.GreaterThanOrEqual(priceLimit):
		problems = append(problems, "price must be below "+priceLimit.String())
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return &model.Product{
		Name:     input.Name,
		Quantity: int(quantity),
		Price:    price,
	}, nil
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "number":
		return field + " must be a whole non-negative number"
	case "numeric":
		return field + " must be a number"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
