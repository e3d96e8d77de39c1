package handler

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errNegativePrice = errors.New("price must not be negative")

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, errNegativePrice
	}
	return price, nil
}
