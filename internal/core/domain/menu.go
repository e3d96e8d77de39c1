package domain

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stockable   bool
}
