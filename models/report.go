package models

import "github.com/shopspring/decimal"

type Totals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
	Bills   int             `json:"bills"`
}

type Report struct {
	Date    string `json:"date"`
	Month   string `json:"month"`
	Daily   Totals `json:"daily"`
	Monthly Totals `json:"monthly"`
}
