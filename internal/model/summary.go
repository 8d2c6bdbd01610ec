package model

import "github.com/shopspring/decimal"

// CategoryTotal is the summed amount of one category within a period.
type CategoryTotal struct {
	CategoryID uint            `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// Summary is the dashboard aggregate for one user and one calendar month.
type Summary struct {
	TotalThisMonth       decimal.Decimal
	TransactionCount     int64
	LatestTransactions   []Transaction
	TopCategory          *CategoryTotal
	PerCategoryThisMonth []CategoryTotal
}
