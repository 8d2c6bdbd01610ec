package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// Transaction is a single expense recorded by a user against one of their
// own categories.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Description *string         `json:"description" gorm:"size:255"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	User     *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// CategoryName returns the name of the preloaded category, or "N/A".
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return "N/A"
	}
	return t.Category.Name
}

// DateString formats Date as YYYY-MM-DD.
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// MonthRange returns [first day of t's month, first day of the next month) in UTC.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
