package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/model"
)

const (
	maxCategoryName   = 100
	maxDescription    = 255
	maxAmountDigits   = 13 // DECIMAL(15,2)
	minPasswordLength = 6
)

var validate = validator.New()

// requiredText trims s and checks it is non-empty and at most max characters.
func requiredText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.Validation("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", apperrors.Validation("%s must be at most %d characters", field, max)
	}
	return s, nil
}

// optionalText trims s; an empty result clears the field.
func optionalText(field string, s *string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > max {
		return nil, apperrors.Validation("%s must be at most %d characters", field, max)
	}
	return &trimmed, nil
}

// parseAmount accepts a decimal string, rounds it to cents and requires it
// to be positive and to fit DECIMAL(15,2).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, apperrors.Validation("amount is required")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.Validation("amount must be a decimal number")
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.Validation("amount must be greater than zero")
	}
	if len(amount.Truncate(0).String()) > maxAmountDigits {
		return decimal.Zero, apperrors.Validation("amount is too large")
	}
	return amount, nil
}

// parseDate accepts YYYY-MM-DD.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.Validation("%s is required", field)
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, apperrors.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

// parseID accepts a positive base-10 integer.
func parseID(field, s string) (uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperrors.Validation("%s is required", field)
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, apperrors.Validation("%s must be a positive integer", field)
	}
	return uint(id), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email,max=100"); err != nil {
		return "", apperrors.Validation("email must be a valid email address")
	}
	return email, nil
}

// errNoChanges rejects an update that names no field.
var errNoChanges = apperrors.Validation("no fields to update")

// errOwnerGone is returned when a write references a user row that no
// longer exists, i.e. a token that outlived its account.
var errOwnerGone = apperrors.Unauthenticated("account no longer exists")

// wrapInsert reports a foreign key violation on an owned insert as
// errOwnerGone and wraps anything else with op.
func wrapInsert(op string, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errOwnerGone
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notFound turns gorm.ErrRecordNotFound into a client-facing NotFound.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
