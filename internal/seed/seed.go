package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"sakubijak/internal/auth"
	"sakubijak/internal/model"
	"sakubijak/internal/service"
)

//go:embed demo.json
var demoData []byte

// Data is a seed document: one user with categories and transactions.
type Data struct {
	User struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
	Categories []struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	} `json:"categories"`
	Transactions []struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		DaysAgo     int    `json:"days_ago"`
		Category    string `json:"category"`
	} `json:"transactions"`
}

// Result counts what a run created.
type Result struct {
	UserID       uint
	Categories   int
	Transactions int
}

// Load reads a seed document from an http(s) URL or a file path. An empty
// source yields the built-in demo data.
func Load(source string) (*Data, error) {
	var raw []byte
	switch {
	case source == "":
		raw = demoData
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		body, err := fetch(source)
		if err != nil {
			return nil, err
		}
		raw = body
	default:
		body, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = body
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed JSON: %w", err)
	}
	return &data, nil
}

func fetch(url string) ([]byte, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read seed response: %w", err)
	}
	return body, nil
}

// Seeder writes seed documents through the services, so every row passes
// the same validation as API input.
type Seeder struct {
	Auth         service.AuthService
	Categories   service.CategoryService
	Transactions service.TransactionService
	Logger       *slog.Logger
	Now          func() time.Time
}

// ErrAlreadySeeded is returned when the seed user exists already.
var ErrAlreadySeeded = errors.New("seed user already exists")

// Run registers the user and creates the categories and transactions.
// Transaction dates are relative to Now.
func (s *Seeder) Run(ctx context.Context, data *Data) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	user, err := s.Auth.Register(ctx, service.RegisterInput{
		Name:     data.User.Name,
		Email:    data.User.Email,
		Password: data.User.Password,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		return nil, ErrAlreadySeeded
	}
	if err != nil {
		return nil, fmt.Errorf("register seed user: %w", err)
	}
	requester := auth.Requester{UserID: user.ID, Email: user.Email}
	result := &Result{UserID: user.ID}

	categoryIDs := make(map[string]uint, len(data.Categories))
	for _, item := range data.Categories {
		name := item.Name
		category, err := s.Categories.Create(ctx, requester, service.CategoryInput{
			Name:        &name,
			Description: item.Description,
		})
		if err != nil {
			return result, fmt.Errorf("create category %q: %w", item.Name, err)
		}
		categoryIDs[category.Name] = category.ID
		result.Categories++
	}

	today := now().UTC()
	for _, item := range data.Transactions {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			logger.Warn("skipping transaction with unknown category", "description", item.Description, "category", item.Category)
			continue
		}
		description := item.Description
		amount := item.Amount
		date := today.AddDate(0, 0, -item.DaysAgo).Format(model.DateLayout)
		category := fmt.Sprint(categoryID)

		if _, err := s.Transactions.Create(ctx, requester, service.TransactionInput{
			Description: &description,
			Amount:      &amount,
			Date:        &date,
			CategoryID:  &category,
		}); err != nil {
			return result, fmt.Errorf("create transaction %q: %w", item.Description, err)
		}
		result.Transactions++
	}

	return result, nil
}
