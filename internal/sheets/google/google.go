// Package google exports transactions to a Google spreadsheet and reads
// category names from it.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"budget/internal/core"
	"budget/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultTransactionsSheet = "Transactions"
	DefaultCategoriesSheet   = "Categories"
)

// Config selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	CategoriesSheet   string
	CredentialsJSON   string
	CredentialsFile   string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
}

// Ensure interface conformance
var (
	_ ports.TransactionExporter = (*Client)(nil)
	_ ports.CategoryReader      = (*Client)(nil)
)

// New creates a client authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithOptions creates a client with explicit API options, e.g. a custom
// endpoint.
func NewWithOptions(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c := &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		transactionsSheet: strings.TrimSpace(cfg.TransactionsSheet),
		categoriesSheet:   strings.TrimSpace(cfg.CategoriesSheet),
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = DefaultTransactionsSheet
	}
	if c.categoriesSheet == "" {
		c.categoriesSheet = DefaultCategoriesSheet
	}
	slog.InfoContext(ctx, "Google Sheets client ready",
		"transactions_sheet", c.transactionsSheet,
		"categories_sheet", c.categoriesSheet)
	return c, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// transactionRow is the sheet layout: date, description, type, category, amount.
func transactionRow(t core.Transaction) []any {
	amount, _ := t.Amount.Decimal().Float64()
	return []any{t.Date.String(), t.Description, string(t.Type), t.Category, amount}
}

// AppendTransaction appends t below the last row of the transactions sheet
// and returns the updated range.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:E", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.transactionsSheet, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return rng, nil
	}
	return resp.Updates.UpdatedRange, nil
}

// ReadCategories reads column A of the categories sheet, skipping the
// header row, blanks and # comments.
func (c *Client) ReadCategories(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:A", c.categoriesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return categoryColumn(resp.Values), nil
}

func categoryColumn(values [][]any) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
