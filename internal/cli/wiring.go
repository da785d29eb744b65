package cli

import (
	"context"
	"fmt"

	"budget/internal/advisor"
	"budget/internal/cache"
	"budget/internal/config"
	gsheet "budget/internal/sheets/google"
)

// SheetsConfig maps the application settings onto the Sheets client.
func SheetsConfig(cfg *config.Config) gsheet.Config {
	return gsheet.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		CategoriesSheet:   cfg.GoogleCategoriesSheet,
		CredentialsJSON:   cfg.GoogleServiceAccountJSON,
		CredentialsFile:   cfg.GoogleServiceAccountFile,
	}
}

// NewSheetsClient connects to the configured spreadsheet.
func NewSheetsClient(ctx context.Context, cfg *config.Config) (*gsheet.Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SPREADSHEET_ID is not set")
	}
	client, err := gsheet.New(ctx, SheetsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return client, nil
}

// NewAdvisor builds the Gemini-backed advisor with its suggestion cache.
// The cache is returned so callers can register it for expiry sweeps.
func NewAdvisor(ctx context.Context, cfg *config.Config) (*advisor.Advisor, *cache.LRU[string], error) {
	gen, err := advisor.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}
	suggestions := cache.NewLRU[string](cfg.SuggestionCacheSize, cfg.SuggestionCacheTTL)
	adv := advisor.New(gen, advisor.Config{
		AnalysisModel:   cfg.AnalysisModel,
		SuggestionModel: cfg.SuggestionModel,
	}, suggestions)
	return adv, suggestions, nil
}
