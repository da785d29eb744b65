// Package advisor asks a language model for budget analysis and category
// suggestions. Model failures never reach the caller: analysis falls back to
// an apology and suggestions to a default category.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"budget/internal/cache"
	"budget/internal/core"
)

const (
	DefaultAnalysisModel   = "gemini-2.5-flash"
	DefaultSuggestionModel = "gemini-2.5-flash"
)

type Config struct {
	AnalysisModel   string
	SuggestionModel string
}

type Advisor struct {
	gen         Generator
	cfg         Config
	suggestions cache.Cache[string]
}

// New creates an advisor. suggestions may be nil to disable caching.
func New(gen Generator, cfg Config, suggestions cache.Cache[string]) *Advisor {
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = DefaultAnalysisModel
	}
	if cfg.SuggestionModel == "" {
		cfg.SuggestionModel = DefaultSuggestionModel
	}
	return &Advisor{gen: gen, cfg: cfg, suggestions: suggestions}
}

// BudgetAnalysis answers query about the given transactions in prose.
func (a *Advisor) BudgetAnalysis(ctx context.Context, query string, transactions []core.Transaction, summary core.Summary) string {
	data, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode transactions for analysis", "error", err)
		return AnalysisFallback
	}
	prompt := fmt.Sprintf(analysisPromptTemplate, summary.Income.String(), summary.Expenses.String(), query, data)

	resp, err := a.gen.Generate(ctx, Request{
		Model:             a.cfg.AnalysisModel,
		Prompt:            prompt,
		SystemInstruction: analysisInstruction,
		Temperature:       0.5,
		TopP:              0.95,
		TopK:              64,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Budget analysis failed",
			"model", a.cfg.AnalysisModel,
			"transactions", len(transactions),
			"error", err)
		return AnalysisFallback
	}
	return resp.Text
}

// SuggestCategory picks a category for description among the categories
// allowed for kind. Answers outside that set are discarded.
func (a *Advisor) SuggestCategory(ctx context.Context, description string, categories []string, kind core.TransactionType) string {
	candidates := Candidates(categories, kind)
	fallback := fallbackCategory(categories)
	if len(candidates) == 0 {
		return fallback
	}

	key := cacheKey(kind, description)
	if a.suggestions != nil {
		if hit, ok := a.suggestions.Get(key); ok && slices.Contains(candidates, hit) {
			return hit
		}
	}

	resp, err := a.gen.Generate(ctx, Request{
		Model:       a.cfg.SuggestionModel,
		Prompt:      fmt.Sprintf(suggestionPromptTemplate, description, strings.Join(candidates, "\n")),
		Temperature: 0.1,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Category suggestion failed",
			"model", a.cfg.SuggestionModel,
			"error", err)
		return core.Uncategorized
	}

	suggestion := firstLine(resp.Text)
	if !slices.Contains(candidates, suggestion) {
		slog.WarnContext(ctx, "Model suggested a category outside the list",
			"suggestion", suggestion,
			"fallback", fallback)
		return fallback
	}
	if a.suggestions != nil {
		a.suggestions.Set(key, suggestion)
	}
	return suggestion
}

// Candidates restricts categories to those valid for kind. Income
// transactions may only use the income categories and their children, which
// are always offered even when missing from categories.
func Candidates(categories []string, kind core.TransactionType) []string {
	var out []string
	if kind == core.Income {
		out = slices.Clone(core.IncomeCategories)
	}
	for _, c := range categories {
		if core.IsIncomeCategory(c) != (kind == core.Income) || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func fallbackCategory(categories []string) string {
	if len(categories) == 0 || slices.Contains(categories, core.Uncategorized) {
		return core.Uncategorized
	}
	return categories[0]
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func cacheKey(kind core.TransactionType, description string) string {
	return string(kind) + "|" + strings.ToLower(strings.TrimSpace(description))
}
