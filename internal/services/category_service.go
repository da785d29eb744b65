package services

import (
	"budget/internal/core"
	"budget/internal/ports"
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type CategoryService struct {
	store ports.CategoryStore
}

func NewCategoryService(store ports.CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// Add inserts name under parent. It reports false, with a nil error, when
// the name is empty or the category already exists.
func (s *CategoryService) Add(ctx context.Context, name, parent string) (bool, error) {
	name = strings.TrimSpace(name)
	parent = strings.TrimSpace(parent)
	if name == "" {
		return false, nil
	}
	full := core.Category{Parent: parent, Child: name}
	if parent == "" {
		full = core.Category{Parent: name}
	}
	added, err := s.store.AddCategory(ctx, full.String())
	if err != nil {
		return false, fmt.Errorf("add category: %w", err)
	}
	return added, nil
}

func (s *CategoryService) List(ctx context.Context) ([]string, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Tree(ctx context.Context) (core.CategoryTree, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return core.CategoryTree{}, err
	}
	return core.StructureCategories(cats), nil
}

// Import adds every category returned by r and reports how many were new.
func (s *CategoryService) Import(ctx context.Context, r ports.CategoryReader) (int, error) {
	cats, err := r.ReadCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("read categories: %w", err)
	}
	added := 0
	for _, c := range cats {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		ok, err := s.store.AddCategory(ctx, c)
		if err != nil {
			return added, fmt.Errorf("add category %q: %w", c, err)
		}
		if ok {
			added++
		}
	}
	slog.InfoContext(ctx, "Categories imported", "read", len(cats), "added", added)
	return added, nil
}
