package core

import (
	"reflect"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Food", Category{Parent: "Food"}},
		{"Food:Groceries", Category{Parent: "Food", Child: "Groceries"}},
		{"A:B:C", Category{Parent: "A", Child: "B:C"}},
	}
	for _, tt := range tests {
		got := ParseCategory(tt.in)
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestStructureCategories(t *testing.T) {
	got := StructureCategories([]string{"Food", "Food:Groceries", "Bills:Internet", "Salary", "Food:Bakery", "Other"})
	want := CategoryTree{
		TopLevel: []string{"Other", "Salary"},
		Grouped: []CategoryGroup{
			{Name: "Bills", Subcategories: []string{"Bills:Internet"}},
			{Name: "Food", Subcategories: []string{"Food:Bakery", "Food:Groceries"}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("StructureCategories() = %+v, want %+v", got, want)
	}
}

func TestStructureCategoriesEmpty(t *testing.T) {
	got := StructureCategories(nil)
	if len(got.TopLevel) != 0 || len(got.Grouped) != 0 {
		t.Fatalf("expected empty tree, got %+v", got)
	}
	if got.TopLevel == nil || got.Grouped == nil {
		t.Fatal("expected non-nil slices for JSON encoding")
	}
}

func TestCategorySetAdd(t *testing.T) {
	s := NewCategorySet([]string{"Food", "Bills"})

	tests := []struct {
		name, cat, parent string
		want              bool
	}{
		{"new top level", "Travel", "", true},
		{"new child", "Bakery", "Food", true},
		{"child of missing parent", "Gym", "Health", true},
		{"duplicate", "Food", "", false},
		{"duplicate child", "Bakery", "Food", false},
		{"empty name", "  ", "Food", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Add(tt.cat, tt.parent); got != tt.want {
				t.Errorf("Add(%q, %q) = %v, want %v", tt.cat, tt.parent, got, tt.want)
			}
		})
	}

	want := []string{"Bills", "Food", "Food:Bakery", "Health:Gym", "Travel"}
	if got := s.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
}

func TestIsIncomeCategory(t *testing.T) {
	for name, want := range map[string]bool{
		"Salary":         true,
		"Freelance:Gigs": true,
		"Food":           false,
		"Savings":        false,
	} {
		if got := IsIncomeCategory(name); got != want {
			t.Errorf("IsIncomeCategory(%q) = %v, want %v", name, got, want)
		}
	}
}
