package core

import (
	"slices"
	"strings"
)

// CategorySeparator splits a parent category from its child.
const CategorySeparator = ":"

// Uncategorized is the fallback label for transactions without a better fit.
const Uncategorized = "Uncategorized"

// DefaultCategories seeds a fresh store.
var DefaultCategories = []string{
	"Salary",
	"Freelance",
	"Food",
	"Food:Groceries",
	"Food:Restaurants",
	"Housing",
	"Bills",
	"Bills:Internet",
	"Bills:Electricity",
	"Social",
	"Shopping",
	"Health",
	"Transport",
	"Transport:Fuel",
	"Transport:Public",
	"Savings",
	"Other",
	Uncategorized,
}

// IncomeCategories are the top-level categories reserved for income.
var IncomeCategories = []string{"Salary", "Freelance"}

// SavingsCategory receives goal contributions.
const SavingsCategory = "Savings"

// Category is the parsed form of a "Parent" or "Parent:Child" string.
type Category struct {
	Parent string
	Child  string
}

// ParseCategory splits s on the first separator.
func ParseCategory(s string) Category {
	parent, child, _ := strings.Cut(s, CategorySeparator)
	return Category{Parent: parent, Child: child}
}

func (c Category) String() string {
	if c.Child == "" {
		return c.Parent
	}
	return c.Parent + CategorySeparator + c.Child
}

// IsChild reports whether the category has a parent.
func (c Category) IsChild() bool {
	return c.Child != ""
}

// IsIncomeCategory reports whether name is, or belongs to, an income category.
func IsIncomeCategory(name string) bool {
	return slices.Contains(IncomeCategories, ParseCategory(name).Parent)
}

// CategoryGroup is a parent with its full child category strings.
type CategoryGroup struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// CategoryTree is the selection structure of a category list.
type CategoryTree struct {
	TopLevel []string        `json:"topLevel"`
	Grouped  []CategoryGroup `json:"grouped"`
}

// StructureCategories splits categories into plain top-level entries and
// parent groups. A plain entry that is also the parent of another entry is
// only rendered as a group header.
func StructureCategories(categories []string) CategoryTree {
	parents := map[string]bool{}
	for _, c := range categories {
		if cat := ParseCategory(c); cat.IsChild() {
			parents[cat.Parent] = true
		}
	}

	groups := map[string][]string{}
	tree := CategoryTree{TopLevel: []string{}, Grouped: []CategoryGroup{}}
	for _, c := range categories {
		cat := ParseCategory(c)
		if cat.IsChild() {
			groups[cat.Parent] = append(groups[cat.Parent], c)
			continue
		}
		if !parents[c] {
			tree.TopLevel = append(tree.TopLevel, c)
		}
	}
	slices.Sort(tree.TopLevel)

	for name, subs := range groups {
		slices.Sort(subs)
		tree.Grouped = append(tree.Grouped, CategoryGroup{Name: name, Subcategories: subs})
	}
	slices.SortFunc(tree.Grouped, func(a, b CategoryGroup) int {
		return strings.Compare(a.Name, b.Name)
	})
	return tree
}

// CategorySet is a sorted set of category strings.
type CategorySet struct {
	items []string
}

func NewCategorySet(categories []string) *CategorySet {
	s := &CategorySet{}
	for _, c := range categories {
		s.insert(strings.TrimSpace(c))
	}
	return s
}

// Add inserts name, or parent:name when parent is set. It returns false for
// an empty name or an exact duplicate. The parent need not exist.
func (s *CategorySet) Add(name, parent string) bool {
	name = strings.TrimSpace(name)
	parent = strings.TrimSpace(parent)
	if name == "" {
		return false
	}
	full := name
	if parent != "" {
		full = parent + CategorySeparator + name
	}
	return s.insert(full)
}

func (s *CategorySet) insert(c string) bool {
	if c == "" {
		return false
	}
	i, found := slices.BinarySearch(s.items, c)
	if found {
		return false
	}
	s.items = slices.Insert(s.items, i, c)
	return true
}

func (s *CategorySet) Contains(c string) bool {
	_, found := slices.BinarySearch(s.items, c)
	return found
}

// List returns a copy of the sorted categories.
func (s *CategorySet) List() []string {
	return slices.Clone(s.items)
}

func (s *CategorySet) Len() int {
	return len(s.items)
}
