package domain

import (
	"errors"
	"fmt"
)

// Category is a named partition of a session's document space. The set is
// closed: sessions can never point at a category outside this list.
type Category string

const (
	CategoryFacultyReconciliation Category = "faculty_reconciliation"
	CategoryFacultyConsolidated   Category = "faculty_consolidated"
	CategoryAdminReconciliation   Category = "administrative_reconciliation"
	CategoryAdminConsolidated     Category = "administrative_consolidated"
	CategoryMiscellaneous         Category = "miscellaneous"
)

// Categories returns the closed set in declaration order. Callers must not
// mutate the returned slice.
func Categories() []Category {
	return categorySet
}

var categorySet = []Category{
	CategoryFacultyReconciliation,
	CategoryFacultyConsolidated,
	CategoryAdminReconciliation,
	CategoryAdminConsolidated,
	CategoryMiscellaneous,
}

var categoryLookup = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(categorySet))
	for _, c := range categorySet {
		m[c] = struct{}{}
	}
	return m
}()

// ParseCategory validates a runtime category name against the closed set.
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if _, ok := categoryLookup[c]; !ok {
		return "", WrapError(ErrScopeConfiguration, "parse category", fmt.Errorf("unknown category %q", name))
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryLookup[c]
	return ok
}

// Scope names a document partition: any session category, or the
// session-independent global pool.
type Scope string

const ScopeGlobal Scope = "global"

func (c Category) Scope() Scope { return Scope(c) }

func (s Scope) IsGlobal() bool { return s == ScopeGlobal }

// Category returns the session category a non-global scope refers to.
func (s Scope) Category() (Category, error) {
	if s.IsGlobal() {
		return "", errors.New("global scope has no category")
	}
	return ParseCategory(string(s))
}

// ParseScope accepts any valid category name or "global".
func ParseScope(name string) (Scope, error) {
	if Scope(name) == ScopeGlobal {
		return ScopeGlobal, nil
	}
	c, err := ParseCategory(name)
	if err != nil {
		return "", err
	}
	return c.Scope(), nil
}
