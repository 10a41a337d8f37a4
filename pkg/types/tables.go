package types

// Category names partition the record store by worker variant.
const (
	CategoryHourly   = "hourly"
	CategorySalaried = "salaried"
)

// ScopeAll selects every category in Read and Clear.
const ScopeAll = "all"

// Categories lists the known categories in their fixed display and
// serialization order.
var Categories = []string{
	CategoryHourly,
	CategorySalaried,
}

// KindOf returns the worker variant stored under category.
// Returns ErrInvalidCategory for names outside Categories.
func KindOf(category string) (Kind, error) {
	switch category {
	case CategoryHourly:
		return KindHourly, nil
	case CategorySalaried:
		return KindSalaried, nil
	default:
		return "", ErrInvalidCategory
	}
}

// CategoryOf returns the category that holds workers of kind k.
func CategoryOf(k Kind) (string, error) {
	switch k {
	case KindHourly:
		return CategoryHourly, nil
	case KindSalaried:
		return CategorySalaried, nil
	default:
		return "", ErrUnknownKind
	}
}

// ScopeCategories expands a category-or-"all" scope into the categories it
// covers. Returns ErrInvalidCategory for anything else.
func ScopeCategories(scope string) ([]string, error) {
	if scope == ScopeAll {
		return Categories, nil
	}
	if _, err := KindOf(scope); err != nil {
		return nil, err
	}
	return []string{scope}, nil
}
