package order

import "slices"

// Topping is an entry of the static topping catalog.
type Topping struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var toppingCatalog = []Topping{
	{ID: "1", Label: "Pepperoni"},
	{ID: "2", Label: "Green Peppers"},
	{ID: "3", Label: "Pineapple"},
	{ID: "4", Label: "Mushrooms"},
	{ID: "5", Label: "Ham"},
}

// Toppings returns the catalog in display order.
func Toppings() []Topping {
	return slices.Clone(toppingCatalog)
}

// LookupTopping resolves a topping by id.
func LookupTopping(id string) (Topping, bool) {
	for _, t := range toppingCatalog {
		if t.ID == id {
			return t, true
		}
	}
	return Topping{}, false
}

// SortToppings orders ids by catalog position and drops duplicates. Ids that
// are not in the catalog are dropped too; callers validate ids beforehand
// when unknown ids must be reported.
func SortToppings(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for _, t := range toppingCatalog {
		if _, ok := seen[t.ID]; ok {
			out = append(out, t.ID)
		}
	}
	return out
}
