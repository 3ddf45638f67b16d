package model

import "sort"

// Allocations maps product id -> project name -> reserved quantity.
// Entries never hold zero or negative quantities; mutation helpers prune them.
type Allocations map[string]map[string]int

// TotalFor sums every project reservation for a product. Absent ids count as 0.
func (a Allocations) TotalFor(productID string) int {
	sum := 0
	for _, qty := range a[productID] {
		sum += qty
	}
	return sum
}

// Get returns the reservation for one product/project pair, 0 when absent.
func (a Allocations) Get(productID, project string) int {
	return a[productID][project]
}

// Add increases a reservation, creating the nested map as needed.
func (a Allocations) Add(productID, project string, qty int) {
	if a[productID] == nil {
		a[productID] = map[string]int{}
	}
	a[productID][project] += qty
}

// Subtract decreases a reservation and prunes entries that reach zero,
// including the product key itself once no projects remain.
func (a Allocations) Subtract(productID, project string, qty int) {
	m := a[productID]
	if m == nil {
		return
	}
	m[project] -= qty
	if m[project] <= 0 {
		delete(m, project)
	}
	if len(m) == 0 {
		delete(a, productID)
	}
}

// MoveKey renames a product's allocation entry. Used by product rename;
// the old key simply becomes the new one, no merge happens.
func (a Allocations) MoveKey(oldID, newID string) {
	if m, ok := a[oldID]; ok {
		a[newID] = m
		delete(a, oldID)
	}
}

// ProjectNames returns every project appearing in any allocation,
// de-duplicated and sorted ascending.
func (a Allocations) ProjectNames() []string {
	seen := map[string]struct{}{}
	for _, m := range a {
		for project := range m {
			seen[project] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for project := range seen {
		names = append(names, project)
	}
	sort.Strings(names)
	return names
}

// Clone deep-copies the two map levels.
func (a Allocations) Clone() Allocations {
	out := make(Allocations, len(a))
	for id, m := range a {
		inner := make(map[string]int, len(m))
		for project, qty := range m {
			inner[project] = qty
		}
		out[id] = inner
	}
	return out
}
