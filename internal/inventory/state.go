package inventory

import (
	"github.com/danisworo/stockpile/internal/model"
)

// State is the in-memory snapshot of all inventory data for the process
// lifetime. It is a plain data holder owned by exactly one service instance;
// the service serializes access, State itself does no locking.
type State struct {
	Products     map[string]model.Product
	Transactions []model.Transaction
	Allocations  model.Allocations
	Categories   []string
}

func NewState() *State {
	return &State{
		Products:    map[string]model.Product{},
		Allocations: model.Allocations{},
		Categories:  model.DefaultCategories(),
	}
}

// TotalProjectQuantity sums every project reservation for a product.
func (s *State) TotalProjectQuantity(productID string) int {
	return s.Allocations.TotalFor(productID)
}

// PhysicalStock is on-hand plus reserved: the units that physically exist.
// Absent ids yield 0.
func (s *State) PhysicalStock(productID string) int {
	p := s.Products[productID]
	return p.CurrentQuantity + s.Allocations.TotalFor(productID)
}

// ProjectNames lists every project with any allocation, sorted ascending.
func (s *State) ProjectNames() []string {
	return s.Allocations.ProjectNames()
}
