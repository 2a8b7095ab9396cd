package session

import (
	"fmt"

	"github.com/temcen/storefront/pkg/models"
)

type Page string

const (
	PageHome   Page = "home"
	PageDetail Page = "detail"
)

// State is the mutable record of one shopper's session. The current product is set
// exactly when the page is PageDetail.
type State struct {
	page           Page
	currentProduct *models.Product
	cart           *Cart
	user           models.UserIdentity
}

// NewState returns the state of a fresh session: home page, empty cart, anonymous.
func NewState() *State {
	return &State{
		page: PageHome,
		cart: NewCart(),
		user: models.Anonymous,
	}
}

// Snapshot is a read-only copy of State, used for rendering and persistence.
type Snapshot struct {
	Page           Page                `json:"page"`
	CurrentProduct *models.Product     `json:"current_product,omitempty"`
	Cart           []int64             `json:"cart"`
	UserID         models.UserIdentity `json:"user_id"`
}

// GetState returns a copy of the current state.
func (s *State) GetState() Snapshot {
	snap := Snapshot{
		Page:   s.page,
		Cart:   s.cart.Items(),
		UserID: s.user,
	}
	if s.currentProduct != nil {
		product := *s.currentProduct
		snap.CurrentProduct = &product
	}
	return snap
}

// Restore rebuilds a State from a snapshot, rejecting snapshots that break the
// page/product invariant.
func Restore(snap Snapshot) (*State, error) {
	switch snap.Page {
	case PageHome:
		if snap.CurrentProduct != nil {
			return nil, fmt.Errorf("home snapshot carries a current product: %w", ErrInvalidTransition)
		}
	case PageDetail:
		if snap.CurrentProduct == nil {
			return nil, fmt.Errorf("detail snapshot without a current product: %w", ErrInvalidTransition)
		}
	default:
		return nil, fmt.Errorf("unknown page %q: %w", snap.Page, ErrInvalidTransition)
	}

	state := NewState()
	state.page = snap.Page
	if snap.CurrentProduct != nil {
		product := *snap.CurrentProduct
		state.currentProduct = &product
	}
	for _, id := range snap.Cart {
		state.cart.Add(id)
	}
	state.SetUserIdentity(int64(snap.UserID))
	return state, nil
}

func (s *State) Page() Page {
	return s.page
}

func (s *State) CurrentProduct() *models.Product {
	return s.currentProduct
}

func (s *State) User() models.UserIdentity {
	return s.user
}

func (s *State) Cart() *Cart {
	return s.cart
}

// SetUserIdentity adopts id when it is positive; zero and negative values leave the
// identity untouched.
func (s *State) SetUserIdentity(id int64) {
	if id > 0 {
		s.user = models.UserIdentity(id)
	}
}

func (s *State) NavigateHome() {
	s.page = PageHome
	s.currentProduct = nil
}

func (s *State) NavigateToDetail(product *models.Product) error {
	if product == nil {
		return fmt.Errorf("detail page requires a product: %w", ErrInvalidTransition)
	}
	s.page = PageDetail
	s.currentProduct = product
	return nil
}

// AddToCart reports whether productID was newly inserted.
func (s *State) AddToCart(productID int64) bool {
	return s.cart.Add(productID)
}

func (s *State) ClearCart() {
	s.cart.Clear()
}
