package session

import (
	"fmt"

	"github.com/temcen/storefront/pkg/models"
)

type ActionKind string

const (
	ActionViewDetails ActionKind = "view_details"
	ActionAddToCart   ActionKind = "add_to_cart"
	ActionBack        ActionKind = "back"
	ActionBuyNow      ActionKind = "buy_now"
	ActionGoHome      ActionKind = "go_home"
	ActionClearCart   ActionKind = "clear_cart"
)

// Action is one user gesture. Product is the card the gesture was made on; it is
// required for view_details and for add_to_cart on the home page, and ignored otherwise.
type Action struct {
	Kind    ActionKind
	Product *models.Product
}

const (
	NoticeAddedToCart = "Added to cart!"
	NoticeOrderPlaced = "Order placed successfully!"
	NoticeCartCleared = "Cart cleared!"
)

// RecordIntent names the interaction the caller should try to record after a
// transition. The recorder decides what to do with anonymous users.
type RecordIntent struct {
	User      models.UserIdentity
	ProductID int64
	Type      models.InteractionType
}

// Transition describes the result of applying an action.
type Transition struct {
	From   Page
	To     Page
	Added  bool
	Notice string
	Record *RecordIntent
}

// Apply runs action against state. On error the state is left as it was.
func Apply(state *State, action Action) (Transition, error) {
	t := Transition{From: state.page}

	switch action.Kind {
	case ActionViewDetails:
		if state.page != PageHome {
			return t, invalid(action, state.page)
		}
		if err := state.NavigateToDetail(action.Product); err != nil {
			return t, err
		}
		t.Record = intent(state, action.Product.ID, models.InteractionView)

	case ActionAddToCart:
		product := action.Product
		if state.page == PageDetail {
			product = state.currentProduct
		}
		if product == nil {
			return t, fmt.Errorf("add to cart requires a product: %w", ErrInvalidTransition)
		}
		if state.AddToCart(product.ID) {
			t.Added = true
			t.Notice = NoticeAddedToCart
			t.Record = intent(state, product.ID, models.InteractionAddToCart)
		}

	case ActionBack:
		if state.page != PageDetail {
			return t, invalid(action, state.page)
		}
		state.NavigateHome()

	case ActionBuyNow:
		if state.page != PageDetail {
			return t, invalid(action, state.page)
		}
		t.Notice = NoticeOrderPlaced
		t.Record = intent(state, state.currentProduct.ID, models.InteractionPurchase)

	case ActionGoHome:
		state.NavigateHome()

	case ActionClearCart:
		state.ClearCart()
		t.Notice = NoticeCartCleared

	default:
		return t, fmt.Errorf("unknown action %q: %w", action.Kind, ErrInvalidTransition)
	}

	t.To = state.page
	return t, nil
}

func intent(state *State, productID int64, interactionType models.InteractionType) *RecordIntent {
	return &RecordIntent{
		User:      state.user,
		ProductID: productID,
		Type:      interactionType,
	}
}

func invalid(action Action, page Page) error {
	return fmt.Errorf("%s is not available on the %s page: %w", action.Kind, page, ErrInvalidTransition)
}
