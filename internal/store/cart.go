package store

import (
	"context"
	"errors"
	"time"

	"optic-storefront/internal/domain"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout is attempted without items
var ErrEmptyCart = errors.New("cart is empty")

// Source tells where the current cart totals came from
type Source string

const (
	// SourceLocal totals were recomputed on this side after a mutation or rehydration
	SourceLocal Source = "local"
	// SourceServer totals are the backend's, from the last full fetch
	SourceServer Source = "server"
)

// CartData is the data held by the cart store
type CartData struct {
	Cart   domain.Cart `json:"cart"`
	Source Source      `json:"source"`
}

type (
	cartLoaded      struct{ cart domain.Cart }
	cartItemAdded   struct{ item domain.CartItem }
	cartItemUpdated struct{ item domain.CartItem }
	cartQtyChanged  struct {
		itemID   string
		quantity int
	}
	cartItemRemoved struct{ itemID string }
	// cartLineRestored puts a line back to item, provided the line still
	// carries the quantity the failed request set optimistically.
	cartLineRestored struct {
		item     domain.CartItem
		expected int
	}
	// cartLineReinserted puts a removed line back at index unless it exists
	cartLineReinserted struct {
		item  domain.CartItem
		index int
	}
	cartCleared struct{}
)

// ReduceCart is the pure update function of the cart store
func ReduceCart(state CartData, action Action) CartData {
	switch a := action.(type) {
	case cartLoaded:
		cart := a.cart.Clone()
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		// The next full fetch is the source of truth, totals included.
		return CartData{Cart: cart, Source: SourceServer}

	case cartItemAdded:
		cart := state.Cart.Clone()
		if i := cart.FindItem(a.item.ID); i >= 0 && a.item.ID != "" {
			cart.Items[i] = a.item
		} else {
			cart.Items = append(cart.Items, a.item)
		}
		return recalculated(cart)

	case cartItemUpdated:
		cart := state.Cart.Clone()
		if i := cart.FindItem(a.item.ID); i >= 0 {
			cart.Items[i] = a.item
		}
		return recalculated(cart)

	case cartQtyChanged:
		cart := state.Cart.Clone()
		if i := cart.FindItem(a.itemID); i >= 0 {
			cart.Items[i].Quantity = a.quantity
		}
		return recalculated(cart)

	case cartItemRemoved:
		cart := state.Cart.Clone()
		if i := cart.FindItem(a.itemID); i >= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		}
		return recalculated(cart)

	case cartLineRestored:
		cart := state.Cart.Clone()
		i := cart.FindItem(a.item.ID)
		if i < 0 || cart.Items[i].Quantity != a.expected {
			return state
		}
		cart.Items[i] = a.item
		return recalculated(cart)

	case cartLineReinserted:
		cart := state.Cart.Clone()
		if cart.FindItem(a.item.ID) >= 0 {
			return state
		}
		index := min(max(a.index, 0), len(cart.Items))
		cart.Items = append(cart.Items[:index], append([]domain.CartItem{a.item}, cart.Items[index:]...)...)
		return recalculated(cart)

	case cartCleared:
		return CartData{Cart: emptyCart(), Source: SourceLocal}
	}
	return state
}

func recalculated(cart domain.Cart) CartData {
	cart.Recalculate()
	cart.UpdatedAt = time.Now().UTC()
	return CartData{Cart: cart, Source: SourceLocal}
}

func emptyCart() domain.Cart {
	return domain.Cart{Items: []domain.CartItem{}, Subtotal: decimal.Zero}
}

// cartSnapshot is the persisted part of the cart store
type cartSnapshot struct {
	Items      []domain.CartItem `json:"items"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	TotalItems int               `json:"totalItems"`
}

func toCartSnapshot(d CartData) cartSnapshot {
	return cartSnapshot{
		Items:      d.Cart.Items,
		Subtotal:   d.Cart.Subtotal,
		TotalItems: d.Cart.TotalItems,
	}
}

// fromCartSnapshot recomputes totals from the items; persisted totals are
// only informational.
func fromCartSnapshot(s cartSnapshot) CartData {
	cart := domain.Cart{Items: s.Items}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	cart.Recalculate()
	return CartData{Cart: cart, Source: SourceLocal}
}

// CartStore mirrors the session's server-side cart
type CartStore struct {
	store *Store[CartData]
	carts service.CartService
}

// NewCartStore creates a cart store persisting under CartKey(sessionID).
// repo may be nil for an unpersisted store.
func NewCartStore(carts service.CartService, repo repository.SnapshotRepository, sessionID string, logger *zap.Logger) *CartStore {
	opts := []Option[CartData]{WithLogger[CartData](logger)}
	if repo != nil {
		opts = append(opts, WithPersister[CartData](
			NewSnapshotPersister(repo, CartKey(sessionID), toCartSnapshot, fromCartSnapshot).
				DeleteWhen(func(d CartData) bool { return d.Cart.IsEmpty() }),
		))
	}
	return &CartStore{
		store: New("cart", CartData{Cart: emptyCart(), Source: SourceLocal}, ReduceCart, opts...),
		carts: carts,
	}
}

// Hydrate restores the persisted cart
func (c *CartStore) Hydrate(ctx context.Context) (bool, error) {
	return c.store.Hydrate(ctx)
}

// State returns the current cart state
func (c *CartStore) State() State[CartData] {
	return c.store.State()
}

// Cart returns the current cart
func (c *CartStore) Cart() domain.Cart {
	return c.store.Data().Cart
}

// Subscribe registers fn for every cart transition
func (c *CartStore) Subscribe(fn func(State[CartData])) func() {
	return c.store.Subscribe(fn)
}

// Load replaces the local mirror with the backend cart
func (c *CartStore) Load(ctx context.Context) error {
	_, err := Execute(ctx, c.store, Op[*domain.Cart]{
		Call: c.carts.Get,
		Success: func(cart *domain.Cart) Action {
			return cartLoaded{cart: *cart}
		},
	})
	return err
}

// AddItem adds a product to the cart and merges the returned line
func (c *CartStore) AddItem(ctx context.Context, req service.AddCartItemRequest) error {
	_, err := Execute(ctx, c.store, Op[*domain.CartItem]{
		Call: func(ctx context.Context) (*domain.CartItem, error) {
			return c.carts.AddItem(ctx, req)
		},
		Success: func(item *domain.CartItem) Action {
			return cartItemAdded{item: *item}
		},
	})
	return err
}

// UpdateQuantity changes a line's quantity optimistically. A quantity below
// one removes the line.
func (c *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return c.RemoveItem(ctx, itemID)
	}

	var rollback func(error) Action
	if previous, _, ok := c.line(itemID); ok {
		rollback = func(error) Action {
			return cartLineRestored{item: previous, expected: quantity}
		}
	}

	_, err := Execute(ctx, c.store, Op[*domain.CartItem]{
		Optimistic: cartQtyChanged{itemID: itemID, quantity: quantity},
		Call: func(ctx context.Context) (*domain.CartItem, error) {
			return c.carts.UpdateItem(ctx, itemID, service.UpdateCartItemRequest{Quantity: quantity})
		},
		Success: func(item *domain.CartItem) Action {
			return cartItemUpdated{item: *item}
		},
		Rollback: rollback,
	})
	return err
}

// RemoveItem removes a line optimistically
func (c *CartStore) RemoveItem(ctx context.Context, itemID string) error {
	var rollback func(error) Action
	if previous, index, ok := c.line(itemID); ok {
		rollback = func(error) Action {
			return cartLineReinserted{item: previous, index: index}
		}
	}

	_, err := Execute(ctx, c.store, Op[struct{}]{
		Optimistic: cartItemRemoved{itemID: itemID},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.carts.RemoveItem(ctx, itemID)
		},
		Rollback: rollback,
	})
	return err
}

// line returns the current line itemID and its position
func (c *CartStore) line(itemID string) (domain.CartItem, int, bool) {
	cart := c.Cart()
	i := cart.FindItem(itemID)
	if i < 0 {
		return domain.CartItem{}, -1, false
	}
	return cart.Items[i], i, true
}

// Clear empties the cart on the backend and locally
func (c *CartStore) Clear(ctx context.Context) error {
	_, err := Execute(ctx, c.store, Op[struct{}]{
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.carts.Clear(ctx)
		},
		Success: func(struct{}) Action {
			return cartCleared{}
		},
		Force: true,
	})
	return err
}

// Reset empties the local mirror without calling the backend. Used on
// logout; responses still in flight for the old cart are discarded.
func (c *CartStore) Reset(ctx context.Context) {
	c.store.Supersede(ctx, cartCleared{})
}

// Checkout places an order for the current cart. An empty mirror is reloaded
// first; the mirror is emptied once the backend accepts the order.
func (c *CartStore) Checkout(ctx context.Context, orders service.OrderService, req service.CreateOrderRequest) (*domain.Order, error) {
	if c.Cart().IsEmpty() {
		if err := c.Load(ctx); err != nil {
			return nil, err
		}
		if c.Cart().IsEmpty() {
			return nil, ErrEmptyCart
		}
	}

	return Execute(ctx, c.store, Op[*domain.Order]{
		Call: func(ctx context.Context) (*domain.Order, error) {
			return orders.Create(ctx, req)
		},
		Success: func(*domain.Order) Action {
			return cartCleared{}
		},
		Force: true,
	})
}
