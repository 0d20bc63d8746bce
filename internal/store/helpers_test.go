package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/service"

	"github.com/shopspring/decimal"
)

var errServer = &apiclient.APIError{Status: http.StatusInternalServerError, Message: "Internal server error"}

// fakeCarts is an in-memory CartService whose calls can be made to fail
type fakeCarts struct {
	mu      sync.Mutex
	cart    domain.Cart
	fail    error
	nextID  int
	getHits int
}

func (f *fakeCarts) Get(ctx context.Context) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getHits++
	if f.fail != nil {
		return nil, f.fail
	}
	cart := f.cart.Clone()
	return &cart, nil
}

func (f *fakeCarts) AddItem(ctx context.Context, req service.AddCartItemRequest) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID++
	item := domain.CartItem{
		ID:        fmt.Sprintf("item-%d", f.nextID),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: decimal.NewFromInt(10),
	}
	f.cart.Items = append(f.cart.Items, item)
	return &item, nil
}

func (f *fakeCarts) UpdateItem(ctx context.Context, itemID string, req service.UpdateCartItemRequest) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	i := f.cart.FindItem(itemID)
	if i < 0 {
		return nil, &apiclient.APIError{Status: http.StatusNotFound, Message: "Item not found"}
	}
	f.cart.Items[i].Quantity = req.Quantity
	item := f.cart.Items[i]
	return &item, nil
}

func (f *fakeCarts) RemoveItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeCarts) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.cart.Items = nil
	return nil
}

func (f *fakeCarts) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func line(id string, qty int, unit int64) domain.CartItem {
	return domain.CartItem{ID: id, ProductID: "p-" + id, Quantity: qty, UnitPrice: decimal.NewFromInt(unit)}
}

// fakeAuth is a scripted AuthService
type fakeAuth struct {
	login  func() (*service.AuthResult, error)
	me     func() (*domain.User, error)
	logout error
}

func (f *fakeAuth) Login(ctx context.Context, req service.LoginRequest) (*service.AuthResult, error) {
	return f.login()
}

func (f *fakeAuth) Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error) {
	return f.login()
}

func (f *fakeAuth) Logout(ctx context.Context) error { return f.logout }

func (f *fakeAuth) Me(ctx context.Context) (*domain.User, error) { return f.me() }

func (f *fakeAuth) UpdateProfile(ctx context.Context, req service.UpdateProfileRequest) (*domain.User, error) {
	return f.me()
}

func (f *fakeAuth) ChangePassword(ctx context.Context, req service.ChangePasswordRequest) error {
	return nil
}

// fakeOrders only implements Create
type fakeOrders struct {
	service.OrderService
	created int
	fail    error
}

func (f *fakeOrders) Create(ctx context.Context, req service.CreateOrderRequest) (*domain.Order, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.created++
	return &domain.Order{ID: "o1", OrderNumber: "ORD-1", Status: domain.OrderPending}, nil
}

// failingRepo rejects every write
type failingRepo struct{}

var errRepoDown = errors.New("repository down")

func (failingRepo) Save(ctx context.Context, key string, payload []byte) error { return errRepoDown }
func (failingRepo) Load(ctx context.Context, key string) ([]byte, error)       { return nil, errRepoDown }
func (failingRepo) Delete(ctx context.Context, key string) error               { return errRepoDown }

// gate holds a fake call until the test releases it with an outcome
type gate struct {
	entered chan struct{}
	release chan error
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan error)}
}

func (g *gate) wait(ctx context.Context) error {
	close(g.entered)
	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// gatedCarts holds UpdateItem and RemoveItem calls for gated item IDs
type gatedCarts struct {
	*fakeCarts
	updates map[string]*gate
	removes map[string]*gate
}

func (g *gatedCarts) UpdateItem(ctx context.Context, itemID string, req service.UpdateCartItemRequest) (*domain.CartItem, error) {
	if gt, ok := g.updates[itemID]; ok {
		if err := gt.wait(ctx); err != nil {
			return nil, err
		}
	}
	return g.fakeCarts.UpdateItem(ctx, itemID, req)
}

func (g *gatedCarts) RemoveItem(ctx context.Context, itemID string) error {
	if gt, ok := g.removes[itemID]; ok {
		if err := gt.wait(ctx); err != nil {
			return err
		}
	}
	return g.fakeCarts.RemoveItem(ctx, itemID)
}

// gatedAuth holds Me and Logout while their gates are set
type gatedAuth struct {
	*fakeAuth
	me     *gate
	logout *gate
}

func (g *gatedAuth) Me(ctx context.Context) (*domain.User, error) {
	if g.me != nil {
		if err := g.me.wait(ctx); err != nil {
			return nil, err
		}
	}
	return g.fakeAuth.Me(ctx)
}

func (g *gatedAuth) Logout(ctx context.Context) error {
	if g.logout != nil {
		if err := g.logout.wait(ctx); err != nil {
			return err
		}
	}
	return g.fakeAuth.Logout(ctx)
}

// async runs fn in the background and returns a channel with its error
func async(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return done
}
