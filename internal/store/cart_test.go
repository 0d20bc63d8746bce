package store

import (
	"context"
	"testing"

	"optic-storefront/internal/domain"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/service"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLoadedCart(t *testing.T, items ...domain.CartItem) (*CartStore, *fakeCarts) {
	t.Helper()
	carts := &fakeCarts{cart: domain.Cart{Items: items}}
	carts.cart.Recalculate()
	cs := NewCartStore(carts, repository.NewMemorySnapshotRepository(), "s1", zap.NewNop())
	require.NoError(t, cs.Load(context.Background()))
	return cs, carts
}

func TestCartStore_RehydrateRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySnapshotRepository()
	payload := `{"items":[{"id":"i1","productId":"p1","quantity":2,"unitPrice":"10"}],"subtotal":"999","totalItems":7}`
	require.NoError(t, repo.Save(ctx, CartKey("s1"), []byte(payload)))

	cs := NewCartStore(&fakeCarts{}, repo, "s1", zap.NewNop())
	restored, err := cs.Hydrate(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	cart := cs.Cart()
	assert.Equal(t, 2, cart.TotalItems)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, SourceLocal, cs.State().Data.Source)
}

func TestCartStore_PersistsAfterTransition(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySnapshotRepository()
	cs := NewCartStore(&fakeCarts{}, repo, "s1", zap.NewNop())

	require.NoError(t, cs.AddItem(ctx, service.AddCartItemRequest{ProductID: "p1", Quantity: 3}))

	restored := NewCartStore(&fakeCarts{}, repo, "s1", zap.NewNop())
	ok, err := restored.Hydrate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, restored.Cart().TotalItems)
	assert.True(t, restored.Cart().Subtotal.Equal(decimal.NewFromInt(30)))
}

func TestCartStore_AddItemFailure(t *testing.T) {
	cs, carts := newLoadedCart(t)
	carts.setFail(errServer)

	err := cs.AddItem(context.Background(), service.AddCartItemRequest{ProductID: "p1", Quantity: 1})

	require.Error(t, err)
	state := cs.State()
	assert.NotEmpty(t, state.Error)
	assert.False(t, state.IsLoading)
	assert.True(t, state.Data.Cart.IsEmpty())
}

func TestCartStore_UpdateQuantityIsOptimistic(t *testing.T) {
	cs, _ := newLoadedCart(t, line("a", 1, 10), line("b", 2, 5))

	var during []State[CartData]
	cs.Subscribe(func(s State[CartData]) { during = append(during, s) })

	require.NoError(t, cs.UpdateQuantity(context.Background(), "a", 4))

	require.NotEmpty(t, during)
	assert.True(t, during[0].IsLoading)
	assert.Equal(t, 6, during[0].Data.Cart.TotalItems)

	cart := cs.Cart()
	assert.Equal(t, 6, cart.TotalItems)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(50)))
}

func TestCartStore_UpdateQuantityRollsBack(t *testing.T) {
	cs, carts := newLoadedCart(t, line("a", 1, 10), line("b", 2, 5))
	before := cs.Cart()
	carts.setFail(errServer)

	err := cs.UpdateQuantity(context.Background(), "a", 4)

	require.Error(t, err)
	after := cs.Cart()
	assert.Equal(t, before.TotalItems, after.TotalItems)
	assert.True(t, before.Subtotal.Equal(after.Subtotal))
	assert.Equal(t, 1, after.Items[0].Quantity)
	assert.NotEmpty(t, cs.State().Error)
}

func TestCartStore_RemoveItemRollsBack(t *testing.T) {
	cs, carts := newLoadedCart(t, line("a", 1, 10), line("b", 2, 5))
	carts.setFail(errServer)

	require.Error(t, cs.RemoveItem(context.Background(), "b"))
	assert.Len(t, cs.Cart().Items, 2)

	carts.setFail(nil)
	require.NoError(t, cs.RemoveItem(context.Background(), "b"))
	cart := cs.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.TotalItems)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(10)))
}

func TestCartStore_ZeroQuantityRemovesLine(t *testing.T) {
	cs, _ := newLoadedCart(t, line("a", 1, 10), line("b", 2, 5))

	require.NoError(t, cs.UpdateQuantity(context.Background(), "a", 0))

	cart := cs.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "b", cart.Items[0].ID)
}

func TestCartStore_LoadReplacesMirror(t *testing.T) {
	cs, carts := newLoadedCart(t, line("a", 1, 10))
	require.NoError(t, cs.UpdateQuantity(context.Background(), "a", 3))

	carts.mu.Lock()
	carts.cart = domain.Cart{
		Items:      []domain.CartItem{line("z", 1, 7)},
		Subtotal:   decimal.NewFromInt(7),
		TotalItems: 1,
	}
	carts.mu.Unlock()

	require.NoError(t, cs.Load(context.Background()))
	cart := cs.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "z", cart.Items[0].ID)
	assert.Equal(t, SourceServer, cs.State().Data.Source)
}

func TestCartStore_PersistenceFailureDoesNotFailAction(t *testing.T) {
	cs := NewCartStore(&fakeCarts{}, failingRepo{}, "s1", zap.NewNop())

	err := cs.AddItem(context.Background(), service.AddCartItemRequest{ProductID: "p1", Quantity: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, cs.Cart().TotalItems)
	assert.Empty(t, cs.State().Error)
}

func TestCartStore_Checkout(t *testing.T) {
	req := service.CreateOrderRequest{PaymentMethod: "card"}

	t.Run("empty cart is reloaded then rejected", func(t *testing.T) {
		cs, carts := newLoadedCart(t)
		orders := &fakeOrders{}

		_, err := cs.Checkout(context.Background(), orders, req)

		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, 2, carts.getHits)
		assert.Zero(t, orders.created)
	})

	t.Run("order placed and mirror emptied", func(t *testing.T) {
		cs, _ := newLoadedCart(t, line("a", 2, 10))
		orders := &fakeOrders{}

		order, err := cs.Checkout(context.Background(), orders, req)

		require.NoError(t, err)
		assert.Equal(t, "ORD-1", order.OrderNumber)
		assert.True(t, cs.Cart().IsEmpty())
		assert.True(t, cs.Cart().Subtotal.IsZero())
	})

	t.Run("failed order keeps the cart", func(t *testing.T) {
		cs, _ := newLoadedCart(t, line("a", 2, 10))
		orders := &fakeOrders{fail: errServer}

		_, err := cs.Checkout(context.Background(), orders, req)

		require.Error(t, err)
		assert.Equal(t, 2, cs.Cart().TotalItems)
	})
}

// Feature: optic-storefront, Property 4: Cart totals always equal the sums over its lines
func TestProperty_CartTotalsInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("totals match lines after any mutation sequence", prop.ForAll(
		func(quantities []int, prices []int64, removeAt int) bool {
			state := CartData{Cart: emptyCart()}
			for i, q := range quantities {
				price := int64(1)
				if i < len(prices) {
					price = prices[i]
				}
				state = ReduceCart(state, cartItemAdded{item: line(string(rune('a'+i)), q, price)})
			}
			if len(state.Cart.Items) > 0 {
				id := state.Cart.Items[removeAt%len(state.Cart.Items)].ID
				state = ReduceCart(state, cartQtyChanged{itemID: id, quantity: 7})
				state = ReduceCart(state, cartItemRemoved{itemID: id})
			}

			sum := decimal.Zero
			count := 0
			for _, item := range state.Cart.Items {
				if !item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
					return false
				}
				sum = sum.Add(item.TotalPrice)
				count += item.Quantity
			}
			return state.Cart.Subtotal.Equal(sum) && state.Cart.TotalItems == count
		},
		gen.SliceOfN(8, gen.IntRange(1, 99)),
		gen.SliceOf(gen.Int64Range(0, 100000)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartStore_OverlappingMutations(t *testing.T) {
	tests := []struct {
		name        string
		removeFirst bool
	}{
		{"removal resolves before the failed update", true},
		{"failed update resolves before the removal", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := repository.NewMemorySnapshotRepository()
			backend := &fakeCarts{cart: domain.Cart{Items: []domain.CartItem{line("a", 1, 10), line("b", 2, 5)}}}
			carts := &gatedCarts{
				fakeCarts: backend,
				updates:   map[string]*gate{"a": newGate()},
				removes:   map[string]*gate{"b": newGate()},
			}
			cs := NewCartStore(carts, repo, "s1", zap.NewNop())
			require.NoError(t, cs.Load(ctx))

			updated := async(func() error { return cs.UpdateQuantity(ctx, "a", 5) })
			<-carts.updates["a"].entered
			removed := async(func() error { return cs.RemoveItem(ctx, "b") })
			<-carts.removes["b"].entered

			if tt.removeFirst {
				carts.removes["b"].release <- nil
				require.NoError(t, <-removed)
				carts.updates["a"].release <- errServer
				require.Error(t, <-updated)
			} else {
				carts.updates["a"].release <- errServer
				require.Error(t, <-updated)
				carts.removes["b"].release <- nil
				require.NoError(t, <-removed)
			}

			cart := cs.Cart()
			require.Len(t, cart.Items, 1)
			assert.Equal(t, "a", cart.Items[0].ID)
			assert.Equal(t, 1, cart.Items[0].Quantity)
			assert.Equal(t, 1, cart.TotalItems)
			assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(10)))
			assert.False(t, cs.State().IsLoading)

			restored := NewCartStore(&fakeCarts{}, repo, "s1", zap.NewNop())
			ok, err := restored.Hydrate(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 1, restored.Cart().TotalItems)
		})
	}
}

func TestCartStore_FailedUpdateKeepsNewerQuantity(t *testing.T) {
	ctx := context.Background()
	backend := &fakeCarts{cart: domain.Cart{Items: []domain.CartItem{line("a", 1, 10)}}}
	carts := &gatedCarts{fakeCarts: backend, updates: map[string]*gate{"a": newGate()}}
	cs := NewCartStore(carts, nil, "s1", zap.NewNop())
	require.NoError(t, cs.Load(ctx))

	held := carts.updates["a"]
	first := async(func() error { return cs.UpdateQuantity(ctx, "a", 5) })
	<-held.entered

	// A second update for the same line goes straight through
	delete(carts.updates, "a")
	require.NoError(t, cs.UpdateQuantity(ctx, "a", 7))

	held.release <- errServer
	require.Error(t, <-first)

	cart := cs.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestCartStore_ClearRetiresPendingRemoval(t *testing.T) {
	ctx := context.Background()
	backend := &fakeCarts{cart: domain.Cart{Items: []domain.CartItem{line("a", 1, 10), line("b", 2, 5)}}}
	carts := &gatedCarts{fakeCarts: backend, removes: map[string]*gate{"b": newGate()}}
	cs := NewCartStore(carts, nil, "s1", zap.NewNop())
	require.NoError(t, cs.Load(ctx))

	removed := async(func() error { return cs.RemoveItem(ctx, "b") })
	<-carts.removes["b"].entered

	require.NoError(t, cs.Clear(ctx))
	carts.removes["b"].release <- errServer
	require.Error(t, <-removed)

	assert.True(t, cs.Cart().IsEmpty())
	assert.False(t, cs.State().IsLoading)
}

func TestCartStore_EmptyCartDeletesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySnapshotRepository()
	cs := NewCartStore(&fakeCarts{}, repo, "s1", zap.NewNop())

	require.NoError(t, cs.AddItem(ctx, service.AddCartItemRequest{ProductID: "p1", Quantity: 1}))
	_, err := repo.Load(ctx, CartKey("s1"))
	require.NoError(t, err)

	cs.Reset(ctx)

	_, err = repo.Load(ctx, CartKey("s1"))
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}
