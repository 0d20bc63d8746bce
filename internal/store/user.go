package store

import (
	"context"
	"time"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthData is the data held by the user store
type AuthData struct {
	User            *domain.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

type (
	authSucceeded struct {
		user  domain.User
		token string
	}
	userRefreshed struct{ user domain.User }
	signedOut     struct{}
	// tokenRevoked signs out only if token is still the held credential
	tokenRevoked struct{ token string }
)

// ReduceAuth is the pure update function of the user store
func ReduceAuth(state AuthData, action Action) AuthData {
	switch a := action.(type) {
	case authSucceeded:
		user := a.user
		return AuthData{User: &user, Token: a.token, IsAuthenticated: a.token != ""}
	case userRefreshed:
		if state.Token == "" {
			// A profile read that lands after sign-out must not bring the user back
			return state
		}
		user := a.user
		return AuthData{User: &user, Token: state.Token, IsAuthenticated: state.Token != ""}
	case signedOut:
		return AuthData{}
	case tokenRevoked:
		if a.token != "" && a.token == state.Token {
			return AuthData{}
		}
	}
	return state
}

// tokenExpired reports whether a JWT carries an exp claim in the past.
// The signature is not verified; the backend does that on every call.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque tokens carry no expiry we can read
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

func fromAuthSnapshot(d AuthData) AuthData {
	if d.Token == "" || tokenExpired(d.Token, time.Now()) {
		return AuthData{}
	}
	d.IsAuthenticated = true
	return d
}

func toAuthSnapshot(d AuthData) AuthData {
	return d
}

// UserStore mirrors the signed-in user and holds the bearer credential
type UserStore struct {
	store *Store[AuthData]
	auth  service.AuthService
}

// NewUserStore creates a user store persisting under UserKey(sessionID).
// repo may be nil for an unpersisted store.
func NewUserStore(auth service.AuthService, repo repository.SnapshotRepository, sessionID string, logger *zap.Logger) *UserStore {
	opts := []Option[AuthData]{WithLogger[AuthData](logger)}
	if repo != nil {
		opts = append(opts, WithPersister[AuthData](
			NewSnapshotPersister(repo, UserKey(sessionID), toAuthSnapshot, fromAuthSnapshot).
				DeleteWhen(func(d AuthData) bool { return d.Token == "" }),
		))
	}
	return &UserStore{
		store: New("user", AuthData{}, ReduceAuth, opts...),
		auth:  auth,
	}
}

// SetAuthService binds the auth service. The service's client usually reads
// its credential from this store, so it is wired after construction.
func (u *UserStore) SetAuthService(auth service.AuthService) {
	u.auth = auth
}

// Hydrate restores the persisted auth state; expired tokens are dropped
func (u *UserStore) Hydrate(ctx context.Context) (bool, error) {
	return u.store.Hydrate(ctx)
}

// State returns the current auth state
func (u *UserStore) State() State[AuthData] {
	return u.store.State()
}

// Subscribe registers fn for every auth transition
func (u *UserStore) Subscribe(fn func(State[AuthData])) func() {
	return u.store.Subscribe(fn)
}

// Token implements apiclient.TokenSource
func (u *UserStore) Token() string {
	return u.store.Data().Token
}

// User returns the cached user, or nil when signed out
func (u *UserStore) User() *domain.User {
	return u.store.Data().User
}

// IsAuthenticated reports whether a credential is held
func (u *UserStore) IsAuthenticated() bool {
	return u.store.Data().IsAuthenticated
}

// Role returns the cached user's role
func (u *UserStore) Role() (domain.Role, bool) {
	data := u.store.Data()
	if !data.IsAuthenticated || data.User == nil {
		return "", false
	}
	return data.User.Role, true
}

// Login authenticates and caches the user and token
func (u *UserStore) Login(ctx context.Context, req service.LoginRequest) (*domain.User, error) {
	result, err := Execute(ctx, u.store, Op[*service.AuthResult]{
		Call: func(ctx context.Context) (*service.AuthResult, error) {
			return u.auth.Login(ctx, req)
		},
		Success: func(r *service.AuthResult) Action {
			return authSucceeded{user: r.User, token: r.Token}
		},
	})
	if err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Register creates an account and signs it in
func (u *UserStore) Register(ctx context.Context, req service.RegisterRequest) (*domain.User, error) {
	result, err := Execute(ctx, u.store, Op[*service.AuthResult]{
		Call: func(ctx context.Context) (*service.AuthResult, error) {
			return u.auth.Register(ctx, req)
		},
		Success: func(r *service.AuthResult) Action {
			return authSucceeded{user: r.User, token: r.Token}
		},
	})
	if err != nil {
		return nil, err
	}
	return &result.User, nil
}

// Logout tells the backend and clears local state. Local state is cleared
// even when the backend call fails, and responses to requests started before
// the sign-out are discarded.
func (u *UserStore) Logout(ctx context.Context) error {
	_, err := Execute(ctx, u.store, Op[struct{}]{
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, u.auth.Logout(ctx)
		},
	})
	u.store.Supersede(ctx, signedOut{})
	return err
}

// Refresh reloads the user from the backend. A 401 signs the session out
// unless the credential changed while the call was in flight.
func (u *UserStore) Refresh(ctx context.Context) (*domain.User, error) {
	token := u.Token()
	return Execute(ctx, u.store, Op[*domain.User]{
		Call: u.auth.Me,
		Success: func(user *domain.User) Action {
			return userRefreshed{user: *user}
		},
		Rollback: func(err error) Action {
			if apiclient.IsUnauthorized(err) {
				return tokenRevoked{token: token}
			}
			return nil
		},
	})
}

// UpdateProfile saves the profile and caches the returned user
func (u *UserStore) UpdateProfile(ctx context.Context, req service.UpdateProfileRequest) (*domain.User, error) {
	return Execute(ctx, u.store, Op[*domain.User]{
		Call: func(ctx context.Context) (*domain.User, error) {
			return u.auth.UpdateProfile(ctx, req)
		},
		Success: func(user *domain.User) Action {
			return userRefreshed{user: *user}
		},
	})
}

// ChangePassword changes the password; cached state is unchanged
func (u *UserStore) ChangePassword(ctx context.Context, req service.ChangePasswordRequest) error {
	_, err := Execute(ctx, u.store, Op[struct{}]{
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, u.auth.ChangePassword(ctx, req)
		},
	})
	return err
}
