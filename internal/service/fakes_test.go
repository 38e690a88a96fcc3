package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/payment"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

var fixedNow = time.Date(2025, 5, 29, 12, 0, 0, 0, time.UTC) // a Thursday

func fixedClock() time.Time { return fixedNow }

var (
	buyer       = &model.Principal{ID: 1, Role: model.RoleBuyer}
	seller      = &model.Principal{ID: 2, Role: model.RoleSeller}
	otherSeller = &model.Principal{ID: 3, Role: model.RoleSeller}
	admin       = &model.Principal{ID: 4, Role: model.RoleAdmin}
)

type fakeGateway struct {
	calls  int
	last   payment.IntentRequest
	status string
	err    error
}

func (g *fakeGateway) CreateAndConfirm(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	status := g.status
	if status == "" {
		status = payment.StatusSucceeded
	}
	return &payment.Intent{
		ID:       "pi_test",
		Object:   "payment_intent",
		Amount:   req.AmountCents,
		Currency: req.Currency,
		Status:   status,
		Metadata: req.Metadata,
	}, nil
}

type published struct {
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, ev any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, event: ev})
	return p.err
}

type fakeProducts struct {
	rows   map[uint64]*model.Product
	nextID uint64
}

func newFakeProducts(ps ...model.Product) *fakeProducts {
	f := &fakeProducts{rows: map[uint64]*model.Product{}, nextID: 100}
	for i := range ps {
		p := ps[i]
		f.rows[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	f.nextID++
	p.ID = f.nextID
	p.Status = model.ProductActive
	p.CreatedAt, p.UpdatedAt = fixedNow, fixedNow
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id uint64) (*model.Product, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) ListBySeller(_ context.Context, sellerID uint64, status model.ProductStatus) ([]*model.Product, error) {
	out := []*model.Product{}
	for _, p := range f.rows {
		if p.SellerID == sellerID && (status == "" || p.Status == status) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) ListActive(context.Context, int, int) ([]*model.Product, error) {
	out := []*model.Product{}
	for _, p := range f.rows {
		if p.Status == model.ProductActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) Trash(_ context.Context, id uint64, at time.Time) error {
	p, ok := f.rows[id]
	if !ok || p.Status != model.ProductActive {
		return repository.ErrProductNotActive
	}
	p.Status, p.TrashedAt = model.ProductTrashed, &at
	return nil
}

func (f *fakeProducts) Restore(_ context.Context, id uint64) error {
	p, ok := f.rows[id]
	if !ok || p.Status != model.ProductTrashed {
		return repository.ErrProductNotTrashed
	}
	p.Status, p.TrashedAt = model.ProductActive, nil
	return nil
}

func (f *fakeProducts) Purge(_ context.Context, id uint64) error {
	p, ok := f.rows[id]
	if !ok || p.Status != model.ProductTrashed {
		return repository.ErrProductNotTrashed
	}
	delete(f.rows, id)
	return nil
}

type fakeOrders struct {
	rows      map[uint64]*model.Order
	nextID    uint64
	createErr error
}

func newFakeOrders(os ...model.Order) *fakeOrders {
	f := &fakeOrders{rows: map[uint64]*model.Order{}, nextID: 500}
	for i := range os {
		o := os[i]
		f.rows[o.ID] = &o
	}
	return f
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = fixedNow
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uint64) (*model.Order, error) {
	o, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByBuyer(_ context.Context, buyerID uint64) ([]*model.Order, error) {
	out := []*model.Order{}
	for _, o := range f.rows {
		if o.BuyerID == buyerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, id uint64, intentID string, at time.Time) error {
	o, ok := f.rows[id]
	if !ok || o.Status != model.OrderPending {
		return repository.ErrOrderNotPending
	}
	o.Status, o.PaymentIntentID, o.PaidAt = model.OrderPaid, &intentID, &at
	return nil
}

// fakeUsers keeps users by id and enforces the reset-token rules of the
// real conditional update.
type fakeUsers struct {
	rows   map[uint64]*model.User
	nextID uint64
}

func newFakeUsers(us ...model.User) *fakeUsers {
	f := &fakeUsers{rows: map[uint64]*model.User{}, nextID: 10}
	for i := range us {
		u := us[i]
		f.rows[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.rows[f.nextID] = &model.User{ID: f.nextID, Name: name, Email: email, PasswordHash: hash, Role: role}
	return f.nextID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	u, ok := f.rows[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetTokenHash, u.ResetTokenExpiresAt = &tokenHash, &expiresAt
	return nil
}

func (f *fakeUsers) ResetPassword(_ context.Context, tokenHash, passwordHash string, now time.Time) (uint64, error) {
	for _, u := range f.rows {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			u.PasswordHash = passwordHash
			u.ResetTokenHash, u.ResetTokenExpiresAt = nil, nil
			return u.ID, nil
		}
	}
	return 0, repository.ErrInvalidResetToken
}

type fakeTokens struct {
	rows map[string]*tokenRow
}

type tokenRow struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]*tokenRow{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	f.rows[hash] = &tokenRow{userID: userID, exp: exp}
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string, now time.Time) (uint64, error) {
	r, ok := f.rows[hash]
	if !ok || r.revoked || !r.exp.After(now) {
		return 0, repository.ErrNotFound
	}
	return r.userID, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	r, ok := f.rows[hash]
	if !ok || r.revoked {
		return repository.ErrNotFound
	}
	r.revoked = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, r := range f.rows {
		if r.userID == userID {
			r.revoked = true
		}
	}
	return nil
}

type fakeRevenue struct {
	seller    uint64
	from, to  time.Time
	g         model.Granularity
	buckets   []model.PeriodTotal
	perSeller []model.SellerRevenue
}

func (f *fakeRevenue) SellerTotal(_ context.Context, sellerID uint64) (int64, error) {
	f.seller = sellerID
	return 12345, nil
}

func (f *fakeRevenue) PlatformTotal(context.Context) (int64, error) { return 99900, nil }

func (f *fakeRevenue) Buckets(_ context.Context, g model.Granularity, from, to time.Time) ([]model.PeriodTotal, error) {
	f.g, f.from, f.to = g, from, to
	return f.buckets, nil
}

func (f *fakeRevenue) PerSeller(context.Context) ([]model.SellerRevenue, error) {
	return f.perSeller, nil
}
