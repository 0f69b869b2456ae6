package impl

import (
	"context"
	"sync"
	"time"

	"levelup/internal/domain/entity"
	domainerrors "levelup/internal/domain/errors"
	"levelup/internal/domain/repository"

	"github.com/google/uuid"
)

// fakeStore is an in-memory backing store shared by the fake repositories.
// Transactions executed through fakeTxManager are serialized and rolled back
// on error via a snapshot, mirroring the row-lock and atomicity guarantees the
// engines rely on.
type fakeStore struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	users       map[uuid.UUID]*entity.User
	products    map[uuid.UUID]*entity.Product
	orders      map[uuid.UUID]*entity.Order
	redemptions map[uuid.UUID]*entity.Redemption
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*entity.User),
		products:    make(map[uuid.UUID]*entity.Product),
		orders:      make(map[uuid.UUID]*entity.Order),
		redemptions: make(map[uuid.UUID]*entity.Redemption),
	}
}

func (s *fakeStore) addUser(user *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = cloneUser(user)

	return user
}

func (s *fakeStore) addProduct(product *entity.Product) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = cloneProduct(product)

	return product
}

func (s *fakeStore) userByID(id uuid.UUID) *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.users[id]; ok {
		return cloneUser(user)
	}

	return nil
}

func (s *fakeStore) productByID(id uuid.UUID) *entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if product, ok := s.products[id]; ok {
		return cloneProduct(product)
	}

	return nil
}

func (s *fakeStore) snapshot() (map[uuid.UUID]*entity.User, map[uuid.UUID]*entity.Product, map[uuid.UUID]*entity.Order, map[uuid.UUID]*entity.Redemption) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[uuid.UUID]*entity.User, len(s.users))
	for id, user := range s.users {
		users[id] = cloneUser(user)
	}
	products := make(map[uuid.UUID]*entity.Product, len(s.products))
	for id, product := range s.products {
		products[id] = cloneProduct(product)
	}
	orders := make(map[uuid.UUID]*entity.Order, len(s.orders))
	for id, order := range s.orders {
		orders[id] = cloneOrder(order)
	}
	redemptions := make(map[uuid.UUID]*entity.Redemption, len(s.redemptions))
	for id, redemption := range s.redemptions {
		redemptions[id] = cloneRedemption(redemption)
	}

	return users, products, orders, redemptions
}

func (s *fakeStore) restore(users map[uuid.UUID]*entity.User, products map[uuid.UUID]*entity.Product, orders map[uuid.UUID]*entity.Order, redemptions map[uuid.UUID]*entity.Redemption) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = users
	s.products = products
	s.orders = orders
	s.redemptions = redemptions
}

func cloneUser(user *entity.User) *entity.User {
	clone := *user

	return &clone
}

func cloneProduct(product *entity.Product) *entity.Product {
	clone := *product

	return &clone
}

func cloneOrder(order *entity.Order) *entity.Order {
	clone := *order
	clone.Lines = make([]*entity.OrderLine, len(order.Lines))
	for i, line := range order.Lines {
		lineClone := *line
		clone.Lines[i] = &lineClone
	}
	if order.AdminID != nil {
		adminID := *order.AdminID
		clone.AdminID = &adminID
	}

	return &clone
}

func cloneRedemption(redemption *entity.Redemption) *entity.Redemption {
	clone := *redemption

	return &clone
}

// --- transaction manager ---

// fakeTxManager serializes transactions and restores a snapshot when the
// callback fails, giving the engines real all-or-nothing semantics in tests.
type fakeTxManager struct {
	store *fakeStore
}

func newFakeTxManager(store *fakeStore) repository.TransactionManager {
	return &fakeTxManager{store: store}
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	users, products, orders, redemptions := m.store.snapshot()

	if err := fn(&fakeFactory{store: m.store}); err != nil {
		m.store.restore(users, products, orders, redemptions)

		return err
	}

	return nil
}

// fakeFactory hands out repositories bound to the shared store.
type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) UserRepo() repository.UserRepository {
	return &fakeUserRepo{store: f.store}
}

func (f *fakeFactory) ProductRepo() repository.ProductRepository {
	return &fakeProductRepo{store: f.store}
}

func (f *fakeFactory) OrderRepo() repository.OrderRepository {
	return &fakeOrderRepo{store: f.store}
}

func (f *fakeFactory) RedemptionRepo() repository.RedemptionRepository {
	return &fakeRedemptionRepo{store: f.store}
}

// --- user repository ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if user := r.store.userByID(id); user != nil {
		return user, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByReferralCode(_ context.Context, code string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.ReferralCode == code {
			return cloneUser(user), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Mirror the unique indexes on the users table.
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return domainerrors.ErrEmailAlreadyRegistered
		}
		if existing.ReferralCode == user.ReferralCode {
			return repository.ErrDuplicateReferralCode
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.store.users[user.ID] = cloneUser(user)

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.store.users[user.ID] = cloneUser(user)

	return nil
}

// --- product repository ---

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	if product := r.store.productByID(id); product != nil {
		return product, nil
	}

	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, product := range r.store.products {
		if product.Code == code {
			return cloneProduct(product), nil
		}
	}

	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	r.store.products[product.ID] = cloneProduct(product)

	return nil
}

// --- order repository ---

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.orders {
		if existing.Number == order.Number {
			return repository.ErrDuplicateOrderNumber
		}
	}

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for _, line := range order.Lines {
		line.ID = uuid.New()
		line.OrderID = order.ID
	}
	r.store.orders[order.ID] = cloneOrder(order)

	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if order, ok := r.store.orders[id]; ok {
		return cloneOrder(order), nil
	}

	return nil, repository.ErrOrderNotFound
}

func (r *fakeOrderRepo) FindAllByUser(_ context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var orders []*entity.Order
	for _, order := range r.store.orders {
		if order.UserID == userID {
			orders = append(orders, cloneOrder(order))
		}
	}

	return orders, nil
}

func (r *fakeOrderRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, order := range r.store.orders {
		if order.Number == number {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *entity.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[order.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	r.store.orders[order.ID] = cloneOrder(order)

	return nil
}

// --- redemption repository ---

type fakeRedemptionRepo struct {
	store *fakeStore
}

func (r *fakeRedemptionRepo) Create(_ context.Context, redemption *entity.Redemption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	redemption.ID = uuid.New()
	redemption.CreatedAt = time.Now()
	redemption.UpdatedAt = redemption.CreatedAt
	r.store.redemptions[redemption.ID] = cloneRedemption(redemption)

	return nil
}

func (r *fakeRedemptionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Redemption, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if redemption, ok := r.store.redemptions[id]; ok {
		return cloneRedemption(redemption), nil
	}

	return nil, repository.ErrRedemptionNotFound
}

func (r *fakeRedemptionRepo) FindAllByUser(_ context.Context, userID uuid.UUID) ([]*entity.Redemption, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var redemptions []*entity.Redemption
	for _, redemption := range r.store.redemptions {
		if redemption.UserID == userID {
			redemptions = append(redemptions, cloneRedemption(redemption))
		}
	}

	return redemptions, nil
}

func (r *fakeRedemptionRepo) Update(_ context.Context, redemption *entity.Redemption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.redemptions[redemption.ID]; !ok {
		return repository.ErrRedemptionNotFound
	}
	r.store.redemptions[redemption.ID] = cloneRedemption(redemption)

	return nil
}
