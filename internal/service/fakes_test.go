package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/notify"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	users map[string]*models.User // ключ - email
	roles map[int64]map[string]bool
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*models.User),
		roles: make(map[int64]map[string]bool),
	}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	return f.roles[userID][role], nil
}

func (f *fakeUserRepo) GrantRole(ctx context.Context, tx *sql.Tx, userID int64, role string) error {
	if f.roles[userID] == nil {
		f.roles[userID] = make(map[string]bool)
	}
	f.roles[userID][role] = true
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
	released map[uuid.UUID]int
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{
		products: make(map[uuid.UUID]*models.Product),
		released: make(map[uuid.UUID]int),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) active() (*models.Product, error) {
	for _, p := range f.products {
		if p.IsActive {
			return p, nil
		}
	}
	return nil, storage.ErrProductNotFound
}

func (f *fakeProductRepo) GetActiveProduct(ctx context.Context, tx *sql.Tx) (*models.Product, error) {
	return f.active()
}

func (f *fakeProductRepo) GetStorefrontProduct(ctx context.Context) (*models.Product, error) {
	return f.active()
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return storage.ErrProductNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) ReserveStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) error {
	p, ok := f.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	if p.StockQuantity < quantity {
		return storage.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	return nil
}

func (f *fakeProductRepo) ReleaseStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) error {
	p, ok := f.products[id]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.StockQuantity += quantity
	f.released[id] += quantity
	return nil
}

// fakeOrderRepo повторяет условные UPDATE настоящего репозитория
type fakeOrderRepo struct {
	orders map[uuid.UUID]*models.Order
	items  map[uuid.UUID][]models.OrderItem
	writes int
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*models.Order),
		items:  make(map[uuid.UUID][]models.OrderItem),
	}
}

func (f *fakeOrderRepo) put(order *models.Order) *models.Order {
	f.orders[order.ID] = order
	return order
}

func snapshot(o *models.Order) *models.Order {
	c := *o
	c.Items = nil
	return &c
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	if order.IdempotencyKey != "" {
		for _, o := range f.orders {
			if o.IdempotencyKey == order.IdempotencyKey {
				return storage.ErrDuplicateIdempotencyKey
			}
		}
	}
	f.writes++
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = snapshot(order)
	return nil
}

func (f *fakeOrderRepo) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	f.writes++
	f.items[item.OrderID] = append(f.items[item.OrderID], *item)
	return nil
}

func (f *fakeOrderRepo) GetOrderByIdempotencyKey(ctx context.Context, tx *sql.Tx, key string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.IdempotencyKey == key {
			return snapshot(o), nil
		}
	}
	return nil, storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return snapshot(o), nil
}

func (f *fakeOrderRepo) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.PaymentStatus != nil && o.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		out = append(out, snapshot(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrderRepo) ConfirmPayment(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.PaymentStatus != models.PaymentStatusPending || o.Status != models.OrderStatusPending {
		return nil, storage.ErrOrderStateConflict
	}
	f.writes++
	o.PaymentStatus = models.PaymentStatusPaid
	o.Status = models.OrderStatusConfirmed
	return snapshot(o), nil
}

func (f *fakeOrderRepo) MarkShipped(ctx context.Context, id uuid.UUID, company, tracking, notes string, shippedAt time.Time) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.PaymentStatus != models.PaymentStatusPaid || o.Status != models.OrderStatusConfirmed {
		return nil, storage.ErrOrderStateConflict
	}
	f.writes++
	o.Status = models.OrderStatusShipped
	o.ShippingCompany = company
	o.TrackingNumber = tracking
	o.SellerNotes = notes
	o.ShippedAt = &shippedAt
	return snapshot(o), nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return nil, storage.ErrOrderStateConflict
	}
	f.writes++
	o.Status = to
	return snapshot(o), nil
}

func (f *fakeOrderRepo) MarkPaymentFailed(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.PaymentStatus != models.PaymentStatusPending {
		return nil, storage.ErrOrderStateConflict
	}
	f.writes++
	o.PaymentStatus = models.PaymentStatusFailed
	return snapshot(o), nil
}

type fakeAdminRequestRepo struct {
	requests map[uuid.UUID]*models.AdminRequest
}

var _ storage.AdminRequestStorage = (*fakeAdminRequestRepo)(nil)

func newFakeAdminRequestRepo() *fakeAdminRequestRepo {
	return &fakeAdminRequestRepo{requests: make(map[uuid.UUID]*models.AdminRequest)}
}

func (f *fakeAdminRequestRepo) CreateRequest(ctx context.Context, tx *sql.Tx, req *models.AdminRequest) error {
	f.requests[req.ID] = req
	return nil
}

func (f *fakeAdminRequestRepo) GetPendingByUser(ctx context.Context, tx *sql.Tx, userID int64) (*models.AdminRequest, error) {
	for _, r := range f.requests {
		if r.UserID == userID && r.Status == models.AdminRequestPending {
			return r, nil
		}
	}
	return nil, storage.ErrAdminRequestNotFound
}

func (f *fakeAdminRequestRepo) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.AdminRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, storage.ErrAdminRequestNotFound
	}
	return r, nil
}

func (f *fakeAdminRequestRepo) ListRequests(ctx context.Context, status *models.AdminRequestStatus) ([]*models.AdminRequest, error) {
	var out []*models.AdminRequest
	for _, r := range f.requests {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAdminRequestRepo) Review(ctx context.Context, tx *sql.Tx, id uuid.UUID, status models.AdminRequestStatus, reviewerID int64, notes string, at time.Time) (*models.AdminRequest, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != models.AdminRequestPending {
		return nil, storage.ErrAdminRequestReviewed
	}
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &at
	r.Notes = notes
	return r, nil
}

// fakeNotifier запоминает вызовы; shipErr имитирует ошибку почты
type fakeNotifier struct {
	mu        sync.Mutex
	created   []*models.Order
	confirmed []*models.Order
	shipped   []*models.Order
	shipErr   error
	shipHang  bool
}

func (n *fakeNotifier) OrderCreated(order *models.Order) *notify.Task {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, order)
	return notify.CompletedTask(nil)
}

func (n *fakeNotifier) PaymentConfirmed(order *models.Order) *notify.Task {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, order)
	if order.CustomerEmail == "" {
		return notify.SkippedTask()
	}
	return notify.CompletedTask(nil)
}

func (n *fakeNotifier) ShipmentNotified(order *models.Order) *notify.Task {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shipped = append(n.shipped, order)
	if order.CustomerEmail == "" {
		return notify.SkippedTask()
	}
	if n.shipHang {
		task, _ := notify.PendingTask()
		return task
	}
	return notify.CompletedTask(n.shipErr)
}

type fakeGateway struct {
	requests []payment.SessionRequest
	err      error
}

func (g *fakeGateway) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Session{ID: "pi_1", URL: "https://pay.ziina.com/payment_intent/pi_1"}, nil
}

func sevenGreen() *models.Product {
	return &models.Product{
		ID:            uuid.MustParse("6f1c2a4e-8d3b-4c1a-9b7e-5a2d9c0e1f73"),
		Name:          "Seven Green",
		Price:         71,
		StockQuantity: 500,
		IsActive:      true,
	}
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		CustomerName:  "Sara",
		CustomerPhone: "+971500000000",
		CustomerEmail: "sara@example.com",
		Country:       "AE",
		City:          "Dubai",
		Address:       "Marina 1",
		TotalAmount:   142,
		Currency:      "AED",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}
}
