package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lokali_back_end/internal/models"
	"lokali_back_end/internal/store"
)

//
// ---------- STUBS EN MÉMOIRE ----------
//

// stubOrderStore implémente store.OrderStore en mémoire, avec les mêmes
// sémantiques conditionnelles que l'implémentation ScyllaDB (LWT).
type stubOrderStore struct {
	orders map[string]*models.Order
}

func newStubOrderStore(orders ...*models.Order) *stubOrderStore {
	s := &stubOrderStore{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		cp := *o
		s.orders[o.ID] = &cp
	}
	return s
}

func (s *stubOrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.IsDelivered = false

	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *stubOrderStore) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderStore) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			orders = append(orders, *o)
		}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *stubOrderStore) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range s.orders {
		if o.SellerID == sellerID {
			orders = append(orders, *o)
		}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *stubOrderStore) SetVerificationHash(ctx context.Context, orderID, hash string) error {
	o, ok := s.orders[orderID]
	if !ok {
		return store.ErrOrderNotFound
	}
	if o.IsDelivered {
		return store.ErrAlreadyDelivered
	}
	o.HashedOTP = hash
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *stubOrderStore) ConfirmDelivery(ctx context.Context, orderID, expectedHash string, deliveredAt time.Time) error {
	o, ok := s.orders[orderID]
	if !ok {
		return store.ErrOrderNotFound
	}
	if o.IsDelivered || o.HashedOTP == "" || o.HashedOTP != expectedHash {
		return store.ErrCodeMismatch
	}
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	o.HashedOTP = ""
	o.UpdatedAt = deliveredAt
	return nil
}

func (s *stubOrderStore) UpdatePhoneNumber(ctx context.Context, orderID, phone string) error {
	o, ok := s.orders[orderID]
	if !ok {
		return store.ErrOrderNotFound
	}
	o.PhoneNumber = phone
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// stubUserStore implémente store.UserStore en mémoire
type stubUserStore struct {
	users map[string]*models.User
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

//
// ---------- FIXTURES & HELPERS ----------
//

const (
	buyerID  = "11111111-1111-1111-1111-111111111111"
	sellerID = "22222222-2222-2222-2222-222222222222"
	otherID  = "33333333-3333-3333-3333-333333333333"
	orderID  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:       orderID,
		BuyerID:  buyerID,
		SellerID: sellerID,
		Items: []models.OrderItem{
			{ProductID: "44444444-4444-4444-4444-444444444444", Name: "Lampe vintage", Image: "lampe.jpg", Price: 29.99, Quantity: 2},
		},
		TotalPrice:  59.98,
		PhoneNumber: "+33612345678",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func testUsers() *stubUserStore {
	return newStubUserStore(
		&models.User{ID: buyerID, Email: "alice@lokali.fr", Name: "Alice", Role: "buyer"},
		&models.User{ID: sellerID, Email: "bruno@lokali.fr", Name: "Bruno", Role: "seller"},
	)
}

// newTestRouter monte les routes commandes avec une identité simulée à la
// place du middleware JWT.
func newTestRouter(h *Handler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
	})

	r.POST("/api/orders", h.CreateOrder)
	r.GET("/api/orders/buyer", h.GetBuyerOrders)
	r.GET("/api/orders/seller", h.GetSellerOrders)
	r.GET("/api/orders/:id", h.GetOrderByID)
	r.PUT("/api/orders/:id/phone", h.UpdatePhoneNumber)
	r.POST("/api/orders/:id/generate-otp", h.GenerateOTP)
	r.POST("/api/orders/verify-otp", h.VerifyOTP)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encodage body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("décodage réponse: %v", err)
	}
	return body
}
