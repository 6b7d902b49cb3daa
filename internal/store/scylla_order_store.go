package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"lokali_back_end/internal/database"
	"lokali_back_end/internal/models"
)

// Requêtes centralisées du keyspace orders. On repasse par la session à
// chaque appel : un *gocql.Query partagé + Bind n'est pas sûr entre
// goroutines.
const (
	cqlInsertOrder = `INSERT INTO orders (order_id, buyer_id, seller_id, items, total_price, phone_number, is_delivered, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, false, ?, ?)`
	cqlInsertOrderByBuyer  = `INSERT INTO orders_by_buyer (buyer_id, created_at, order_id) VALUES (?, ?, ?)`
	cqlInsertOrderBySeller = `INSERT INTO orders_by_seller (seller_id, created_at, order_id) VALUES (?, ?, ?)`
	cqlGetOrder            = `SELECT buyer_id, seller_id, items, total_price, phone_number, is_delivered, delivered_at, hashed_otp, created_at, updated_at
		FROM orders WHERE order_id = ?`
	cqlOrdersOfBuyer  = `SELECT order_id FROM orders_by_buyer WHERE buyer_id = ?`
	cqlOrdersOfSeller = `SELECT order_id FROM orders_by_seller WHERE seller_id = ?`
	cqlSetHash        = `UPDATE orders SET hashed_otp = ?, updated_at = ? WHERE order_id = ? IF is_delivered = false`
	cqlConfirm        = `UPDATE orders SET is_delivered = true, delivered_at = ?, hashed_otp = null, updated_at = ?
		WHERE order_id = ? IF hashed_otp = ? AND is_delivered = false`
	cqlUpdatePhone = `UPDATE orders SET phone_number = ?, updated_at = ? WHERE order_id = ? IF EXISTS`
)

// ScyllaOrderStore implémente OrderStore sur le keyspace orders.
type ScyllaOrderStore struct {
	session *gocql.Session
}

func NewScyllaOrderStore() (*ScyllaOrderStore, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, fmt.Errorf("store orders: %w", err)
	}
	return &ScyllaOrderStore{session: session}, nil
}

func (s *ScyllaOrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	orderID, err := gocql.ParseUUID(order.ID)
	if err != nil {
		return fmt.Errorf("order_id invalide: %w", err)
	}
	buyerID, err := gocql.ParseUUID(order.BuyerID)
	if err != nil {
		return fmt.Errorf("buyer_id invalide: %w", err)
	}
	sellerID, err := gocql.ParseUUID(order.SellerID)
	if err != nil {
		return fmt.Errorf("seller_id invalide: %w", err)
	}

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.IsDelivered = false

	// La ligne principale et les deux tables de liste partent dans le même
	// batch loggé pour ne jamais avoir une commande invisible d'un côté.
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(cqlInsertOrder, orderID, buyerID, sellerID, order.Items, order.TotalPrice, order.PhoneNumber, now, now)
	batch.Query(cqlInsertOrderByBuyer, buyerID, now, orderID)
	batch.Query(cqlInsertOrderBySeller, sellerID, now, orderID)

	if err := s.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("insertion commande: %w", err)
	}
	return nil
}

func (s *ScyllaOrderStore) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	oid, err := gocql.ParseUUID(orderID)
	if err != nil {
		// Un identifiant non parsable équivaut à une commande absente
		return nil, ErrOrderNotFound
	}

	var (
		buyerID     gocql.UUID
		sellerID    gocql.UUID
		items       []models.OrderItem
		totalPrice  float64
		phoneNumber string
		hashedOTP   string
		isDelivered bool
		deliveredAt time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)

	err = s.session.Query(cqlGetOrder, oid).WithContext(ctx).Scan(
		&buyerID, &sellerID, &items, &totalPrice, &phoneNumber,
		&isDelivered, &deliveredAt, &hashedOTP, &createdAt, &updatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande %s: %w", orderID, err)
	}

	order := &models.Order{
		ID:          oid.String(),
		BuyerID:     buyerID.String(),
		SellerID:    sellerID.String(),
		Items:       items,
		TotalPrice:  totalPrice,
		PhoneNumber: phoneNumber,
		IsDelivered: isDelivered,
		HashedOTP:   hashedOTP,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if !deliveredAt.IsZero() {
		t := deliveredAt
		order.DeliveredAt = &t
	}
	return order, nil
}

func (s *ScyllaOrderStore) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return s.listFrom(ctx, cqlOrdersOfBuyer, buyerID)
}

func (s *ScyllaOrderStore) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	return s.listFrom(ctx, cqlOrdersOfSeller, sellerID)
}

func (s *ScyllaOrderStore) listFrom(ctx context.Context, stmt, userID string) ([]models.Order, error) {
	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		return []models.Order{}, nil
	}

	iter := s.session.Query(stmt, uid).WithContext(ctx).Iter()

	var ids []string
	var oid gocql.UUID
	for iter.Scan(&oid) {
		ids = append(ids, oid.String())
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste commandes: %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.GetByID(ctx, id)
		if err == ErrOrderNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *ScyllaOrderStore) SetVerificationHash(ctx context.Context, orderID, hash string) error {
	oid, err := gocql.ParseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}

	prev := make(map[string]interface{})
	applied, err := s.session.Query(cqlSetHash, hash, time.Now().UTC(), oid).
		WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return fmt.Errorf("pose du hash: %w", err)
	}
	if applied {
		return nil
	}

	// CAS refusé : soit la ligne n'existe pas, soit elle est déjà livrée
	if delivered, ok := prev["is_delivered"].(bool); ok && delivered {
		return ErrAlreadyDelivered
	}
	return ErrOrderNotFound
}

func (s *ScyllaOrderStore) ConfirmDelivery(ctx context.Context, orderID, expectedHash string, deliveredAt time.Time) error {
	oid, err := gocql.ParseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}

	prev := make(map[string]interface{})
	applied, err := s.session.Query(cqlConfirm, deliveredAt, deliveredAt, oid, expectedHash).
		WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return fmt.Errorf("confirmation livraison: %w", err)
	}
	if applied {
		return nil
	}

	if _, ok := prev["is_delivered"]; !ok {
		return ErrOrderNotFound
	}
	// Hash différent, déjà livrée, ou aucun code émis : même réponse
	return ErrCodeMismatch
}

func (s *ScyllaOrderStore) UpdatePhoneNumber(ctx context.Context, orderID, phone string) error {
	oid, err := gocql.ParseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}

	prev := make(map[string]interface{})
	applied, err := s.session.Query(cqlUpdatePhone, phone, time.Now().UTC(), oid).
		WithContext(ctx).MapScanCAS(prev)
	if err != nil {
		return fmt.Errorf("mise à jour téléphone: %w", err)
	}
	if !applied {
		return ErrOrderNotFound
	}
	return nil
}
