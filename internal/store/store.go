package store

import (
	"context"
	"errors"
	"time"

	"lokali_back_end/internal/models"
)

var (
	ErrOrderNotFound    = errors.New("commande introuvable")
	ErrUserNotFound     = errors.New("utilisateur introuvable")
	ErrAlreadyDelivered = errors.New("commande déjà livrée")
	// ErrCodeMismatch couvre aussi bien "mauvais code" que "aucun code émis" :
	// on ne donne pas d'oracle sur l'existence d'un challenge en cours.
	ErrCodeMismatch = errors.New("code invalide")
)

// OrderStore est la frontière vers le keyspace orders. Les handlers ne
// parlent qu'à cette interface (implémentation ScyllaDB en prod, stubs en
// mémoire dans les tests).
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error)

	// SetVerificationHash pose (ou remplace) le hash du code de livraison.
	// Échoue avec ErrAlreadyDelivered si la commande est déjà livrée : une
	// fois livré, plus aucun challenge ne peut être émis.
	SetVerificationHash(ctx context.Context, orderID, hash string) error

	// ConfirmDelivery passe la commande à l'état livré si et seulement si le
	// hash stocké vaut exactement expectedHash — comparaison et transition
	// atomiques côté store (LWT), pour qu'un verify en vol ne puisse pas
	// accepter un code périmé par un generate concurrent. Le hash est effacé
	// dans la même écriture : un code ne sert qu'une fois.
	ConfirmDelivery(ctx context.Context, orderID, expectedHash string, deliveredAt time.Time) error

	UpdatePhoneNumber(ctx context.Context, orderID, phone string) error
}

// UserStore résout les identités buyer/seller. Alimenté par le service
// d'identité, lecture seule ici.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}
