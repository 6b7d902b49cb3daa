package models

import "time"

// OrderItem est un snapshot figé à la création de la commande (UDT order_item
// côté ScyllaDB). Le prix et le nom ne bougent plus même si le produit change.
type OrderItem struct {
	ProductID string  `cql:"product_id" json:"product"`
	Name      string  `cql:"name" json:"name"`
	Image     string  `cql:"image" json:"image"`
	Price     float64 `cql:"price" json:"price"`
	Quantity  int     `cql:"quantity" json:"qty"`
}

// Order représente une commande entre un acheteur et un vendeur.
//
// HashedOTP ne contient JAMAIS le code en clair : uniquement le SHA-256 du
// code à 6 chiffres, présent seulement entre la génération et la vérification
// réussie. Le tag json:"-" garantit qu'il ne sort jamais de l'API.
type Order struct {
	ID          string      `json:"id"`
	BuyerID     string      `json:"buyerId"`
	SellerID    string      `json:"sellerId"`
	Items       []OrderItem `json:"orderItems"`
	TotalPrice  float64     `json:"totalPrice"`
	PhoneNumber string      `json:"phoneNo"`
	IsDelivered bool        `json:"isDelivered"`
	DeliveredAt *time.Time  `json:"deliveredAt,omitempty"`
	HashedOTP   string      `json:"-"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Résolus à la lecture via le store users (jamais persistés ici)
	Buyer  *User `json:"buyer,omitempty"`
	Seller *User `json:"seller,omitempty"`
}
