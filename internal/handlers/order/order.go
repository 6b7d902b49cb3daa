package order

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lokali_back_end/internal/cache"
	"lokali_back_end/internal/models"
	"lokali_back_end/internal/store"
	"lokali_back_end/internal/utils"
)

// Handler regroupe les endpoints commandes. Les stores sont injectés pour
// pouvoir tester les handlers avec des stubs en mémoire.
type Handler struct {
	Orders store.OrderStore
	Users  store.UserStore
}

func NewHandler(orders store.OrderStore, users store.UserStore) *Handler {
	return &Handler{Orders: orders, Users: users}
}

type orderItemInput struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"qty"`
}

type createOrderInput struct {
	Items      []orderItemInput `json:"orderItems"`
	SellerID   string           `json:"sellerId"`
	PhoneNo    string           `json:"phoneNo"`
	TotalPrice float64          `json:"totalPrice"`
}

// CreateOrder enregistre une commande entre l'acheteur connecté et un vendeur
func (h *Handler) CreateOrder(c *gin.Context) {
	buyerID := c.GetString("user_id")
	if buyerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input createOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corps de requête invalide"})
		return
	}

	if len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun article fourni"})
		return
	}
	if input.SellerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vendeur manquant"})
		return
	}
	if input.PhoneNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Numéro de téléphone requis"})
		return
	}
	if input.TotalPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant total invalide"})
		return
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order := &models.Order{
		BuyerID:     buyerID,
		SellerID:    input.SellerID,
		Items:       items,
		TotalPrice:  input.TotalPrice,
		PhoneNumber: input.PhoneNo,
	}

	if err := h.Orders.Create(c.Request.Context(), order); err != nil {
		log.Printf("❌ Erreur création commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	log.Printf("✅ Commande %s créée (acheteur %s → vendeur %s)", order.ID, order.BuyerID, order.SellerID)

	cache.PublishOrderEvent(order.ID, "created", order.BuyerID, order.SellerID)

	go h.notifyOrderCreated(*order)

	c.JSON(http.StatusCreated, order)
}

// GetOrderByID renvoie une commande à ses seuls participants,
// avec buyer/seller résolus
func (h *Handler) GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	order := cache.GetCachedOrder(orderID)
	if order == nil {
		var err error
		order, err = h.Orders.GetByID(c.Request.Context(), orderID)
		if err == store.ErrOrderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		if err != nil {
			log.Printf("❌ Erreur lecture commande %s: %v", orderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
			return
		}
	}

	if userID != order.BuyerID && userID != order.SellerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	h.resolveParticipants(c, order)
	cache.CacheOrder(order)

	c.JSON(http.StatusOK, order)
}

// GetBuyerOrders liste les commandes de l'acheteur connecté
func (h *Handler) GetBuyerOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	orders, err := h.Orders.ListByBuyer(c.Request.Context(), userID)
	if err != nil {
		log.Printf("❌ Erreur liste commandes acheteur %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	// Côté acheteur on résout le vendeur de chaque commande
	for i := range orders {
		if seller, err := h.Users.GetByID(c.Request.Context(), orders[i].SellerID); err == nil {
			orders[i].Seller = seller
		}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetSellerOrders liste les commandes du vendeur connecté
func (h *Handler) GetSellerOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	orders, err := h.Orders.ListBySeller(c.Request.Context(), userID)
	if err != nil {
		log.Printf("❌ Erreur liste commandes vendeur %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	for i := range orders {
		if buyer, err := h.Users.GetByID(c.Request.Context(), orders[i].BuyerID); err == nil {
			orders[i].Buyer = buyer
		}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdatePhoneNumber change le numéro de contact de livraison.
// Réservé à l'acheteur de la commande.
func (h *Handler) UpdatePhoneNumber(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	var input struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Numéro de téléphone requis"})
		return
	}

	order, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if err == store.ErrOrderNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	if userID != order.BuyerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Non autorisé"})
		return
	}

	if err := h.Orders.UpdatePhoneNumber(c.Request.Context(), orderID, input.PhoneNumber); err != nil {
		if err == store.ErrOrderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		log.Printf("❌ Erreur mise à jour téléphone commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour"})
		return
	}

	cache.InvalidateOrderCache(orderID)

	c.JSON(http.StatusOK, gin.H{"message": "Numéro de téléphone mis à jour"})
}

// resolveParticipants complète buyer/seller depuis le store users.
// Une résolution manquée n'empêche pas de renvoyer la commande.
func (h *Handler) resolveParticipants(c *gin.Context, order *models.Order) {
	if buyer, err := h.Users.GetByID(c.Request.Context(), order.BuyerID); err == nil {
		order.Buyer = buyer
	}
	if seller, err := h.Users.GetByID(c.Request.Context(), order.SellerID); err == nil {
		order.Seller = seller
	}
}

func (h *Handler) notifyOrderCreated(order models.Order) {
	buyer, err := h.Users.GetByID(context.Background(), order.BuyerID)
	if err != nil || buyer.Email == "" {
		return
	}
	if err := utils.SendOrderCreatedEmail(order, buyer.Email); err != nil {
		log.Printf("❌ Erreur envoi email création commande %s: %v", order.ID, err)
	}
}
