package order

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lokali_back_end/internal/cache"
	"lokali_back_end/internal/models"
	"lokali_back_end/internal/otp"
	"lokali_back_end/internal/store"
	"lokali_back_end/internal/utils"
)

// GenerateOTP émet un code de livraison à 6 chiffres pour l'acheteur.
// Seul le SHA-256 du code part dans le store ; le clair n'est renvoyé qu'à
// l'acheteur, qui le communique au vendeur à la remise en main propre.
// Regénérer remplace le hash : l'ancien code est invalidé.
func (h *Handler) GenerateOTP(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

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

	if order.IsDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande déjà livrée"})
		return
	}

	code, err := otp.GenerateCode()
	if err != nil {
		log.Printf("❌ Erreur génération code commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du code"})
		return
	}

	err = h.Orders.SetVerificationHash(c.Request.Context(), orderID, otp.HashCode(code))
	switch err {
	case nil:
	case store.ErrOrderNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case store.ErrAlreadyDelivered:
		// Livrée entre la lecture et l'écriture : le store ferme la porte
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande déjà livrée"})
		return
	default:
		log.Printf("❌ Erreur pose du hash commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du code"})
		return
	}

	cache.InvalidateOrderCache(orderID)
	log.Printf("✅ Code de livraison émis pour la commande %s", orderID)

	response := gin.H{"message": "Code généré", "otp": code}
	if qr, err := otp.CodeQR(code); err == nil {
		response["qr"] = qr
	}

	c.JSON(http.StatusOK, response)
}

type verifyOTPInput struct {
	OrderID string `json:"orderId"`
	OTP     string `json:"otp"`
}

// VerifyOTP compare le code soumis au hash stocké et, en cas de match,
// passe la commande à l'état livré. Comparaison et transition sont une
// seule écriture conditionnelle côté store : le code ne sert qu'une fois
// et un generate concurrent ne peut pas être doublé par un vieux code.
//
// "Mauvais code", "aucun code émis" et "déjà livrée" renvoient la même
// réponse : pas d'oracle sur l'état du challenge.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var input verifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil || input.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs manquants"})
		return
	}

	order, err := h.Orders.GetByID(c.Request.Context(), input.OrderID)
	if err == store.ErrOrderNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture commande %s: %v", input.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	deliveredAt := time.Now().UTC()

	err = h.Orders.ConfirmDelivery(c.Request.Context(), input.OrderID, otp.HashCode(input.OTP), deliveredAt)
	switch err {
	case nil:
	case store.ErrOrderNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case store.ErrCodeMismatch:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code invalide"})
		return
	default:
		log.Printf("❌ Erreur confirmation livraison commande %s: %v", input.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur confirmation livraison"})
		return
	}

	cache.InvalidateOrderCache(input.OrderID)
	cache.PublishOrderEvent(input.OrderID, "delivered", order.BuyerID, order.SellerID)
	log.Printf("✅ Commande %s marquée comme livrée", input.OrderID)

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	order.HashedOTP = ""

	go h.notifyOrderDelivered(*order)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Commande marquée comme livrée",
		"deliveredAt": deliveredAt,
	})
}

func (h *Handler) notifyOrderDelivered(order models.Order) {
	buyer, err := h.Users.GetByID(context.Background(), order.BuyerID)
	if err != nil || buyer.Email == "" {
		return
	}
	if err := utils.SendOrderDeliveredEmail(order, buyer.Email); err != nil {
		log.Printf("❌ Erreur envoi email livraison commande %s: %v", order.ID, err)
	}
}
