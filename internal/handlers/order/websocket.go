package order

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lokali_back_end/internal/database"
	"lokali_back_end/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// OrderEventsWebSocket pousse en temps réel les changements d'état d'une
// commande (création de challenge, livraison confirmée) aux participants.
// Alimenté par le canal Redis "orders:<user_id>" publié par les handlers.
func (h *Handler) OrderEventsWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	order, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if err == store.ErrOrderNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	if userID != order.BuyerID && userID != order.SellerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, "orders:"+userID)
	defer pubsub.Close()

	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":        "connected",
		"orderId":     orderID,
		"isDelivered": order.IsDelivered,
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event struct {
				Type    string `json:"type"`
				OrderID string `json:"orderId"`
			}
			if json.Unmarshal([]byte(msg.Payload), &event) != nil {
				continue
			}
			// Le canal est par utilisateur, on ne relaie que cette commande
			if event.OrderID != orderID {
				continue
			}

			current, err := h.Orders.GetByID(ctx, orderID)
			if err != nil {
				continue
			}

			response := map[string]interface{}{
				"type":        event.Type,
				"orderId":     orderID,
				"isDelivered": current.IsDelivered,
			}
			if current.DeliveredAt != nil {
				response["deliveredAt"] = current.DeliveredAt
			}

			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
