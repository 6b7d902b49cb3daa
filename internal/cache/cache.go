package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lokali_back_end/internal/database"
	"lokali_back_end/internal/models"
)

const (
	UserCacheTTL  = 5 * time.Minute
	OrderCacheTTL = 1 * time.Minute
)

// GetCachedUser récupère un utilisateur depuis Redis (nil si absent).
// Tolère un Redis non initialisé pour pouvoir tester sans infra.
func GetCachedUser(userID string) *models.User {
	if database.Redis == nil {
		return nil
	}
	ctx := context.Background()

	data, err := database.Redis.Get(ctx, "user:"+userID).Result()
	if err != nil {
		return nil
	}

	var user models.User
	if json.Unmarshal([]byte(data), &user) != nil {
		return nil
	}
	return &user
}

// CacheUser met un utilisateur en cache
func CacheUser(user *models.User) {
	if database.Redis == nil || user == nil {
		return
	}
	ctx := context.Background()

	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, "user:"+user.ID, jsonData, UserCacheTTL)
}

// InvalidateUserCache invalide le cache d'un utilisateur
func InvalidateUserCache(userID string) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), "user:"+userID)
}

// GetCachedOrder récupère une commande depuis Redis (nil si absente).
// Le hash de vérification ne transite jamais par ici : Order le sérialise
// avec json:"-", le cache ne voit donc que les champs exposables.
func GetCachedOrder(orderID string) *models.Order {
	if database.Redis == nil {
		return nil
	}
	ctx := context.Background()

	data, err := database.Redis.Get(ctx, "order:"+orderID).Result()
	if err != nil {
		return nil
	}

	var order models.Order
	if json.Unmarshal([]byte(data), &order) != nil {
		return nil
	}
	return &order
}

// CacheOrder met une commande en cache
func CacheOrder(order *models.Order) {
	if database.Redis == nil || order == nil {
		return
	}
	ctx := context.Background()

	jsonData, _ := json.Marshal(order)
	database.Redis.Set(ctx, "order:"+order.ID, jsonData, OrderCacheTTL)
}

// InvalidateOrderCache invalide le cache d'une commande (après toute mutation)
func InvalidateOrderCache(orderID string) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), "order:"+orderID)
}

// PublishOrderEvent notifie les WebSockets ouverts des deux participants
// qu'une commande a changé (canal Redis par utilisateur, comme pour le
// panier côté storefront).
func PublishOrderEvent(orderID, eventType string, userIDs ...string) {
	if database.Redis == nil {
		return
	}
	ctx := context.Background()

	payload, _ := json.Marshal(map[string]string{
		"type":    eventType,
		"orderId": orderID,
	})

	for _, uid := range userIDs {
		if uid == "" {
			continue
		}
		if err := database.Redis.Publish(ctx, "orders:"+uid, payload).Err(); err != nil {
			log.Printf("❌ Erreur publication événement commande %s: %v", orderID, err)
		}
	}
}
