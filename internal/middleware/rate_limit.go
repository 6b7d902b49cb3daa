package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lokali_back_end/internal/database"
)

const (
	// Limites par endpoint
	GenerateOTPMaxRequests = 5
	VerifyOTPMaxAttempts   = 5
	APIMaxRequests         = 100 // Par minute pour les endpoints généraux

	// Durées de cooldown
	GenerateOTPCooldown = 10 * time.Minute
	VerifyOTPCooldown   = 15 * time.Minute
	APICooldown         = 1 * time.Minute
)

// GenerateOTPRateLimit limite les générations de code par acheteur.
// Regénérer invalide le code précédent, donc pas de raison légitime d'en
// demander des dizaines.
func GenerateOTPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		key := "otp_generate:" + userID

		requests, _ := database.Redis.Get(ctx, key).Int()
		if requests >= GenerateOTPMaxRequests {
			ttl := database.Redis.TTL(ctx, key).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de codes demandés. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// On ne compte que les codes réellement émis
		if c.Writer.Status() == http.StatusOK {
			pipe := database.Redis.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, GenerateOTPCooldown)
			pipe.Exec(ctx)
		}
	}
}

// VerifyOTPRateLimit limite les tentatives de vérification par couple
// (appelant, commande). Un code à 6 chiffres ne résiste pas à la force
// brute sans ce verrou.
func VerifyOTPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			OrderID string `json:"orderId"`
		}

		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.OrderID == "" || userID == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "otp_verify:" + userID + ":" + input.OrderID
		cooldownKey := "otp_verify_cooldown:" + userID + ":" + input.OrderID

		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= VerifyOTPMaxAttempts {
			database.Redis.Set(ctx, cooldownKey, "1", VerifyOTPCooldown)
			database.Redis.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Vérification bloquée pendant %d minutes", int(VerifyOTPCooldown.Minutes())),
				"retry_after": int(VerifyOTPCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// Code refusé : incrémenter les tentatives. Code accepté : reset.
		if c.Writer.Status() == http.StatusBadRequest {
			database.Redis.Incr(ctx, key)
			database.Redis.Expire(ctx, key, VerifyOTPCooldown)
		} else if c.Writer.Status() == http.StatusOK {
			database.Redis.Del(ctx, key)
			database.Redis.Del(ctx, cooldownKey)
		}
	}
}

// APIRateLimit limite le nombre de requêtes par IP (général)
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		ip := c.ClientIP()
		key := "api_requests:" + ip

		requests, _ := database.Redis.Get(ctx, key).Int()
		if requests >= APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		pipe := database.Redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, APICooldown)
		pipe.Exec(ctx)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", APIMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-requests-1))

		c.Next()
	}
}
