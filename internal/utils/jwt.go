package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lokali_back_end/internal/models"
)

// GenerateJWT signe un token HS256 pour un utilisateur. L'émission vit
// normalement côté service d'identité ; ce helper sert aux outils internes
// et aux tests du middleware.
func GenerateJWT(user models.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
