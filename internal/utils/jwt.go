package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"effectif_back_end/internal/models"
)

// GenerateJWT émet le token de session interne d'un opérateur après
// vérification de ses identifiants par le fournisseur d'identité.
func GenerateJWT(account models.Account, isAdmin bool) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}

	claims := jwt.MapClaims{
		"user_id":  account.ID,
		"email":    account.Email,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
