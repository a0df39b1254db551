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

	"effectif_back_end/internal/database"
)

const (
	// Limites par endpoint
	LoginMaxAttempts         = 5
	CreateAccountMaxAttempts = 10
	APIMaxRequests           = 100 // Par minute pour les endpoints généraux

	// Durées de cooldown
	LoginCooldown         = 15 * time.Minute
	CreateAccountCooldown = 10 * time.Minute
	APICooldown           = 1 * time.Minute

	// Un formulaire = une seule requête en vol
	SubmitGuardTTL = 30 * time.Second
)

// LoginRateLimit limite les tentatives de connexion par email
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "login_attempts:" + input.Email

		cooldownKey := "login_cooldown:" + input.Email
		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			database.Redis.Set(ctx, cooldownKey, "1", LoginCooldown)
			database.Redis.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// Si login échoué (401), incrémenter les tentatives
		if c.Writer.Status() == http.StatusUnauthorized {
			database.Redis.Incr(ctx, key)
			database.Redis.Expire(ctx, key, LoginCooldown)
		} else if c.Writer.Status() == http.StatusOK {
			database.Redis.Del(ctx, key)
			database.Redis.Del(ctx, cooldownKey)
		}
	}
}

// CreateAccountRateLimit limite les créations de comptes par IP
func CreateAccountRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := "account_create_attempts:" + c.ClientIP()

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= CreateAccountMaxAttempts {
			ttl := database.Redis.TTL(ctx, key).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de créations de comptes. Réessayez plus tard",
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		database.Redis.Incr(ctx, key)
		database.Redis.Expire(ctx, key, CreateAccountCooldown)
		c.Next()
	}
}

// APIRateLimit limite le débit global par opérateur authentifié
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		id := c.GetString("user_id")
		if id == "" {
			id = c.ClientIP()
		}
		key := "api_requests:" + id

		count, _ := database.Redis.Get(ctx, key).Int()
		if count >= APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Trop de requêtes, ralentissez"})
			c.Abort()
			return
		}

		database.Redis.Incr(ctx, key)
		database.Redis.Expire(ctx, key, APICooldown)
		c.Next()
	}
}

// NoResubmit garantit qu'UN SEUL envoi d'un formulaire logique est en vol à
// la fois pour un opérateur donné (double-clic = seconde requête rejetée).
// Le verrou est posé en SETNX et levé dès que la requête se termine.
func NoResubmit(formName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		owner := c.GetString("user_id")
		if owner == "" {
			owner = c.ClientIP()
		}
		key := fmt.Sprintf("submitting:%s:%s", formName, owner)

		ok, err := database.Redis.SetNX(ctx, key, "1", SubmitGuardTTL).Result()
		if err == nil && !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "Une requête identique est déjà en cours"})
			c.Abort()
			return
		}

		c.Next()

		database.Redis.Del(ctx, key)
	}
}
