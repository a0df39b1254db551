package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"effectif_back_end/internal/identity"
	"effectif_back_end/internal/reconcile"
	"effectif_back_end/internal/utils"
)

// Injectés au démarrage par routes.RegisterRoutes
var (
	Engine         *reconcile.Engine
	IdentityClient *identity.GoTrueClient
)

// Login vérifie les identifiants auprès du fournisseur d'identité puis émet
// le token de session interne de la console d'administration.
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	account, err := IdentityClient.Token(ctx, input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	// En stratégie colonne, le flag vit dans la table locale.
	isAdmin := Engine.Strategy.Read(account)
	if _, ok := Engine.Strategy.(reconcile.ColumnStrategy); ok && Engine.Flags != nil {
		if flags, err := Engine.Flags.GetAll(ctx); err == nil {
			if v, exists := flags[account.ID]; exists {
				isAdmin = v
			}
		}
	}

	token, err := utils.GenerateJWT(account, isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"user_id":  account.ID,
		"email":    account.Email,
		"is_admin": isAdmin,
	})
}
