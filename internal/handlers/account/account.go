package account

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"effectif_back_end/internal/metrics"
	"effectif_back_end/internal/models"
	"effectif_back_end/internal/reconcile"
	"effectif_back_end/internal/utils"
)

// Engine est injecté au démarrage par routes.RegisterRoutes
var Engine *reconcile.Engine

// accountView est la forme renvoyée à la console : le flag admin est résolu
// via la stratégie configurée, jamais relu ailleurs.
type accountView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"is_admin"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func toView(a models.Account) accountView {
	return accountView{
		ID:        a.ID,
		Email:     a.Email,
		IsAdmin:   Engine.Strategy.Read(a),
		CreatedAt: a.CreatedAt,
	}
}

// refreshList relit la liste complète après chaque mutation : l'état renvoyé
// est toujours un instantané frais, jamais une mise à jour incrémentale.
func refreshList(ctx context.Context) ([]accountView, error) {
	accounts, err := Engine.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toView(a))
	}
	return views, nil
}

// respondRejection traduit la catégorie stable d'un échec en réponse HTTP.
// Les messages sont dérivés UNE fois ici, pas re-déduits du texte fournisseur.
func respondRejection(c *gin.Context, operation string, rej *reconcile.Rejection) {
	metrics.AccountOps.WithLabelValues(operation, rej.Category.String()).Inc()

	switch rej.Category {
	case reconcile.Duplicate:
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà. Utilisez une autre adresse"})
	case reconcile.InvalidCredential:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le mot de passe doit contenir au moins 6 caractères"})
	case reconcile.PermissionDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": "Droits insuffisants auprès du fournisseur d'identité"})
	default:
		// Transitoire : la même requête peut être renvoyée telle quelle.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur temporaire du fournisseur, réessayez"})
	}
}

// GetAccounts liste tous les comptes du fournisseur
func GetAccounts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	views, err := refreshList(ctx)
	if err != nil {
		var rej *reconcile.Rejection
		if errors.As(err, &rej) {
			respondRejection(c, "list", rej)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture comptes: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": views})
}

// CreateAccount crée un compte chez le fournisseur d'identité.
// Les pré-conditions (email, mot de passe ≥ 6 caractères) sont vérifiées
// AVANT tout appel réseau ; aucune relance automatique en cas d'échec.
func CreateAccount(c *gin.Context) {
	var form reconcile.CreateForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	flow := Engine.NewCreateFlow()
	created, err := flow.Submit(ctx, form)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
			return
		}
		var rej *reconcile.Rejection
		if errors.As(err, &rej) {
			// Compte créé chez le fournisseur mais flag admin local non
			// persisté : re-soumettre la création produirait un doublon.
			if created.ID != "" {
				metrics.AccountOps.WithLabelValues("create", "partial").Inc()
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":      "Compte créé chez le fournisseur mais flag admin non enregistré. Ne re-soumettez pas : ajustez le flag via une modification du compte",
					"account_id": created.ID,
				})
				return
			}
			respondRejection(c, "create", rej)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.AccountOps.WithLabelValues("create", "applied").Inc()

	// L'envoi de l'e-mail de bienvenue n'est jamais bloquant.
	go func(email string, isAdmin bool) {
		if err := utils.SendWelcomeEmail(email, isAdmin); err != nil {
			log.Println("⚠️ Échec envoi e-mail de bienvenue:", err)
		}
	}(created.Email, form.IsAdmin)

	views, err := refreshList(ctx)
	if err != nil {
		// Le compte est créé ; la liste sera relue au prochain chargement.
		c.JSON(http.StatusCreated, gin.H{"message": "Utilisateur créé avec succès", "account": toView(created)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Utilisateur créé avec succès",
		"account":  toView(created),
		"accounts": views,
	})
}

// UpdateAccount applique le diff minimal entre l'état affiché et l'état
// soumis. Aucune modification → issue informative, aucun appel fournisseur.
func UpdateAccount(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		Email    string `json:"email"`
		IsAdmin  *bool  `json:"is_admin"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// État courant tel que connu du fournisseur (bag de metadata compris).
	accounts, err := Engine.List(ctx)
	if err != nil {
		var rej *reconcile.Rejection
		if errors.As(err, &rej) {
			respondRejection(c, "update", rej)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var current *models.Account
	for i := range accounts {
		if accounts[i].ID == id {
			current = &accounts[i]
			break
		}
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Compte introuvable"})
		return
	}

	desiredAdmin := Engine.Strategy.Read(*current)
	if input.IsAdmin != nil {
		desiredAdmin = *input.IsAdmin
	}
	desired := desiredAccount(*current, input.Email, desiredAdmin)

	flow := Engine.NewEditFlow(*current)
	outcome, err := flow.Submit(ctx, desired, input.Password)
	if err != nil {
		var rej *reconcile.Rejection
		if errors.As(err, &rej) {
			respondRejection(c, "update", rej)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if outcome == reconcile.OutcomeNoOp {
		metrics.AccountOps.WithLabelValues("update", "noop").Inc()
		views, _ := refreshList(ctx)
		c.JSON(http.StatusOK, gin.H{
			"message":  "Aucune modification à appliquer",
			"noop":     true,
			"accounts": views,
		})
		return
	}

	metrics.AccountOps.WithLabelValues("update", "applied").Inc()

	views, err := refreshList(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Utilisateur mis à jour avec succès"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Utilisateur mis à jour avec succès",
		"accounts": views,
	})
}

// desiredAccount construit l'état souhaité à partir du formulaire : le flag
// admin est inscrit dans l'emplacement que la stratégie lira, et nulle part
// ailleurs.
func desiredAccount(current models.Account, email string, isAdmin bool) models.Account {
	desired := current
	if email != "" {
		desired.Email = email
	}

	var req models.UpdateRequest
	Engine.Strategy.Write(current, &req, isAdmin)
	if req.AppMetadata != nil {
		desired.AppMetadata = req.AppMetadata
	}
	if req.UserMetadata != nil {
		desired.UserMetadata = req.UserMetadata
	}
	if req.AdminColumn != nil {
		desired.AdminColumn = req.AdminColumn
	}
	return desired
}

// DeleteAccount supprime le compte chez le fournisseur
func DeleteAccount(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := Engine.Delete(ctx, id); err != nil {
		var rej *reconcile.Rejection
		if errors.As(err, &rej) {
			respondRejection(c, "delete", rej)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.AccountOps.WithLabelValues("delete", "applied").Inc()

	views, err := refreshList(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Utilisateur supprimé avec succès"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Utilisateur supprimé avec succès",
		"accounts": views,
	})
}
