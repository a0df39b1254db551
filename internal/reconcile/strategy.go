package reconcile

import (
	"log"
	"os"

	"effectif_back_end/internal/models"
)

// flagKey est la clé du flag admin dans les bags de metadata du fournisseur.
const flagKey = "is_admin"

// AdminFlagStrategy fixe L'UNIQUE emplacement de stockage du flag admin pour
// un déploiement donné. Les révisions successives de l'écran d'origine
// lisaient un emplacement et en écrivaient un autre ; la stratégie est choisie
// une fois au démarrage et partagée par tous les appels.
type AdminFlagStrategy interface {
	Name() string
	// Read renvoie le flag tel que stocké dans l'emplacement autoritaire.
	// Si seul l'AUTRE bag de metadata porte le flag (compte créé par une
	// ancienne révision), la valeur est remontée plutôt que perdue.
	Read(a models.Account) bool
	// Write inscrit le flag dans la requête de mise à jour, uniquement dans
	// l'emplacement autoritaire. Le fournisseur traite un bag envoyé comme
	// autoritaire : le bag émis est une copie de celui du compte courant avec
	// le seul flag modifié, jamais un bag réduit au flag.
	Write(current models.Account, req *models.UpdateRequest, isAdmin bool)
}

// StrategyFromEnv sélectionne la stratégie depuis ADMIN_FLAG_LOCATION.
// Valeurs acceptées : app_metadata, user_metadata, column.
func StrategyFromEnv() AdminFlagStrategy {
	var s AdminFlagStrategy
	switch os.Getenv("ADMIN_FLAG_LOCATION") {
	case "app_metadata":
		s = AppMetadataStrategy{}
	case "column":
		s = ColumnStrategy{}
	case "user_metadata", "":
		// user_metadata par défaut : le signup d'origine écrivait le flag
		// via options.data, qui atterrit dans user_metadata.
		s = UserMetadataStrategy{}
	default:
		log.Printf("⚠️ ADMIN_FLAG_LOCATION inconnu (%q), user_metadata utilisé", os.Getenv("ADMIN_FLAG_LOCATION"))
		s = UserMetadataStrategy{}
	}
	log.Println("✅ Emplacement du flag admin :", s.Name())
	return s
}

// bagWithFlag copie le bag existant et n'y change que le flag : les autres
// clés (nom complet, préférences...) survivent au PUT autoritaire.
func bagWithFlag(bag map[string]interface{}, isAdmin bool) map[string]interface{} {
	out := make(map[string]interface{}, len(bag)+1)
	for k, v := range bag {
		out[k] = v
	}
	out[flagKey] = isAdmin
	return out
}

func flagFromBag(bag map[string]interface{}) (bool, bool) {
	v, ok := bag[flagKey]
	if !ok {
		return false, false
	}
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		return val == "true", true
	default:
		return false, false
	}
}

// UserMetadataStrategy stocke le flag dans le bag user_metadata.
type UserMetadataStrategy struct{}

func (UserMetadataStrategy) Name() string { return "user_metadata" }

func (UserMetadataStrategy) Read(a models.Account) bool {
	if v, ok := flagFromBag(a.UserMetadata); ok {
		return v
	}
	if v, ok := flagFromBag(a.AppMetadata); ok {
		return v
	}
	return false
}

func (UserMetadataStrategy) Write(current models.Account, req *models.UpdateRequest, isAdmin bool) {
	req.UserMetadata = bagWithFlag(current.UserMetadata, isAdmin)
}

// AppMetadataStrategy stocke le flag dans le bag app_metadata.
type AppMetadataStrategy struct{}

func (AppMetadataStrategy) Name() string { return "app_metadata" }

func (AppMetadataStrategy) Read(a models.Account) bool {
	if v, ok := flagFromBag(a.AppMetadata); ok {
		return v
	}
	if v, ok := flagFromBag(a.UserMetadata); ok {
		return v
	}
	return false
}

func (AppMetadataStrategy) Write(current models.Account, req *models.UpdateRequest, isAdmin bool) {
	req.AppMetadata = bagWithFlag(current.AppMetadata, isAdmin)
}

// ColumnStrategy stocke le flag dans la colonne dédiée de la table
// users_admin_flags (ScyllaDB), pas chez le fournisseur.
type ColumnStrategy struct{}

func (ColumnStrategy) Name() string { return "column" }

func (ColumnStrategy) Read(a models.Account) bool {
	if a.AdminColumn != nil {
		return *a.AdminColumn
	}
	// Comptes créés avant la migration vers la colonne.
	if v, ok := flagFromBag(a.AppMetadata); ok {
		return v
	}
	if v, ok := flagFromBag(a.UserMetadata); ok {
		return v
	}
	return false
}

func (ColumnStrategy) Write(current models.Account, req *models.UpdateRequest, isAdmin bool) {
	req.AdminColumn = &isAdmin
}
