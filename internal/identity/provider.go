package identity

import (
	"context"
	"fmt"

	"effectif_back_end/internal/models"
)

// Provider est le contrat abstrait du fournisseur d'identité. Le moteur de
// réconciliation ne dépend que de cette interface, jamais du client concret.
type Provider interface {
	// List renvoie l'intégralité des comptes connus du fournisseur.
	List(ctx context.Context) ([]models.Account, error)

	// Create crée un compte. Les metadata sont écrites telles quelles dans
	// les bags du fournisseur.
	Create(ctx context.Context, email, password string, appMetadata, userMetadata map[string]interface{}) (models.Account, error)

	// Update applique une requête de mise à jour partielle : seuls les champs
	// présents dans req sont envoyés au fournisseur.
	Update(ctx context.Context, id string, req models.UpdateRequest) error

	// Delete supprime définitivement le compte.
	Delete(ctx context.Context, id string) error
}

// ProviderError porte la forme hétérogène des erreurs du fournisseur :
// status HTTP, code structuré ou simple texte selon la surface d'API appelée.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("fournisseur d'identité [%d/%s]: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("fournisseur d'identité [%d]: %s", e.Status, e.Message)
}
