package reconcile

import (
	"errors"
	"net/http"
	"strings"

	"effectif_back_end/internal/identity"
)

// FailureCategory est la taxonomie interne stable des échecs fournisseur.
// Le fournisseur renvoie selon les cas un status HTTP, un code structuré ou
// un simple texte ; la classification est faite ICI une seule fois, jamais
// ré-implémentée par la couche de présentation.
type FailureCategory int

const (
	// Transient : tout le reste ; la même requête peut être rejouée telle quelle.
	Transient FailureCategory = iota
	// Duplicate : l'email est déjà enregistré chez le fournisseur.
	Duplicate
	// InvalidCredential : le mot de passe ne respecte pas la politique du fournisseur.
	InvalidCredential
	// PermissionDenied : l'appelant n'a pas les droits d'administration.
	PermissionDenied
)

func (c FailureCategory) String() string {
	switch c {
	case Duplicate:
		return "duplicate"
	case InvalidCredential:
		return "invalid_credential"
	case PermissionDenied:
		return "permission_denied"
	default:
		return "transient"
	}
}

// Rejection associe un échec fournisseur à sa catégorie stable.
type Rejection struct {
	Category FailureCategory
	Err      error
}

func (r *Rejection) Error() string {
	return r.Category.String() + ": " + r.Err.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// ClassifyFailure est totale et déterministe : toute erreur tombe dans
// exactement une catégorie, toujours la même pour la même entrée.
// Ordre d'inspection fixe : code structuré, puis texte du message, puis
// status HTTP, puis Transient.
func ClassifyFailure(err error) FailureCategory {
	var pe *identity.ProviderError
	if !errors.As(err, &pe) {
		// Erreur réseau ou inattendue : rejouable.
		return Transient
	}

	switch pe.Code {
	case "email_exists", "user_already_exists", "email_address_taken":
		return Duplicate
	case "weak_password":
		return InvalidCredential
	case "not_admin", "no_authorization", "insufficient_aal":
		return PermissionDenied
	}

	msg := strings.ToLower(pe.Message)
	switch {
	case strings.Contains(msg, "already been registered"),
		strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already exists"):
		return Duplicate
	case strings.Contains(msg, "password") &&
		(strings.Contains(msg, "at least") ||
			strings.Contains(msg, "too short") ||
			strings.Contains(msg, "weak") ||
			strings.Contains(msg, "6 characters")):
		return InvalidCredential
	}

	switch pe.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return PermissionDenied
	}

	return Transient
}
