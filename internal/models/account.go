package models

import "time"

// Account représente un compte tel que renvoyé par le fournisseur d'identité.
// L'ID est attribué par le fournisseur et ne change jamais. Le mot de passe
// n'est jamais relu : il n'apparaît donc pas ici.
type Account struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	// AdminColumn n'est renseigné que lorsque le déploiement stocke le flag
	// admin dans une colonne dédiée (table users_admin_flags de ScyllaDB).
	AdminColumn *bool      `json:"-"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// UpdateRequest ne contient QUE les champs modifiés. Le fournisseur traite
// chaque champ envoyé comme autoritaire : envoyer un champ non modifié
// écraserait silencieusement la valeur existante.
type UpdateRequest struct {
	Email        *string                `json:"email,omitempty"`
	Password     *string                `json:"password,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	// AdminColumn cible la table locale, jamais le fournisseur.
	AdminColumn *bool `json:"-"`
}

// IsEmpty indique qu'aucun champ n'a changé : aucun appel au fournisseur
// ne doit être émis dans ce cas.
func (r UpdateRequest) IsEmpty() bool {
	return r.Email == nil &&
		r.Password == nil &&
		r.AppMetadata == nil &&
		r.UserMetadata == nil &&
		r.AdminColumn == nil
}
