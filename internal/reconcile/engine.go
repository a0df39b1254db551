package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"effectif_back_end/internal/identity"
	"effectif_back_end/internal/models"
)

// MinPasswordLen est la politique minimale vérifiée AVANT tout appel au
// fournisseur : l'état Submitting est inatteignable en dessous.
const MinPasswordLen = 6

// ErrPasswordTooShort est renvoyé en phase Draft, sans appel fournisseur.
var ErrPasswordTooShort = errors.New("le mot de passe doit contenir au moins 6 caractères")

// FlagColumnStore persiste le flag admin pour la stratégie "colonne".
// Implémenté sur la table users_admin_flags de ScyllaDB.
type FlagColumnStore interface {
	GetAll(ctx context.Context) (map[string]bool, error)
	Set(ctx context.Context, accountID string, isAdmin bool) error
	Delete(ctx context.Context, accountID string) error
}

// ComputeUpdate calcule le diff minimal entre l'état affiché et l'état
// souhaité. Le fournisseur traite chaque champ envoyé comme autoritaire :
// un champ non modifié n'apparaît JAMAIS dans la requête. Le flag admin est
// comparé à la valeur lue par la stratégie et réécrit au MÊME emplacement.
func ComputeUpdate(strategy AdminFlagStrategy, current, desired models.Account, newPassword string) models.UpdateRequest {
	var req models.UpdateRequest

	if desired.Email != current.Email {
		email := desired.Email
		req.Email = &email
	}

	currentAdmin := strategy.Read(current)
	desiredAdmin := strategy.Read(desired)
	if desiredAdmin != currentAdmin {
		strategy.Write(current, &req, desiredAdmin)
	}

	if newPassword != "" {
		pw := newPassword
		req.Password = &pw
	}

	return req
}

// Engine orchestre les flux de création, d'édition et de suppression de
// comptes contre le fournisseur d'identité.
type Engine struct {
	Provider identity.Provider
	Strategy AdminFlagStrategy
	// Flags n'est consulté qu'en stratégie "colonne".
	Flags FlagColumnStore
}

func NewEngine(provider identity.Provider, strategy AdminFlagStrategy, flags FlagColumnStore) *Engine {
	return &Engine{Provider: provider, Strategy: strategy, Flags: flags}
}

func (e *Engine) usesColumn() bool {
	_, ok := e.Strategy.(ColumnStrategy)
	return ok
}

// List relit la liste complète des comptes. En stratégie colonne, le flag
// local est fusionné dans chaque compte pour que Read voie l'emplacement
// autoritaire.
func (e *Engine) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := e.Provider.List(ctx)
	if err != nil {
		return nil, &Rejection{Category: ClassifyFailure(err), Err: err}
	}

	if e.usesColumn() && e.Flags != nil {
		flags, err := e.Flags.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("lecture flags admin locaux: %w", err)
		}
		for i := range accounts {
			if v, ok := flags[accounts[i].ID]; ok {
				flag := v
				accounts[i].AdminColumn = &flag
			}
		}
	}
	return accounts, nil
}

// --- Machine à états : création ---
// Draft → Submitting → {Created | Rejected}

type CreateState int

const (
	StateDraft CreateState = iota
	StateSubmitting
	StateCreated
	StateRejected
)

// CreateForm est l'état du formulaire de création.
type CreateForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// Validate vérifie les pré-conditions d'entrée en Submitting.
func (f CreateForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" {
		return &models.ValidationError{Field: "email", Reason: "requis"}
	}
	if f.Password == "" {
		return &models.ValidationError{Field: "password", Reason: "requis"}
	}
	if len(f.Password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}

// CreateFlow matérialise la machine à états de création. Un flow sert pour
// UNE soumission ; Rejected ramène le formulaire en Draft côté appelant.
type CreateFlow struct {
	engine *Engine
	state  CreateState
}

func (e *Engine) NewCreateFlow() *CreateFlow {
	return &CreateFlow{engine: e, state: StateDraft}
}

func (f *CreateFlow) State() CreateState { return f.state }

// Submit valide puis crée le compte. Un mot de passe trop court est rejeté
// en Draft avec la catégorie InvalidCredential : aucun appel fournisseur.
// Aucune relance automatique en cas d'échec.
func (f *CreateFlow) Submit(ctx context.Context, form CreateForm) (models.Account, error) {
	if err := form.Validate(); err != nil {
		if errors.Is(err, ErrPasswordTooShort) {
			return models.Account{}, &Rejection{Category: InvalidCredential, Err: err}
		}
		return models.Account{}, err
	}

	f.state = StateSubmitting

	// Compte neuf : le bag de départ est vide.
	var req models.UpdateRequest
	f.engine.Strategy.Write(models.Account{}, &req, form.IsAdmin)

	account, err := f.engine.Provider.Create(ctx, form.Email, form.Password, req.AppMetadata, req.UserMetadata)
	if err != nil {
		f.state = StateRejected
		return models.Account{}, &Rejection{Category: ClassifyFailure(err), Err: err}
	}

	if req.AdminColumn != nil && f.engine.Flags != nil {
		if err := f.engine.Flags.Set(ctx, account.ID, *req.AdminColumn); err != nil {
			f.state = StateRejected
			// Le compte existe désormais chez le fournisseur : rejouer la
			// même création répondrait Duplicate. Le compte créé est renvoyé
			// avec le rejet pour que l'appelant signale l'état partiel au
			// lieu d'inviter à re-soumettre.
			return account, &Rejection{
				Category: Transient,
				Err:      fmt.Errorf("compte %s créé mais flag admin non persisté: %w", account.ID, err),
			}
		}
		account.AdminColumn = req.AdminColumn
	}

	f.state = StateCreated
	return account, nil
}

// --- Machine à états : édition ---
// Loaded → Editing → Submitting → {Applied | Rejected | NoOpReported}

type EditState int

const (
	StateLoaded EditState = iota
	StateEditing
	StateSubmittingEdit
	StateApplied
	StateNoOpReported
	StateRejectedEdit
)

// EditOutcome distingue une écriture appliquée d'un no-op signalé : le no-op
// est une issue informative, pas une erreur.
type EditOutcome int

const (
	OutcomeApplied EditOutcome = iota
	OutcomeNoOp
)

type EditFlow struct {
	engine  *Engine
	state   EditState
	current models.Account
}

// NewEditFlow part du compte tel que relu chez le fournisseur (bag de
// metadata compris).
func (e *Engine) NewEditFlow(current models.Account) *EditFlow {
	return &EditFlow{engine: e, state: StateLoaded, current: current}
}

func (f *EditFlow) State() EditState { return f.state }

// Submit calcule le diff et l'applique. Une requête vide passe directement
// en NoOpReported sans appel fournisseur.
func (f *EditFlow) Submit(ctx context.Context, desired models.Account, newPassword string) (EditOutcome, error) {
	f.state = StateEditing

	req := ComputeUpdate(f.engine.Strategy, f.current, desired, newPassword)
	if req.IsEmpty() {
		f.state = StateNoOpReported
		return OutcomeNoOp, nil
	}

	f.state = StateSubmittingEdit

	// La colonne est locale : si elle est le seul changement, aucun appel
	// fournisseur n'est émis.
	providerReq := req
	providerReq.AdminColumn = nil
	if !providerReq.IsEmpty() {
		if err := f.engine.Provider.Update(ctx, f.current.ID, providerReq); err != nil {
			f.state = StateRejectedEdit
			return OutcomeApplied, &Rejection{Category: ClassifyFailure(err), Err: err}
		}
	}

	if req.AdminColumn != nil && f.engine.Flags != nil {
		if err := f.engine.Flags.Set(ctx, f.current.ID, *req.AdminColumn); err != nil {
			f.state = StateRejectedEdit
			return OutcomeApplied, &Rejection{Category: Transient, Err: err}
		}
	}

	f.state = StateApplied
	return OutcomeApplied, nil
}

// Delete supprime le compte chez le fournisseur, puis le flag local en
// stratégie colonne. L'échec du nettoyage local n'annule pas la suppression.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.Provider.Delete(ctx, id); err != nil {
		return &Rejection{Category: ClassifyFailure(err), Err: err}
	}
	if e.usesColumn() && e.Flags != nil {
		_ = e.Flags.Delete(ctx, id)
	}
	return nil
}
