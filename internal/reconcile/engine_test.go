package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"effectif_back_end/internal/identity"
	"effectif_back_end/internal/models"
	"effectif_back_end/internal/reconcile"
)

// fakeProvider enregistre les appels pour vérifier ce qui part réellement
// chez le fournisseur.
type fakeProvider struct {
	accounts []models.Account

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	createCalls int
	updateCalls int
	deleteCalls int

	lastCreateEmail    string
	lastCreatePassword string
	lastCreateAppMeta  map[string]interface{}
	lastCreateUserMeta map[string]interface{}
	lastUpdateID       string
	lastUpdateReq      models.UpdateRequest
	lastDeleteID       string
}

func (p *fakeProvider) List(ctx context.Context) ([]models.Account, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.accounts, nil
}

func (p *fakeProvider) Create(ctx context.Context, email, password string, appMeta, userMeta map[string]interface{}) (models.Account, error) {
	p.createCalls++
	p.lastCreateEmail = email
	p.lastCreatePassword = password
	p.lastCreateAppMeta = appMeta
	p.lastCreateUserMeta = userMeta
	if p.createErr != nil {
		return models.Account{}, p.createErr
	}
	return models.Account{ID: "new-id", Email: email, AppMetadata: appMeta, UserMetadata: userMeta}, nil
}

func (p *fakeProvider) Update(ctx context.Context, id string, req models.UpdateRequest) error {
	p.updateCalls++
	p.lastUpdateID = id
	p.lastUpdateReq = req
	if p.updateErr != nil {
		return p.updateErr
	}
	// Chaque champ envoyé est autoritaire, comme chez le vrai fournisseur.
	for i := range p.accounts {
		if p.accounts[i].ID != id {
			continue
		}
		if req.Email != nil {
			p.accounts[i].Email = *req.Email
		}
		if req.AppMetadata != nil {
			p.accounts[i].AppMetadata = req.AppMetadata
		}
		if req.UserMetadata != nil {
			p.accounts[i].UserMetadata = req.UserMetadata
		}
	}
	return nil
}

func (p *fakeProvider) Delete(ctx context.Context, id string) error {
	p.deleteCalls++
	p.lastDeleteID = id
	return p.deleteErr
}

type fakeFlagStore struct {
	flags      map[string]bool
	setErr     error
	setCalls   int
	deleted    []string
	lastSetID  string
	lastSetVal bool
}

func newFakeFlagStore() *fakeFlagStore {
	return &fakeFlagStore{flags: map[string]bool{}}
}

func (s *fakeFlagStore) GetAll(ctx context.Context) (map[string]bool, error) {
	return s.flags, nil
}

func (s *fakeFlagStore) Set(ctx context.Context, accountID string, isAdmin bool) error {
	s.setCalls++
	s.lastSetID = accountID
	s.lastSetVal = isAdmin
	if s.setErr != nil {
		return s.setErr
	}
	s.flags[accountID] = isAdmin
	return nil
}

func (s *fakeFlagStore) Delete(ctx context.Context, accountID string) error {
	s.deleted = append(s.deleted, accountID)
	delete(s.flags, accountID)
	return nil
}

func TestComputeUpdate(t *testing.T) {
	strategy := reconcile.UserMetadataStrategy{}
	current := models.Account{
		ID:           "u1",
		Email:        "jean@exemple.fr",
		UserMetadata: map[string]interface{}{"is_admin": false},
	}

	t.Run("aucun changement produit une requête vide", func(t *testing.T) {
		req := reconcile.ComputeUpdate(strategy, current, current, "")
		assert.True(t, req.IsEmpty())
	})

	t.Run("email seul", func(t *testing.T) {
		desired := current
		desired.Email = "jean.dupont@exemple.fr"
		req := reconcile.ComputeUpdate(strategy, current, desired, "")
		require.NotNil(t, req.Email)
		assert.Equal(t, "jean.dupont@exemple.fr", *req.Email)
		assert.Nil(t, req.Password)
		assert.Nil(t, req.UserMetadata)
		assert.Nil(t, req.AppMetadata)
	})

	t.Run("bascule du flag seul", func(t *testing.T) {
		desired := current
		desired.UserMetadata = map[string]interface{}{"is_admin": true}
		req := reconcile.ComputeUpdate(strategy, current, desired, "")
		assert.Nil(t, req.Email)
		assert.Nil(t, req.Password)
		require.NotNil(t, req.UserMetadata)
		assert.Equal(t, true, req.UserMetadata["is_admin"])
		// Jamais dans l'autre emplacement.
		assert.Nil(t, req.AppMetadata)
		assert.Nil(t, req.AdminColumn)
	})

	t.Run("bascule du flag conserve les clés voisines du bag", func(t *testing.T) {
		withName := current
		withName.UserMetadata = map[string]interface{}{
			"is_admin":  false,
			"full_name": "Jean Dupont",
		}
		desired := withName
		desired.UserMetadata = map[string]interface{}{
			"is_admin":  true,
			"full_name": "Jean Dupont",
		}

		req := reconcile.ComputeUpdate(strategy, withName, desired, "")
		require.NotNil(t, req.UserMetadata)
		assert.Equal(t, true, req.UserMetadata["is_admin"])
		// Le PUT fournisseur est autoritaire : un bag émis sans cette clé
		// l'effacerait.
		assert.Equal(t, "Jean Dupont", req.UserMetadata["full_name"])
	})

	t.Run("flag identique jamais réécrit", func(t *testing.T) {
		desired := current
		desired.UserMetadata = map[string]interface{}{"is_admin": false}
		req := reconcile.ComputeUpdate(strategy, current, desired, "")
		assert.True(t, req.IsEmpty())
	})

	t.Run("mot de passe renseigné", func(t *testing.T) {
		req := reconcile.ComputeUpdate(strategy, current, current, "nouveau-mdp")
		require.NotNil(t, req.Password)
		assert.Equal(t, "nouveau-mdp", *req.Password)
		assert.Nil(t, req.Email)
	})

	t.Run("stratégie colonne cible la colonne", func(t *testing.T) {
		col := reconcile.ColumnStrategy{}
		desired := current
		v := true
		desired.AdminColumn = &v
		req := reconcile.ComputeUpdate(col, current, desired, "")
		require.NotNil(t, req.AdminColumn)
		assert.True(t, *req.AdminColumn)
		assert.Nil(t, req.UserMetadata)
		assert.Nil(t, req.AppMetadata)
	})
}

func TestCreateFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("mot de passe trop court rejeté avant tout appel", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		flow := engine.NewCreateFlow()

		_, err := flow.Submit(ctx, reconcile.CreateForm{Email: "a@x.com", Password: "short"})
		require.Error(t, err)

		var rej *reconcile.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, reconcile.InvalidCredential, rej.Category)
		assert.ErrorIs(t, err, reconcile.ErrPasswordTooShort)
		// Submitting inatteignable : zéro appel fournisseur.
		assert.Equal(t, 0, provider.createCalls)
		assert.Equal(t, reconcile.StateDraft, flow.State())
	})

	t.Run("email manquant", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		_, err := engine.NewCreateFlow().Submit(ctx, reconcile.CreateForm{Password: "secret-123"})

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email", verr.Field)
		assert.Equal(t, 0, provider.createCalls)
	})

	t.Run("création réussie écrit le flag dans le bon bag", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		flow := engine.NewCreateFlow()

		account, err := flow.Submit(ctx, reconcile.CreateForm{Email: "a@x.com", Password: "secret-123", IsAdmin: true})
		require.NoError(t, err)
		assert.Equal(t, "new-id", account.ID)
		assert.Equal(t, reconcile.StateCreated, flow.State())

		assert.Equal(t, 1, provider.createCalls)
		assert.Equal(t, "a@x.com", provider.lastCreateEmail)
		require.NotNil(t, provider.lastCreateUserMeta)
		assert.Equal(t, true, provider.lastCreateUserMeta["is_admin"])
		assert.Nil(t, provider.lastCreateAppMeta)
	})

	t.Run("doublon rejeté avec la bonne catégorie", func(t *testing.T) {
		provider := &fakeProvider{
			createErr: &identity.ProviderError{Status: 422, Code: "email_exists", Message: "already registered"},
		}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		flow := engine.NewCreateFlow()

		_, err := flow.Submit(ctx, reconcile.CreateForm{Email: "a@x.com", Password: "secret-123"})
		var rej *reconcile.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, reconcile.Duplicate, rej.Category)
		assert.Equal(t, reconcile.StateRejected, flow.State())
		// Pas de relance automatique.
		assert.Equal(t, 1, provider.createCalls)
	})

	t.Run("stratégie colonne persiste le flag localement", func(t *testing.T) {
		provider := &fakeProvider{}
		flags := newFakeFlagStore()
		engine := reconcile.NewEngine(provider, reconcile.ColumnStrategy{}, flags)

		account, err := engine.NewCreateFlow().Submit(ctx, reconcile.CreateForm{Email: "a@x.com", Password: "secret-123", IsAdmin: true})
		require.NoError(t, err)

		// Rien ne part dans les bags du fournisseur.
		assert.Nil(t, provider.lastCreateAppMeta)
		assert.Nil(t, provider.lastCreateUserMeta)
		assert.Equal(t, 1, flags.setCalls)
		assert.Equal(t, "new-id", flags.lastSetID)
		assert.True(t, flags.lastSetVal)
		require.NotNil(t, account.AdminColumn)
		assert.True(t, *account.AdminColumn)
	})

	t.Run("échec du flag local après création fournisseur", func(t *testing.T) {
		provider := &fakeProvider{}
		flags := newFakeFlagStore()
		flags.setErr = errors.New("scylla indisponible")
		engine := reconcile.NewEngine(provider, reconcile.ColumnStrategy{}, flags)

		account, err := engine.NewCreateFlow().Submit(ctx, reconcile.CreateForm{Email: "a@x.com", Password: "secret-123", IsAdmin: true})

		var rej *reconcile.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, reconcile.Transient, rej.Category)
		// Le compte existe chez le fournisseur : il est renvoyé avec le
		// rejet, rejouer la même création donnerait un doublon.
		assert.Equal(t, "new-id", account.ID)
		assert.Equal(t, 1, provider.createCalls)
	})
}

func TestEditFlow(t *testing.T) {
	ctx := context.Background()
	current := models.Account{
		ID:           "u1",
		Email:        "jean@exemple.fr",
		UserMetadata: map[string]interface{}{"is_admin": false},
	}

	t.Run("no-op signalé sans appel fournisseur", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		flow := engine.NewEditFlow(current)

		outcome, err := flow.Submit(ctx, current, "")
		require.NoError(t, err)
		assert.Equal(t, reconcile.OutcomeNoOp, outcome)
		assert.Equal(t, reconcile.StateNoOpReported, flow.State())
		assert.Equal(t, 0, provider.updateCalls)
	})

	t.Run("diff minimal envoyé au fournisseur", func(t *testing.T) {
		provider := &fakeProvider{}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		flow := engine.NewEditFlow(current)

		desired := current
		desired.UserMetadata = map[string]interface{}{"is_admin": true}
		outcome, err := flow.Submit(ctx, desired, "")
		require.NoError(t, err)
		assert.Equal(t, reconcile.OutcomeApplied, outcome)
		assert.Equal(t, reconcile.StateApplied, flow.State())

		assert.Equal(t, "u1", provider.lastUpdateID)
		req := provider.lastUpdateReq
		assert.Nil(t, req.Email)
		assert.Nil(t, req.Password)
		require.NotNil(t, req.UserMetadata)
		assert.Equal(t, true, req.UserMetadata["is_admin"])
	})

	t.Run("rejouer la même requête laisse le compte inchangé", func(t *testing.T) {
		start := current
		start.UserMetadata = map[string]interface{}{
			"is_admin":  false,
			"full_name": "Jean Dupont",
		}
		provider := &fakeProvider{accounts: []models.Account{start}}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)

		desired := start
		desired.Email = "jean.dupont@exemple.fr"
		desired.UserMetadata = map[string]interface{}{
			"is_admin":  true,
			"full_name": "Jean Dupont",
		}
		_, err := engine.NewEditFlow(start).Submit(ctx, desired, "")
		require.NoError(t, err)
		require.Equal(t, 1, provider.updateCalls)

		captured := provider.lastUpdateReq
		afterOnce := provider.accounts[0]

		// Seconde application de la même requête sur le même état.
		require.NoError(t, provider.Update(ctx, start.ID, captured))
		assert.Equal(t, afterOnce, provider.accounts[0])
		assert.Equal(t, "jean.dupont@exemple.fr", provider.accounts[0].Email)
		assert.Equal(t, true, provider.accounts[0].UserMetadata["is_admin"])
		assert.Equal(t, "Jean Dupont", provider.accounts[0].UserMetadata["full_name"])
	})

	t.Run("échec fournisseur classifié", func(t *testing.T) {
		provider := &fakeProvider{
			updateErr: &identity.ProviderError{Status: 403, Message: "forbidden"},
		}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)
		flow := engine.NewEditFlow(current)

		desired := current
		desired.Email = "autre@exemple.fr"
		_, err := flow.Submit(ctx, desired, "")

		var rej *reconcile.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, reconcile.PermissionDenied, rej.Category)
		assert.Equal(t, reconcile.StateRejectedEdit, flow.State())
	})

	t.Run("stratégie colonne met à jour la table locale", func(t *testing.T) {
		provider := &fakeProvider{}
		flags := newFakeFlagStore()
		engine := reconcile.NewEngine(provider, reconcile.ColumnStrategy{}, flags)

		flow := engine.NewEditFlow(current)
		desired := current
		v := true
		desired.AdminColumn = &v
		outcome, err := flow.Submit(ctx, desired, "")
		require.NoError(t, err)
		assert.Equal(t, reconcile.OutcomeApplied, outcome)

		// Le fournisseur ne voit jamais la colonne.
		assert.Equal(t, 0, provider.updateCalls)
		assert.Equal(t, 1, flags.setCalls)
		assert.True(t, flags.flags["u1"])
	})
}

func TestEngineList(t *testing.T) {
	ctx := context.Background()

	t.Run("fusion des flags locaux en stratégie colonne", func(t *testing.T) {
		provider := &fakeProvider{accounts: []models.Account{{ID: "u1"}, {ID: "u2"}}}
		flags := newFakeFlagStore()
		flags.flags["u1"] = true
		engine := reconcile.NewEngine(provider, reconcile.ColumnStrategy{}, flags)

		accounts, err := engine.List(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		require.NotNil(t, accounts[0].AdminColumn)
		assert.True(t, *accounts[0].AdminColumn)
		assert.Nil(t, accounts[1].AdminColumn)
	})

	t.Run("pas de fusion hors stratégie colonne", func(t *testing.T) {
		provider := &fakeProvider{accounts: []models.Account{{ID: "u1"}}}
		flags := newFakeFlagStore()
		flags.flags["u1"] = true
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, flags)

		accounts, err := engine.List(ctx)
		require.NoError(t, err)
		assert.Nil(t, accounts[0].AdminColumn)
	})

	t.Run("échec fournisseur classifié", func(t *testing.T) {
		provider := &fakeProvider{listErr: errors.New("connection refused")}
		engine := reconcile.NewEngine(provider, reconcile.UserMetadataStrategy{}, nil)

		_, err := engine.List(ctx)
		var rej *reconcile.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, reconcile.Transient, rej.Category)
	})
}

func TestEngineDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("suppression fournisseur puis flag local", func(t *testing.T) {
		provider := &fakeProvider{}
		flags := newFakeFlagStore()
		flags.flags["u1"] = true
		engine := reconcile.NewEngine(provider, reconcile.ColumnStrategy{}, flags)

		require.NoError(t, engine.Delete(ctx, "u1"))
		assert.Equal(t, "u1", provider.lastDeleteID)
		assert.Equal(t, []string{"u1"}, flags.deleted)
	})

	t.Run("échec fournisseur ne touche pas le flag", func(t *testing.T) {
		provider := &fakeProvider{deleteErr: &identity.ProviderError{Status: 403, Message: "forbidden"}}
		flags := newFakeFlagStore()
		flags.flags["u1"] = true
		engine := reconcile.NewEngine(provider, reconcile.ColumnStrategy{}, flags)

		err := engine.Delete(ctx, "u1")
		var rej *reconcile.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, reconcile.PermissionDenied, rej.Category)
		assert.Empty(t, flags.deleted)
	})
}

func TestCreateFormValidate(t *testing.T) {
	assert.NoError(t, reconcile.CreateForm{Email: "a@x.com", Password: "123456"}.Validate())
	assert.ErrorIs(t, reconcile.CreateForm{Email: "a@x.com", Password: "12345"}.Validate(), reconcile.ErrPasswordTooShort)
	assert.Error(t, reconcile.CreateForm{Email: "  ", Password: "123456"}.Validate())
	assert.Error(t, reconcile.CreateForm{Email: "a@x.com"}.Validate())
}
