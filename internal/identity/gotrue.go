package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"effectif_back_end/internal/models"
)

// GoTrueClient parle à l'API admin du serveur d'authentification (style
// GoTrue/Supabase) avec la clé de service. Aucun SDK Go officiel n'existe :
// on consomme directement le contrat REST du fournisseur.
type GoTrueClient struct {
	BaseURL    string
	ServiceKey string
	HTTP       *http.Client
}

// NewGoTrueClientFromEnv construit le client depuis .env
func NewGoTrueClientFromEnv() *GoTrueClient {
	base := os.Getenv("IDENTITY_URL")
	key := os.Getenv("IDENTITY_SERVICE_KEY")
	if base == "" || key == "" {
		log.Println("⚠️ IDENTITY_URL ou IDENTITY_SERVICE_KEY manquant dans .env")
	} else {
		log.Println("✅ Fournisseur d'identité configuré :", base)
	}
	return &GoTrueClient{
		BaseURL:    base,
		ServiceKey: key,
		HTTP:       &http.Client{Timeout: 15 * time.Second},
	}
}

// gotrueUser est la forme brute renvoyée par /admin/users
type gotrueUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    *time.Time             `json:"created_at"`
	UpdatedAt    *time.Time             `json:"updated_at"`
}

func (u gotrueUser) toAccount() models.Account {
	return models.Account{
		ID:           u.ID,
		Email:        u.Email,
		AppMetadata:  u.AppMetadata,
		UserMetadata: u.UserMetadata,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c *GoTrueClient) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	req.Header.Set("apikey", c.ServiceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Erreur réseau : pas de status exploitable, le classifieur la
		// traitera comme transitoire.
		return nil, fmt.Errorf("requête fournisseur échouée: %w", err)
	}
	return resp, nil
}

// decodeError reconstruit un ProviderError depuis les différentes formes de
// réponse d'erreur observées (msg, error/error_description, error_code).
func decodeError(resp *http.Response) *ProviderError {
	defer resp.Body.Close()

	var raw struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
	}
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &raw)

	msg := raw.Msg
	if msg == "" {
		msg = raw.Message
	}
	if msg == "" {
		msg = raw.ErrorDescription
	}
	if msg == "" {
		msg = raw.Error
	}
	if msg == "" {
		msg = string(data)
	}

	return &ProviderError{
		Status:  resp.StatusCode,
		Code:    raw.ErrorCode,
		Message: msg,
	}
}

// List récupère tous les comptes. La liste est toujours relue en entier :
// jamais de mise à jour incrémentale côté serveur.
func (c *GoTrueClient) List(ctx context.Context) ([]models.Account, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/users", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	defer resp.Body.Close()

	var payload struct {
		Users []gotrueUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("décodage liste comptes: %w", err)
	}

	accounts := make([]models.Account, 0, len(payload.Users))
	for _, u := range payload.Users {
		accounts = append(accounts, u.toAccount())
	}
	return accounts, nil
}

func (c *GoTrueClient) Create(ctx context.Context, email, password string, appMetadata, userMetadata map[string]interface{}) (models.Account, error) {
	body := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	if appMetadata != nil {
		body["app_metadata"] = appMetadata
	}
	if userMetadata != nil {
		body["user_metadata"] = userMetadata
	}

	resp, err := c.do(ctx, http.MethodPost, "/admin/users", body)
	if err != nil {
		return models.Account{}, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.Account{}, decodeError(resp)
	}
	defer resp.Body.Close()

	var u gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return models.Account{}, fmt.Errorf("décodage compte créé: %w", err)
	}
	return u.toAccount(), nil
}

// Update n'envoie QUE les champs présents dans req. Le champ AdminColumn est
// ignoré ici : il concerne la table locale, pas le fournisseur.
func (c *GoTrueClient) Update(ctx context.Context, id string, req models.UpdateRequest) error {
	body := map[string]interface{}{}
	if req.Email != nil {
		body["email"] = *req.Email
	}
	if req.Password != nil {
		body["password"] = *req.Password
	}
	if req.AppMetadata != nil {
		body["app_metadata"] = req.AppMetadata
	}
	if req.UserMetadata != nil {
		body["user_metadata"] = req.UserMetadata
	}
	if len(body) == 0 {
		return nil
	}

	resp, err := c.do(ctx, http.MethodPut, "/admin/users/"+id, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *GoTrueClient) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/admin/users/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeError(resp)
	}
	return nil
}

// Token vérifie les identifiants d'un opérateur via le grant password du
// fournisseur. Utilisé uniquement par le login de la console d'admin.
func (c *GoTrueClient) Token(ctx context.Context, email, password string) (models.Account, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	resp, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", body)
	if err != nil {
		return models.Account{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return models.Account{}, decodeError(resp)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string     `json:"access_token"`
		User        gotrueUser `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Account{}, fmt.Errorf("décodage réponse token: %w", err)
	}
	return payload.User.toAccount(), nil
}
