package handlers

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"familycircle/internal/security"
	"familycircle/internal/service"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	googleJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"

	oauthStateTTL = 10 * time.Minute
	jwksCacheTTL  = 24 * time.Hour
)

// OAuthHandler implements the Google sign-in flow: redirect out with a
// state token, then verify the returned id_token against Google's
// published keys before trusting its identity claims.
type OAuthHandler struct {
	auth   *service.AuthService
	config *oauth2.Config

	mu     sync.Mutex
	states map[string]time.Time

	keys       map[string]*rsa.PublicKey
	keyFetched time.Time
}

func NewOAuthHandler(auth *service.AuthService, clientID, clientSecret, baseURL string) *OAuthHandler {
	return &OAuthHandler{
		auth: auth,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		states: make(map[string]time.Time),
	}
}

// Enabled reports whether Google sign-in is configured.
func (h *OAuthHandler) Enabled() bool {
	return h.config.ClientID != "" && h.config.ClientSecret != ""
}

// StartGoogleOAuth redirects the client to Google's consent screen.
func (h *OAuthHandler) StartGoogleOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		respondError(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	state, err := security.GenerateSecureToken(16)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.mu.Lock()
	h.states[state] = time.Now().Add(oauthStateTTL)
	for s, expiry := range h.states {
		if time.Now().After(expiry) {
			delete(h.states, s)
		}
	}
	h.mu.Unlock()

	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback exchanges the authorization code, verifies the id_token,
// and signs the user in.
func (h *OAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		respondError(w, http.StatusNotImplemented, "Google sign-in is not configured")
		return
	}

	if !h.consumeState(r.URL.Query().Get("state")) {
		respondError(w, http.StatusBadRequest, "Invalid or expired sign-in attempt")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("Google code exchange failed")
		respondError(w, http.StatusBadGateway, "Could not complete Google sign-in")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		respondError(w, http.StatusBadGateway, "Google did not return an identity token")
		return
	}

	claims, err := h.verifyIDToken(rawIDToken)
	if err != nil {
		log.Error().Err(err).Msg("Google id_token verification failed")
		respondError(w, http.StatusUnauthorized, "Could not verify Google identity")
		return
	}

	session, user, err := h.auth.OAuthLogin("google", claims.Subject, claims.Email, claims.GivenName, claims.FamilyName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

func (h *OAuthHandler) consumeState(state string) bool {
	if state == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	expiry, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return time.Now().Before(expiry)
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	jwt.RegisteredClaims
}

// verifyIDToken checks the token signature against Google's JWKS and the
// issuer and audience claims against our configuration.
func (h *OAuthHandler) verifyIDToken(rawToken string) (*googleClaims, error) {
	claims := &googleClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		return h.publicKey(kid)
	},
		jwt.WithAudience(h.config.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Issuer != "https://accounts.google.com" && claims.Issuer != "accounts.google.com" {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("google account email is not verified")
	}
	return claims, nil
}

func (h *OAuthHandler) publicKey(kid string) (*rsa.PublicKey, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if key, ok := h.keys[kid]; ok && time.Since(h.keyFetched) < jwksCacheTTL {
		return key, nil
	}

	keys, err := fetchJWKS(googleJWKSURL)
	if err != nil {
		return nil, err
	}
	h.keys = keys
	h.keyFetched = time.Now()

	key, ok := h.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no key found for kid %q", kid)
	}
	return key, nil
}

func fetchJWKS(url string) (map[string]*rsa.PublicKey, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("bad modulus for kid %q: %w", k.Kid, err)
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("bad exponent for kid %q: %w", k.Kid, err)
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("jwks document contained no rsa keys")
	}
	return keys, nil
}
