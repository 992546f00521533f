package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/sailor-swift/internal/database"
	logpkg "github.com/benvon/sailor-swift/internal/logger"
	"github.com/benvon/sailor-swift/internal/middleware"
	"github.com/benvon/sailor-swift/internal/models"
	"github.com/benvon/sailor-swift/internal/queue"
	"github.com/benvon/sailor-swift/internal/request"
	"github.com/benvon/sailor-swift/internal/services/auth"
	"github.com/benvon/sailor-swift/internal/services/oidc"
	"github.com/benvon/sailor-swift/internal/sessions"
	"github.com/benvon/sailor-swift/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// NonceTTL is how long a wallet sign-in nonce stays valid.
	NonceTTL = 5 * time.Minute

	msgInvalidLogin        = "Invalid email or password"
	msgDeactivated         = "Account is deactivated"
	msgInvalidCredential   = "Could not validate credentials"
	msgGoogleNotConfigured = "Google sign-in is not configured"
	msgInvalidNonce        = "Invalid or expired nonce"
	msgReservedEmail       = "Email domain is reserved"
)

var (
	errReservedEmail    = errors.New("email uses the reserved wallet domain")
	errUnverifiedGoogle = errors.New("google email is not verified")
)

// TokenService issues and verifies the API's own tokens.
type TokenService interface {
	IssuePair(userID uuid.UUID) (*auth.TokenPair, error)
	Verify(token string, typ models.TokenType) (*models.TokenClaims, error)
}

// GoogleTokenVerifier verifies Google ID tokens.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*oidc.GoogleIdentity, error)
}

// GoogleLoginConfigurer exposes the public Google client settings.
type GoogleLoginConfigurer interface {
	LoginConfig() oidc.LoginConfig
}

// GoogleCodeExchanger turns an authorization code into a Google ID token.
type GoogleCodeExchanger interface {
	ExchangeIDToken(ctx context.Context, code string) (string, error)
}

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	users     database.UserRepositoryInterface
	tokens    TokenService
	sessions  sessions.Store
	google    GoogleTokenVerifier
	googleCfg GoogleLoginConfigurer
	exchanger GoogleCodeExchanger
	events    queue.Publisher
	rateLimit func(http.Handler) http.Handler
	logger    *zap.Logger
	now       func() time.Time
}

// AuthOption configures optional collaborators of an AuthHandler.
type AuthOption func(*AuthHandler)

// WithGoogleVerifier enables POST /auth/google.
func WithGoogleVerifier(v GoogleTokenVerifier) AuthOption {
	return func(h *AuthHandler) { h.google = v }
}

// WithGoogleClient enables GET /auth/google/config, and POST
// /auth/google/callback when c can also exchange authorization codes.
func WithGoogleClient(c GoogleLoginConfigurer) AuthOption {
	return func(h *AuthHandler) {
		h.googleCfg = c
		if ex, ok := c.(GoogleCodeExchanger); ok {
			h.exchanger = ex
		}
	}
}

// WithEventPublisher publishes auth events to p.
func WithEventPublisher(p queue.Publisher) AuthOption {
	return func(h *AuthHandler) { h.events = p }
}

// WithRateLimit wraps the sign-in and wallet nonce endpoints with mw.
func WithRateLimit(mw func(http.Handler) http.Handler) AuthOption {
	return func(h *AuthHandler) { h.rateLimit = mw }
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users database.UserRepositoryInterface, tokens TokenService, store sessions.Store, logger *zap.Logger, opts ...AuthOption) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &AuthHandler{
		users:    users,
		tokens:   tokens,
		sessions: store,
		events:   queue.NoopPublisher{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the auth routes under /auth.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	ar := r.PathPrefix("/auth").Subrouter()

	signIn := func(f http.HandlerFunc) http.Handler {
		var handler http.Handler = f
		if h.rateLimit != nil {
			handler = h.rateLimit(handler)
		}
		return middleware.ContentType(handler)
	}
	ar.Handle("/signup", signIn(h.Signup)).Methods("POST")
	ar.Handle("/login", signIn(h.Login)).Methods("POST")
	ar.Handle("/google", signIn(h.GoogleLogin)).Methods("POST")
	ar.Handle("/google/callback", signIn(h.GoogleCallback)).Methods("POST")
	ar.Handle("/wallet", signIn(h.WalletLogin)).Methods("POST")
	ar.Handle("/refresh", middleware.ContentType(http.HandlerFunc(h.Refresh))).Methods("POST")
	ar.HandleFunc("/google/config", h.GoogleConfig).Methods("GET")

	var nonce http.Handler = http.HandlerFunc(h.WalletNonce)
	if h.rateLimit != nil {
		nonce = h.rateLimit(nonce)
	}
	ar.Handle("/wallet/nonce", nonce).Methods("GET")

	requireAuth := middleware.RequireAuth(h.tokens, h.sessions, h.users, h.logger)
	ar.Handle("/me", requireAuth(http.HandlerFunc(h.GetMe))).Methods("GET")
	ar.Handle("/logout", requireAuth(middleware.ContentType(http.HandlerFunc(h.Logout)))).Methods("POST")
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=255,unreserved_email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Username  string `json:"username" validate:"omitempty,username"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /auth/refresh and the optional body of POST /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// GoogleLoginRequest is the body of POST /auth/google.
type GoogleLoginRequest struct {
	GoogleToken string `json:"google_token" validate:"required"`
}

// GoogleCallbackRequest is the body of POST /auth/google/callback.
type GoogleCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

// WalletLoginRequest is the body of POST /auth/wallet.
type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature" validate:"required,wallet_signature"`
	Message       string `json:"message" validate:"required,max=512"`
}

// WalletNonceResponse is returned by GET /auth/wallet/nonce.
type WalletNonceResponse struct {
	Address         string `json:"address"`
	ChecksumAddress string `json:"checksum_address"`
	Nonce           string `json:"nonce"`
	Message         string `json:"message"`
}

// Signup creates a password account and signs it in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	ctx := r.Context()
	email := normalizeEmail(req.Email)

	if _, err := h.users.GetByEmail(ctx, email); err == nil {
		respondJSONError(w, r, http.StatusBadRequest, "Email already registered", h.logger)
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.databaseError(w, r, "failed_to_check_email", err)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username != "" {
		if _, err := h.users.GetByUsername(ctx, username); err == nil {
			respondJSONError(w, r, http.StatusBadRequest, "Username already taken", h.logger)
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			h.databaseError(w, r, "failed_to_check_username", err)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed_to_hash_password", zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Failed to create user", h.logger)
		return
	}

	user := &models.User{
		Email:        email,
		Username:     models.StringPtr(username),
		FirstName:    models.StringPtr(validation.SanitizeText(req.FirstName)),
		LastName:     models.StringPtr(validation.SanitizeText(req.LastName)),
		PasswordHash: &hash,
		IsActive:     true,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Lost a race with a concurrent signup.
			msg := "Email already registered"
			if strings.Contains(err.Error(), "username") {
				msg = "Username already taken"
			}
			respondJSONError(w, r, http.StatusBadRequest, msg, h.logger)
			return
		}
		h.databaseError(w, r, "failed_to_create_user", err)
		return
	}

	h.logger.Info("user_signed_up",
		zap.String("user_id", user.ID.String()),
		zap.String("email", logpkg.MaskEmail(user.Email)),
	)
	h.publish(ctx, queue.EventUserSignedUp, &user.ID, map[string]any{"method": "password"})
	h.respondTokens(w, r, user)
}

// Login signs in with email and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	ctx := r.Context()
	email := normalizeEmail(req.Email)

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.databaseError(w, r, "failed_to_load_user", err)
		return
	}
	if user == nil || !user.HasPassword() || !auth.VerifyPassword(req.Password, *user.PasswordHash) {
		var userID *uuid.UUID
		if user != nil {
			userID = &user.ID
		}
		h.publish(ctx, queue.EventUserLoginFailed, userID, map[string]any{
			"method": "password",
			"ip":     request.ClientIP(r),
		})
		respondJSONError(w, r, http.StatusUnauthorized, msgInvalidLogin, h.logger)
		return
	}
	if !user.IsActive {
		respondJSONError(w, r, http.StatusUnauthorized, msgDeactivated, h.logger)
		return
	}

	h.publish(ctx, queue.EventUserLoggedIn, &user.ID, map[string]any{"method": "password"})
	h.respondTokens(w, r, user)
}

// GetMe returns the authenticated user.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, r, http.StatusUnauthorized, msgInvalidCredential, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, user.ToResponse())
}

// Refresh exchanges a refresh token for a new pair. The presented refresh token
// is revoked so it cannot be replayed.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	ctx := r.Context()

	claims, err := h.tokens.Verify(req.RefreshToken, models.TokenTypeRefresh)
	if err != nil {
		h.logger.Debug("refresh_token_rejected", zap.String("error", logpkg.SanitizeError(err)))
		h.unauthorized(w, r)
		return
	}
	revoked, err := h.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		h.sessionStoreError(w, r, err)
		return
	}
	if revoked {
		h.unauthorized(w, r)
		return
	}

	user, ok := h.loadTokenUser(w, r, claims)
	if !ok {
		return
	}
	if !user.IsActive {
		respondJSONError(w, r, http.StatusUnauthorized, msgDeactivated, h.logger)
		return
	}

	if err := h.sessions.Revoke(ctx, claims.ID, claims.Remaining(h.now())); err != nil {
		h.sessionStoreError(w, r, err)
		return
	}

	h.publish(ctx, queue.EventTokenRefreshed, &user.ID, nil)
	h.respondTokens(w, r, user)
}

// Logout revokes the caller's access token and, when supplied, its refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := request.ClaimsFromContext(r)
	user := request.UserFromContext(r)
	if claims == nil || user == nil {
		h.unauthorized(w, r)
		return
	}

	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	now := h.now()
	if err := h.sessions.Revoke(ctx, claims.ID, claims.Remaining(now)); err != nil {
		h.sessionStoreError(w, r, err)
		return
	}
	if req.RefreshToken != "" {
		// Refresh tokens that are invalid or belong to someone else are ignored.
		refresh, err := h.tokens.Verify(req.RefreshToken, models.TokenTypeRefresh)
		if err == nil && refresh.Subject == claims.Subject {
			if err := h.sessions.Revoke(ctx, refresh.ID, refresh.Remaining(now)); err != nil {
				h.sessionStoreError(w, r, err)
				return
			}
		}
	}

	h.publish(ctx, queue.EventUserLoggedOut, &user.ID, nil)
	respondMessage(w, http.StatusOK, "Successfully logged out")
}

// GoogleLogin signs in with a Google ID token, linking or creating the account.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		respondJSONError(w, r, http.StatusServiceUnavailable, msgGoogleNotConfigured, h.logger)
		return
	}
	var req GoogleLoginRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	h.completeGoogleLogin(w, r, req.GoogleToken)
}

// GoogleCallback finishes the authorization code flow started from
// GET /auth/google/config.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil || h.exchanger == nil {
		respondJSONError(w, r, http.StatusServiceUnavailable, msgGoogleNotConfigured, h.logger)
		return
	}
	var req GoogleCallbackRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	idToken, err := h.exchanger.ExchangeIDToken(r.Context(), req.Code)
	if err != nil {
		h.logger.Warn("google_code_exchange_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, r, http.StatusUnauthorized, "Invalid authorization code", h.logger)
		return
	}
	h.completeGoogleLogin(w, r, idToken)
}

func (h *AuthHandler) completeGoogleLogin(w http.ResponseWriter, r *http.Request, idToken string) {
	ctx := r.Context()

	identity, err := h.google.Verify(ctx, idToken)
	if errors.Is(err, oidc.ErrNotConfigured) {
		respondJSONError(w, r, http.StatusServiceUnavailable, msgGoogleNotConfigured, h.logger)
		return
	}
	if err != nil {
		h.logger.Warn("google_token_rejected", zap.String("error", logpkg.SanitizeError(err)))
		respondJSONError(w, r, http.StatusUnauthorized, "Invalid Google token", h.logger)
		return
	}

	user, created, err := h.findOrCreateGoogleUser(ctx, identity)
	if errors.Is(err, errReservedEmail) {
		respondJSONError(w, r, http.StatusBadRequest, msgReservedEmail, h.logger)
		return
	}
	if errors.Is(err, errUnverifiedGoogle) {
		respondJSONError(w, r, http.StatusConflict, "An account with this email already exists; verify your Google email to link it", h.logger)
		return
	}
	if err != nil {
		h.databaseError(w, r, "failed_to_resolve_google_user", err)
		return
	}
	if !user.IsActive {
		respondJSONError(w, r, http.StatusUnauthorized, msgDeactivated, h.logger)
		return
	}

	eventType := queue.EventUserLoggedIn
	if created {
		eventType = queue.EventUserSignedUp
	}
	h.publish(ctx, eventType, &user.ID, map[string]any{"method": "google"})
	h.respondTokens(w, r, user)
}

func (h *AuthHandler) findOrCreateGoogleUser(ctx context.Context, identity *oidc.GoogleIdentity) (*models.User, bool, error) {
	user, err := h.users.GetByGoogleID(ctx, identity.Subject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, err
	}

	email := normalizeEmail(identity.Email)
	if validation.IsReservedEmail(email) {
		return nil, false, errReservedEmail
	}
	user, err = h.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Only a Google-verified email may claim an existing account.
		if !identity.EmailVerified {
			return nil, false, errUnverifiedGoogle
		}
		user.GoogleID = &identity.Subject
		user.IsVerified = true
		if err := h.users.Update(ctx, user); err != nil {
			return nil, false, err
		}
		h.logger.Info("google_account_linked", zap.String("user_id", user.ID.String()))
		return user, false, nil
	case !errors.Is(err, database.ErrNotFound):
		return nil, false, err
	}

	user = &models.User{
		Email:      email,
		FirstName:  models.StringPtr(validation.SanitizeText(identity.GivenName)),
		LastName:   models.StringPtr(validation.SanitizeText(identity.FamilyName)),
		GoogleID:   &identity.Subject,
		IsActive:   true,
		IsVerified: identity.EmailVerified,
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// GoogleConfig returns what a frontend needs to start Google sign-in.
func (h *AuthHandler) GoogleConfig(w http.ResponseWriter, r *http.Request) {
	if h.googleCfg == nil {
		respondJSONError(w, r, http.StatusServiceUnavailable, msgGoogleNotConfigured, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, h.googleCfg.LoginConfig())
}

// WalletNonce issues a single-use nonce and the message the wallet must sign.
func (h *AuthHandler) WalletNonce(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("address")
	if !auth.IsValidAddress(raw) {
		respondJSONError(w, r, http.StatusBadRequest, "Invalid wallet address", h.logger)
		return
	}
	address := auth.NormalizeAddress(raw)
	checksummed, err := auth.ChecksumAddress(address)
	if err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Invalid wallet address", h.logger)
		return
	}

	nonce, err := sessions.NewNonce()
	if err != nil {
		h.logger.Error("failed_to_generate_nonce", zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Failed to generate nonce", h.logger)
		return
	}
	if err := h.sessions.PutNonce(r.Context(), nonce, address, NonceTTL); err != nil {
		h.sessionStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, WalletNonceResponse{
		Address:         address,
		ChecksumAddress: checksummed,
		Nonce:           nonce,
		Message:         auth.AuthMessage(nonce),
	})
}

// WalletLogin signs in with a personal_sign signature over the nonce message.
func (h *AuthHandler) WalletLogin(w http.ResponseWriter, r *http.Request) {
	var req WalletLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, r, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	raw := strings.TrimSpace(req.WalletAddress)
	if raw == "" {
		respondJSONError(w, r, http.StatusBadRequest, "Wallet address is required", h.logger)
		return
	}
	if !auth.IsValidAddress(raw) {
		respondJSONError(w, r, http.StatusBadRequest, "Invalid wallet address", h.logger)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondJSONError(w, r, http.StatusUnprocessableEntity, err.Error(), h.logger)
		return
	}
	ctx := r.Context()
	address := auth.NormalizeAddress(raw)

	nonce, ok := strings.CutPrefix(req.Message, auth.AuthMessagePrefix)
	if !ok || nonce == "" {
		respondJSONError(w, r, http.StatusUnauthorized, "Invalid authentication message", h.logger)
		return
	}
	issuedTo, err := h.sessions.ConsumeNonce(ctx, nonce)
	if errors.Is(err, sessions.ErrNonceNotFound) {
		respondJSONError(w, r, http.StatusUnauthorized, msgInvalidNonce, h.logger)
		return
	}
	if err != nil {
		h.sessionStoreError(w, r, err)
		return
	}
	if issuedTo != address {
		respondJSONError(w, r, http.StatusUnauthorized, msgInvalidNonce, h.logger)
		return
	}
	if !auth.VerifySignature(address, req.Message, req.Signature) {
		h.logger.Warn("wallet_signature_rejected", zap.String("wallet", logpkg.MaskWallet(address)))
		respondJSONError(w, r, http.StatusUnauthorized, "Invalid signature", h.logger)
		return
	}

	created := false
	user, err := h.users.GetByWalletAddress(ctx, address)
	if errors.Is(err, database.ErrNotFound) {
		user = &models.User{
			Email:         validation.WalletEmail(address),
			WalletAddress: &address,
			IsActive:      true,
			IsVerified:    true,
		}
		err = h.users.Create(ctx, user)
		created = err == nil
		if errors.Is(err, database.ErrDuplicate) {
			// A concurrent first sign-in may have created the account.
			user, err = h.users.GetByWalletAddress(ctx, address)
			if errors.Is(err, database.ErrNotFound) {
				h.logger.Warn("wallet_email_taken", zap.String("wallet", logpkg.MaskWallet(address)))
				respondJSONError(w, r, http.StatusConflict, "Wallet account email is already in use", h.logger)
				return
			}
		}
	}
	if err != nil {
		h.databaseError(w, r, "failed_to_resolve_wallet_user", err)
		return
	}
	if !user.IsActive {
		respondJSONError(w, r, http.StatusUnauthorized, msgDeactivated, h.logger)
		return
	}

	eventType := queue.EventUserLoggedIn
	if created {
		eventType = queue.EventUserSignedUp
	}
	h.publish(ctx, eventType, &user.ID, map[string]any{"method": "wallet"})
	h.respondTokens(w, r, user)
}

// loadTokenUser loads the subject of verified claims, answering 401 when it no longer exists.
func (h *AuthHandler) loadTokenUser(w http.ResponseWriter, r *http.Request, claims *models.TokenClaims) (*models.User, bool) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		h.unauthorized(w, r)
		return nil, false
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		h.unauthorized(w, r)
		return nil, false
	}
	if err != nil {
		h.databaseError(w, r, "failed_to_load_user", err)
		return nil, false
	}
	return user, true
}

func (h *AuthHandler) respondTokens(w http.ResponseWriter, r *http.Request, user *models.User) {
	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		h.logger.Error("failed_to_issue_tokens", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, r, http.StatusInternalServerError, "Failed to issue tokens", h.logger)
		return
	}
	respondJSON(w, http.StatusOK, models.NewTokenResponse(pair.AccessToken, pair.RefreshToken, user))
}

// publish sends an auth event. Failures are logged and never fail the request.
func (h *AuthHandler) publish(ctx context.Context, eventType queue.EventType, userID *uuid.UUID, metadata map[string]any) {
	if err := h.events.Publish(ctx, queue.NewEvent(eventType, userID, metadata)); err != nil {
		h.logger.Warn("failed_to_publish_auth_event",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
}

func (h *AuthHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondJSONError(w, r, http.StatusUnauthorized, msgInvalidCredential, h.logger)
}

func (h *AuthHandler) databaseError(w http.ResponseWriter, r *http.Request, event string, err error) {
	h.logger.Error(event, zap.Error(err), zap.String("path", logpkg.SanitizePath(r.URL.Path)))
	respondJSONError(w, r, http.StatusInternalServerError, "Database error", h.logger)
}

func (h *AuthHandler) sessionStoreError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("session_store_error", zap.Error(err))
	respondJSONError(w, r, http.StatusServiceUnavailable, "Session store unavailable", h.logger)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
