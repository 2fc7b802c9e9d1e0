package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/keygate/core"
	"github.com/layer-3/keygate/service"
)

// Handlers contains the HTTP handlers for the auth, key and record
// endpoints.
type Handlers struct {
	authService   *service.AuthService
	keyService    *service.KeyService
	recordService *service.RecordService

	sessionTTL    time.Duration
	secureCookies bool
}

// NewHandlers creates the handler set.
func NewHandlers(
	authService *service.AuthService,
	keyService *service.KeyService,
	recordService *service.RecordService,
	sessionTTL time.Duration,
	secureCookies bool,
) *Handlers {
	return &Handlers{
		authService:   authService,
		keyService:    keyService,
		recordService: recordService,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// LoginRequest carries a signed authentication message.
type LoginRequest struct {
	Message   core.Message `json:"message" binding:"required"`
	Signature string       `json:"signature" binding:"required"`
}

// DeleteKeyRequest names the key to delete by value.
type DeleteKeyRequest struct {
	KeyValue string `json:"keyValue" binding:"required"`
}

// KeyResponse is one entry of a key listing. The secret value is only
// ever returned to its owner.
type KeyResponse struct {
	KeyValue  string            `json:"keyValue"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RecordRequest addresses one document for the owner-filtered read. A
// one-shot signed message may ride along instead of a session.
type RecordRequest struct {
	Collection string        `json:"collection"`
	Document   string        `json:"document" binding:"required"`
	Message    *core.Message `json:"message,omitempty"`
	Signature  string        `json:"signature,omitempty"`
}

// Nonce handles the challenge request.
func (h *Handlers) Nonce(c *gin.Context) {
	nonce, err := h.authService.CreateNonce(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to create nonce")
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Login handles the login request. Any verification failure maps to an
// opaque 401; the reason is logged, never transmitted, so a forger
// learns nothing from the response.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, session, err := h.authService.Login(c.Request.Context(), &req.Message, req.Signature)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
			return
		}
		slog.Info("login rejected", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid message or signature"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(h.sessionTTL.Seconds()), "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.sessionTTL.Seconds()),
		"address":      session.Address,
	})
}

// Logout clears the session cookie. There is nothing to revoke server
// side; the client stops sending the token.
func (h *Handlers) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context(), c.GetString(userAddressKey))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the caller's verified address.
func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"address": c.GetString(userAddressKey)})
}

// CreateKey creates one key for the caller.
func (h *Handlers) CreateKey(c *gin.Context) {
	key, err := h.keyService.Create(c.Request.Context(), c.GetString(userAddressKey))
	if err != nil {
		h.respondError(c, err, "Failed to create key")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key.Value})
}

// ListKeys lists the caller's keys, newest first.
func (h *Handlers) ListKeys(c *gin.Context) {
	keys, err := h.keyService.List(c.Request.Context(), c.GetString(userAddressKey))
	if err != nil {
		h.respondError(c, err, "Failed to list keys")
		return
	}

	items := make([]KeyResponse, 0, len(keys))
	for _, key := range keys {
		items = append(items, KeyResponse{
			KeyValue:  key.Value,
			CreatedAt: key.CreatedAt,
			Metadata:  key.Metadata,
		})
	}

	c.JSON(http.StatusOK, gin.H{"keys": items})
}

// DeleteKey deletes one of the caller's keys by value.
func (h *Handlers) DeleteKey(c *gin.Context) {
	var req DeleteKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyValue is required"})
		return
	}

	err := h.keyService.Delete(c.Request.Context(), c.GetString(userAddressKey), req.KeyValue)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrKeyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		case errors.Is(err, core.ErrKeyForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this key"})
		default:
			h.respondError(c, err, "Failed to delete key")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Key deleted"})
}

// Records handles the unauthenticated read path: a whole-collection
// dump, or one document by id.
func (h *Handlers) Records(c *gin.Context) {
	collection := c.Query("collection")
	document := c.Query("document")
	ctx := c.Request.Context()

	if document != "" {
		doc, err := h.recordService.Document(ctx, collection, document)
		if err != nil {
			if errors.Is(err, core.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
				return
			}
			h.respondError(c, err, "Failed to read document")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": doc})
		return
	}

	docs, err := h.recordService.Collection(ctx, collection)
	if err != nil {
		h.respondError(c, err, "Failed to read collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(docs), "data": docs})
}

// OwnerRecords handles the identity-gated read path: the named document
// filtered to the caller's own sub-fields. The caller presents exactly
// one credential form: a session, or a signed message in the body.
func (h *Handlers) OwnerRecords(c *gin.Context) {
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cred, err := recordCredential(c, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cred == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing credential"})
		return
	}

	address, err := h.authService.ResolveCaller(c.Request.Context(), cred)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
			return
		}
		slog.Info("record credential rejected", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
		return
	}

	view, err := h.recordService.OwnerView(c.Request.Context(), req.Collection, req.Document, address)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.respondError(c, err, "Failed to read document")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// recordCredential picks the single credential form present on an
// owner-record request. Presenting both forms at once is an error, not
// a fallback chain.
func recordCredential(c *gin.Context, req *RecordRequest) (service.Credential, error) {
	token := sessionToken(c)
	signed := req.Message != nil || req.Signature != ""

	switch {
	case token != "" && signed:
		return nil, errors.New("present exactly one credential form")
	case token != "":
		return service.SessionCredential{Token: token}, nil
	case req.Message != nil && req.Signature != "":
		return service.SignedMessageCredential{Message: req.Message, Signature: req.Signature}, nil
	case signed:
		return nil, errors.New("signed message credential requires both message and signature")
	default:
		return nil, nil
	}
}

// respondError maps store failures to 503 and everything unexpected to
// an opaque 500; internal detail goes to the log only.
func (h *Handlers) respondError(c *gin.Context, err error, summary string) {
	if errors.Is(err, core.ErrStoreUnavailable) {
		slog.Error("store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
		return
	}
	slog.Error(summary, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": summary})
}
