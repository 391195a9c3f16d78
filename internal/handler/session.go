package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iammohit64/wrap-up/internal/httputil"
	"github.com/iammohit64/wrap-up/internal/model"
)

const sessionTTL = 24 * time.Hour

// SessionHandler mints session tokens. Two flavours exist: wallet sessions
// for connected wallets and anonymous sessions for drive-by readers who still
// want to comment. Both carry the identity in the "sub" claim, so everything
// downstream treats them uniformly.
type SessionHandler struct {
	secret string
}

func NewSessionHandler(secret string) *SessionHandler {
	return &SessionHandler{secret: secret}
}

type sessionResponse struct {
	Token     string `json:"token"`
	Identity  string `json:"identity"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *SessionHandler) mint(identity string) (sessionResponse, error) {
	expiresAt := time.Now().Add(sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": identity,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		return sessionResponse{}, err
	}
	return sessionResponse{
		Token:     signed,
		Identity:  identity,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Anonymous handles POST /session/anonymous
// Mints an ephemeral anon_ identity. These never resolve to a profile and
// always display as "Anonymous".
func (h *SessionHandler) Anonymous(w http.ResponseWriter, r *http.Request) {
	identity := model.AnonPrefix + uuid.NewString()

	resp, err := h.mint(identity)
	if err != nil {
		log.Printf("[ERROR] Anonymous session handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to create session")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, resp)
}

type walletSessionRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// Wallet handles POST /session/wallet
// Mints a session for a wallet address. Proof of key ownership happens in
// the wallet flow upstream of this API; the address is taken as presented.
func (h *SessionHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	var req walletSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	address := strings.TrimSpace(req.WalletAddress)
	if address == "" {
		httputil.WriteBadRequest(w, "Wallet address is required")
		return
	}
	if strings.HasPrefix(address, model.AnonPrefix) {
		httputil.WriteBadRequest(w, "Wallet address cannot use the anonymous prefix")
		return
	}

	resp, err := h.mint(address)
	if err != nil {
		log.Printf("[ERROR] Wallet session handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to create session")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, resp)
}
