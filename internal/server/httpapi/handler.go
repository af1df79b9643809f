// Package httpapi exposes the auth flows and the public-key directory over
// HTTP/JSON.
package httpapi

import (
	"net/http"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/logging"
	"github.com/whispervault/whispervault/internal/server/services"
)

// Handler holds the route handlers and their dependencies.
type Handler struct {
	auth *services.AuthService
	keys *services.KeyDirectoryService
	log  logging.Logger
}

func NewHandler(auth *services.AuthService, keys *services.KeyDirectoryService, log logging.Logger) *Handler {
	return &Handler{auth: auth, keys: keys, log: log.With("module", "httpapi")}
}

// Routes builds the full route table.
func (h *Handler) Routes(mw *AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("GET /confirm/{token}", h.confirm)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /resend-confirmation", h.resendConfirmation)

	mux.Handle("POST /2fa/verify", mw.RequireChallenge(http.HandlerFunc(h.verifyTOTP)))
	mux.Handle("POST /2fa/send-sms", mw.RequireToken(http.HandlerFunc(h.sendSMS)))
	mux.Handle("POST /2fa/verify-sms", mw.RequireChallenge(http.HandlerFunc(h.verifySMS)))

	mux.Handle("POST /keys", mw.RequireSession(http.HandlerFunc(h.setPublicKey)))
	mux.Handle("GET /keys/{userId}", mw.RequireSession(http.HandlerFunc(h.getPublicKey)))

	return Chain(mux, RequestLogger(h.log), Recover(h.log))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	_, err := h.auth.Register(r.Context(), services.RegisterParams{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "confirmation_required",
		"message": "Registration successful! Please check your email to confirm your account.",
	})
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	res, err := h.auth.Confirm(r.Context(), r.PathValue("token"))
	if err != nil {
		// a consumed or unknown link is a client error, not a missing resource
		writeMappedError(w, err,
			override(common.ErrorNotFound, http.StatusBadRequest, "Invalid or expired confirmation token"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "confirmed",
		"otpauthUrl": res.OtpauthURL,
		"qrImg":      res.QRDataURL,
		"manualCode": res.ManualCode,
		"tempToken":  res.TempToken,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	tempToken, err := h.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeMappedError(w, err,
			override(common.ErrorUnauthorized, http.StatusUnauthorized, "Invalid credentials"),
			override(common.ErrorForbidden, http.StatusForbidden, "Please confirm your email before logging in."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "2fa_required",
		"tempToken": tempToken,
	})
}

func (h *Handler) resendConfirmation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Email required")
		return
	}

	if err := h.auth.ResendConfirmation(r.Context(), body.Email); err != nil {
		writeMappedError(w, err,
			override(services.ErrAlreadyConfirmed, http.StatusBadRequest, "Email already confirmed"),
			override(common.ErrorNotFound, http.StatusNotFound, "User not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "resent",
		"message": "Confirmation email resent.",
	})
}

func (h *Handler) verifyTOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	claims := ClaimsFromContext(r.Context())
	session, err := h.auth.VerifyTOTP(r.Context(), claims.UserID, body.Code)
	if err != nil {
		writeMappedError(w, err,
			override(services.ErrNo2FASetup, http.StatusUnauthorized, "No 2FA setup"),
			override(services.ErrInvalidCode, http.StatusUnauthorized, "Invalid code"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": session.Token,
		"user":  session.Account.SafeProjection(),
	})
}

func (h *Handler) sendSMS(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if err := h.auth.SendSMSCode(r.Context(), claims.UserID); err != nil {
		writeMappedError(w, err,
			override(services.ErrNoPhoneOnFile, http.StatusBadRequest, "No phone number on file."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "SMS code sent."})
}

func (h *Handler) verifySMS(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	claims := ClaimsFromContext(r.Context())
	session, err := h.auth.VerifySMSCode(r.Context(), claims.UserID, body.Code)
	if err != nil {
		writeMappedError(w, err,
			override(services.ErrNoSMSCodePending, http.StatusBadRequest, "No SMS code sent or code expired."),
			override(services.ErrInvalidCode, http.StatusUnauthorized, "Invalid SMS code."))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": session.Token,
		"user":  session.Account.SafeProjection(),
	})
}

func (h *Handler) setPublicKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PublicKey string `json:"publicKey"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	claims := ClaimsFromContext(r.Context())
	if err := h.keys.SetPublicKey(r.Context(), claims.UserID, body.PublicKey); err != nil {
		writeMappedError(w, err,
			override(common.ErrorValidation, http.StatusBadRequest, "publicKey required"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getPublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.GetPublicKey(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeMappedError(w, err)
		return
	}
	// unknown users read the same as users without a key
	writeJSON(w, http.StatusOK, map[string]any{"publicKey": key})
}
