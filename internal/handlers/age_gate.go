package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	ageGateSession = "age-gate"
	ageVerifiedKey = "verified"

	AgeRefusalMessage = "You must be of legal drinking age to enter this site."
)

// AgeGate records the shopper's age confirmation in a cookie session. The flag
// lives apart from the store collections.
type AgeGate struct {
	SessionStore sessions.Store
}

func (g *AgeGate) Verified(r *http.Request) bool {
	session, err := g.SessionStore.Get(r, ageGateSession)
	if err != nil {
		return false
	}
	ok, _ := session.Values[ageVerifiedKey].(bool)
	return ok
}

func (g *AgeGate) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"verified": g.Verified(r)})
}

func (g *AgeGate) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Verified bool `json:"verified"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Verified {
		WriteJSON(w, http.StatusForbidden, map[string]any{"verified": false, "error": AgeRefusalMessage})
		return
	}

	// a stale or undecodable cookie just gets a fresh session
	session, _ := g.SessionStore.Get(r, ageGateSession)
	session.Values[ageVerifiedKey] = true
	session.Options.Path = "/"
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save session.")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// Require blocks shoppers who have not confirmed their age. API callers get a
// 403; page requests get the plain refusal notice.
func (g *AgeGate) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.Verified(r) {
			next(w, r)
			return
		}
		slog.Debug("Age gate blocked request", "path", r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusForbidden, AgeRefusalMessage)
			return
		}
		http.Error(w, AgeRefusalMessage, http.StatusForbidden)
	}
}
