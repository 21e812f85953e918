package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookieName = "ecoquiz_flash"

// Flash is a one-shot notice shown on the next rendered page only.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"` // success, danger, warning, info
}

// SetFlash queues a notice for the next rendered page
func SetFlash(w http.ResponseWriter, message, category string) {
	payload, err := json.Marshal(Flash{Message: message, Category: category})
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads the pending notice, if any, and clears it so it renders
// exactly once.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flash Flash
	if err := json.Unmarshal(payload, &flash); err != nil {
		return nil
	}

	return &flash
}
