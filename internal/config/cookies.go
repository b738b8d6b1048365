package config

import (
	"net/http"
	"os"
	"strings"
	"time"
)

const participantCookie = "participant"

type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// NewCookies reads cookie attributes. Unlike the token secret they all
// have defaults suitable for local development.
func NewCookies() *Cookies {
	cookies := &Cookies{
		Domain:   os.Getenv("COOKIES_DOMAIN"),
		Secure:   os.Getenv("COOKIES_SECURE") != "0",
		SameSite: http.SameSiteLaxMode,
	}
	switch strings.ToUpper(os.Getenv("COOKIES_SAMESITE")) {
	case "DEFAULT":
		cookies.SameSite = http.SameSiteDefaultMode
	case "STRICT":
		cookies.SameSite = http.SameSiteStrictMode
	case "NONE":
		cookies.SameSite = http.SameSiteNoneMode
	}
	return cookies
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     participantCookie,
		Path:     "/",
		Value:    "delete",
		MaxAge:   -1,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Refresh(w http.ResponseWriter, token string, lifetime time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     participantCookie,
		Path:     "/",
		Value:    token,
		Expires:  time.Now().Add(lifetime),
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) ParticipantToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(participantCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
