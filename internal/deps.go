package internal

import (
	"claudecode-es/backend/internal/access"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/internal/store"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is handed to every handler. DB and Exporter are optional, handlers
// skip the features that need them when nil.
type Deps struct {
	Store store.Store
	DB    *gorm.DB

	Issuer       *service.MagicLinkIssuer
	Limiter      *service.RateLimiter
	Sessions     *service.SessionManager
	Users        *service.UserManager
	Purchases    *service.Purchases
	Licenses     *service.LicenseValidator
	Mailer       service.Mailer
	LoginHistory *service.LoginHistory
	Leads        *service.Leads
	Exporter     *service.EmailExporter

	Whitelist *access.Whitelist
	Gates     *access.Evaluator

	// BaseURL is where the API is reachable from the outside, magic links
	// point to BaseURL/api/auth/verify
	BaseURL       string
	SecureCookies bool
}

// SetCookie writes a site wide SameSite=Lax cookie. A negative maxAge
// deletes it. Values are written as is, unlike gin's SetCookie which query
// escapes them, so the site can read captured_email directly.
func (d *Deps) SetCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   d.SecureCookies,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

// Cookie returns the raw value of a cookie written by SetCookie, or an
// empty string
func (d *Deps) Cookie(c *gin.Context, name string) string {
	ck, err := c.Request.Cookie(name)
	if err != nil {
		return ""
	}

	return ck.Value
}

const (
	// CapturedEmailCookie is read by the site to unlock free content, so
	// it's not HttpOnly
	CapturedEmailCookie = "captured_email"
	LicenseCookie       = "license_key"

	longCookieAge = 60 * 60 * 24 * 365
)

// SetLongCookie keeps a cookie for a year
func (d *Deps) SetLongCookie(c *gin.Context, name, value string, httpOnly bool) {
	d.SetCookie(c, name, value, longCookieAge, httpOnly)
}
