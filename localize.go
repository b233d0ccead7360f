package mysite

import (
	"net/http"
	"slices"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/langswitch"
	"github.com/kevinypfan/my-site/locale"
)

const (
	localeCookie = "lang"
	localeKey    = "locale"
	localeQuery  = "lang"
)

// Locale returns the visitor locale chosen by the locale middleware, or
// the package default when the middleware has not run.
func Locale(c echo.Context) locale.Code {
	if code, ok := c.Get(localeKey).(locale.Code); ok {
		return code
	}
	return locale.DefaultCode
}

// Supported reports whether code has a translator message file.
func (a *App) Supported(code locale.Code) bool {
	return slices.Contains(a.locales, code)
}

// localeMiddleware picks the visitor locale: an explicit ?lang= link, then
// the lang cookie, then Accept-Language, then the site default.
func (a *App) localeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		code := a.pickLocale(c)
		c.Set(localeKey, code)
		h := c.Response().Header()
		h.Set("Content-Language", string(code))
		h.Add(echo.HeaderVary, "Cookie")
		h.Add(echo.HeaderVary, "Accept-Language")
		return next(c)
	}
}

func (a *App) pickLocale(c echo.Context) locale.Code {
	if q := locale.Code(c.QueryParam(localeQuery)); q != "" && a.Supported(q) {
		return q
	}
	if ck, err := c.Cookie(localeCookie); err == nil && a.Supported(locale.Code(ck.Value)) {
		return locale.Code(ck.Value)
	}
	return i18n.Negotiate(c.Request().Header.Get("Accept-Language"), a.locales, a.defaultLocale())
}

func (a *App) defaultLocale() locale.Code {
	if a.Config.Site.DefaultLocale == "" {
		return locale.DefaultCode
	}
	return a.Config.Site.DefaultLocale
}

func (a *App) setLocaleCookie(c echo.Context, code locale.Code) {
	c.SetCookie(&http.Cookie{
		Name:     localeCookie,
		Value:    string(code),
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	})
}

// handleLangSwitch activates the control of the submitted locale. Its
// selection callback stores the choice; the visitor is then sent back to
// the page the form was on.
func (a *App) handleLangSwitch(c echo.Context) error {
	code := locale.Code(c.Param("code"))
	if !a.Supported(code) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	ctrl := langswitch.New(a.Bundle.For(Locale(c)), func(selected locale.Code) {
		a.setLocaleCookie(c, selected)
		a.Logger.Debug("locale selected", "locale", selected)
	}, code, string(code))
	ctrl.Activate()
	return c.Redirect(http.StatusSeeOther, safeReturn(c.FormValue("return")))
}

// langMenu renders one switch control per supported locale, labelled in
// the visitor's current locale.
func (a *App) langMenu(c echo.Context, t i18n.Translator) templ.Component {
	controls := make([]*langswitch.Control, 0, len(a.locales))
	for _, code := range a.locales {
		ctrl := langswitch.New(t, nil, code, string(code))
		ctrl.CSRFToken = CsrfToken(c)
		ctrl.Return = c.Request().URL.Path
		controls = append(controls, ctrl)
	}
	return langswitch.Menu(controls...)
}
