package mysite

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kevinypfan/my-site/locale"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminNew(c echo.Context) error {
	post := BlogPost{
		Locale: a.defaultLocale(),
		Date:   time.Now().Format("2006-01-02"),
	}
	// "Translate" links prefill the slug and target locale.
	if slug := c.QueryParam("slug"); slug != "" {
		post.Slug = slug
	}
	if code := locale.Code(c.QueryParam("locale")); a.Supported(code) {
		post.Locale = code
	}
	return Render(c, a.Views.AdminForm(post, a.locales, CsrfToken(c)))
}

func (a *App) handleAdminPost(c echo.Context) error {
	code := locale.Code(c.QueryParam("locale"))
	if code == "" {
		code = a.defaultLocale()
	}
	post, err := a.Store.GetPostAny(c.Param("slug"), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminForm(post, a.locales, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", "ip", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) handleAdminSave(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return adminRedirect(c, "Slug is required. Add a title or slug.")
	}
	code := locale.Code(strings.TrimSpace(c.FormValue("locale")))
	if code == "" {
		code = a.defaultLocale()
	}
	if !a.Supported(code) {
		return adminRedirect(c, "Unsupported locale "+string(code)+".")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return adminRedirect(c, "Invalid date format. Use YYYY-MM-DD.")
	}
	post := BlogPost{
		Slug:      slug,
		Locale:    code,
		Title:     title,
		Date:      date,
		Tags:      FilterEmpty(strings.Split(c.FormValue("tags"), ",")),
		Summary:   c.FormValue("summary"),
		Content:   c.FormValue("content"),
		Published: c.FormValue("published") != "",
	}
	if err := a.Store.SavePost(post); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("post saved", "slug", slug, "locale", code, "published", post.Published)
	return adminRedirect(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	slug := c.Param("slug")
	code := locale.Code(c.QueryParam("locale"))
	if code == "" {
		code = locale.Code(c.FormValue("locale"))
	}
	if code == "" {
		return c.String(http.StatusBadRequest, "locale is required")
	}
	if err := a.Store.DeletePost(slug, code); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("post deleted", "slug", slug, "locale", code)
	return adminRedirect(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}
