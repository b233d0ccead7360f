package mysite_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mysite "github.com/kevinypfan/my-site"
	"github.com/kevinypfan/my-site/content"
	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/locale"
	"github.com/kevinypfan/my-site/views"
)

func newTestApp(t *testing.T, opts ...mysite.Option) *mysite.App {
	t.Helper()
	cfg := mysite.Config{
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		DatabasePath:  filepath.Join(t.TempDir(), "blog.db"),
	}
	base := []mysite.Option{
		mysite.WithFs(afero.NewMemMapFs()),
		mysite.WithLogger(mysite.NewLogger(io.Discard, "error")),
	}
	a := mysite.New(cfg, views.Default(), append(base, opts...)...)
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })
	return a
}

// client replays the cookies the app sets, like a browser would.
type client struct {
	t       *testing.T
	app     *mysite.App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, a *mysite.App) *client {
	return &client{t: t, app: a, cookies: make(map[string]*http.Cookie)}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	cl.t.Helper()
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func (cl *client) get(target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return cl.do(req)
}

func (cl *client) csrf() string {
	cl.t.Helper()
	if _, ok := cl.cookies["_csrf"]; !ok {
		cl.get("/")
	}
	ck, ok := cl.cookies["_csrf"]
	require.True(cl.t, ok, "no CSRF cookie issued")
	return ck.Value
}

func (cl *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	cl.t.Helper()
	token := cl.csrf()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("X-CSRF-Token", token)
	return cl.do(req)
}

func (cl *client) login() {
	cl.t.Helper()
	rec := cl.postForm("/admin/login/", url.Values{"password": {"secret"}})
	require.Equal(cl.t, http.StatusSeeOther, rec.Code)
	require.Contains(cl.t, cl.cookies, "admin_session")
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	cl := newClient(t, newTestApp(t))

	rec := cl.get("/", "Accept-Language", "zh-TW,zh;q=0.9,en;q=0.5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<html lang="zh-Hant-TW">`)
	assert.Contains(t, rec.Body.String(), "Kevin Fan：與你探索更廣闊的技術世界")
	assert.Equal(t, "zh-Hant-TW", rec.Header().Get("Content-Language"))
	assert.Equal(t, "private, max-age=300", rec.Header().Get("Cache-Control"))

	rec = cl.get("/", "Accept-Language", "fr-FR")
	assert.Contains(t, rec.Body.String(), `<html lang="en">`)
}

func TestLocaleCookieBeatsAcceptLanguage(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	cl.cookies["lang"] = &http.Cookie{Name: "lang", Value: "en"}

	rec := cl.get("/", "Accept-Language", "zh-TW")
	assert.Contains(t, rec.Body.String(), `<html lang="en">`)

	rec = cl.get("/?lang=zh-Hant-TW", "Accept-Language", "en")
	assert.Contains(t, rec.Body.String(), `<html lang="zh-Hant-TW">`)

	// Unknown cookie values are ignored.
	cl.cookies["lang"] = &http.Cookie{Name: "lang", Value: "xx"}
	rec = cl.get("/", "Accept-Language", "zh-TW")
	assert.Contains(t, rec.Body.String(), `<html lang="zh-Hant-TW">`)
}

func TestLangSwitch(t *testing.T) {
	cl := newClient(t, newTestApp(t))

	rec := cl.postForm("/lang/zh-Hant-TW/", url.Values{"return": {"/projects/"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Contains(t, cl.cookies, "lang")
	assert.Equal(t, "zh-Hant-TW", cl.cookies["lang"].Value)

	rec = cl.get("/projects/", "Accept-Language", "en")
	assert.Contains(t, rec.Body.String(), `<html lang="zh-Hant-TW">`)
}

func TestLangSwitchRejectsOffsiteReturn(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	for _, target := range []string{"//evil.example/", "/\t/evil.example/", "/\n/evil.example/"} {
		rec := cl.postForm("/lang/en/", url.Values{"return": {target}})
		require.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/", rec.Header().Get("Location"), target)
	}
}

func TestLangSwitchUnsupportedLocale(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	rec := cl.postForm("/lang/fr/", url.Values{"return": {"/"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, cl.cookies, "lang")
}

func TestLangSwitchRequiresCSRF(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	req := httptest.NewRequest(http.MethodPost, "/lang/en/", strings.NewReader("return=/"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := cl.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLangMenuListsEveryLocale(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	body := cl.get("/").Body.String()
	assert.Contains(t, body, `action="/lang/en/"`)
	assert.Contains(t, body, `action="/lang/zh-Hant-TW/"`)
	assert.Contains(t, body, "/static/flags/zh-Hant-TW.svg")
}

func TestHeaderShowsSiteLogo(t *testing.T) {
	body := newClient(t, newTestApp(t)).get("/").Body.String()
	assert.Contains(t, body, `<img src="/static/images/logo.png" alt="" width="32" height="32"/>`)
}

func TestFlagAssetsServed(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	rec := cl.get("/static/flags/en.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestWithBundleReplacesLabelsAndLocales(t *testing.T) {
	b, err := i18n.NewBundle(fstest.MapFS{
		"active.en.toml": {Data: []byte("en = \"English\"\nhome = \"Start\"\nprojects = \"Work\"\n")},
	}, "en", mysite.NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	a := newTestApp(t, mysite.WithBundle(b))
	assert.Equal(t, []locale.Code{"en"}, a.Locales())

	cl := newClient(t, a)
	rec := cl.get("/", "Accept-Language", "zh-TW")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<html lang="en">`)
	assert.Contains(t, rec.Body.String(), `<a href="/projects/">Work</a>`)
	assert.NotContains(t, rec.Body.String(), `action="/lang/zh-Hant-TW/"`)

	rec = cl.postForm("/lang/zh-Hant-TW/", url.Values{"return": {"/"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectsEmptyState(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	rec := cl.get("/projects/", "Accept-Language", "en")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty-state")
	assert.Contains(t, rec.Body.String(), "No projects to show yet.")
}

func TestProjectsFallBackToDefaultLocale(t *testing.T) {
	c, err := content.Parse([]byte(`
[maintitle]
en = "Title"
[maindescription]
en = "Description"
[[projects.en]]
title = "Only in English"
href = "https://example.com"
`), "en")
	require.NoError(t, err)
	cl := newClient(t, newTestApp(t, mysite.WithContent(c)))

	rec := cl.get("/projects/?lang=zh-Hant-TW")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only in English")
	assert.Contains(t, rec.Body.String(), `<html lang="zh-Hant-TW">`)
}

func TestInitRejectsContentWithoutDefaultLocale(t *testing.T) {
	c, err := content.Parse([]byte(`
[maintitle]
"zh-Hant-TW" = "標題"
[maindescription]
en = "Description"
[projects]
en = []
`), "en")
	require.NoError(t, err)

	a := mysite.New(mysite.Config{
		AdminPassword: "secret",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		DatabasePath:  filepath.Join(t.TempDir(), "blog.db"),
	}, views.Default(), mysite.WithContent(c), mysite.WithLogger(mysite.NewLogger(io.Discard, "error")))
	err = a.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, locale.ErrMissingLocaleData)
}

func TestMissingLocaleDataRendersServerError(t *testing.T) {
	a := newTestApp(t, mysite.WithCustomRoutes(func(a *mysite.App) {
		a.Echo.GET("/broken/", func(c echo.Context) error {
			return fmt.Errorf("lookup: %w", &locale.MissingLocaleDataError{Requested: "fr", Default: "en"})
		})
	}))
	rec := newClient(t, a).get("/broken/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestNotFoundPage(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	rec := cl.get("/blog/missing/", "Accept-Language", "zh-TW")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `<html lang="zh-Hant-TW">`)
}

func TestPostInVisitorLocale(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "en", Title: "Hello", Date: "2024-01-01", Content: "Hi", Published: true}))
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "zh-Hant-TW", Title: "你好", Date: "2024-01-01", Content: "嗨", Published: true}))
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "only-zh", Locale: "zh-Hant-TW", Title: "只有中文", Date: "2024-01-02", Published: true}))
	cl := newClient(t, a)

	rec := cl.get("/blog/hello/?lang=zh-Hant-TW")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "你好")
	assert.Contains(t, rec.Body.String(), `href="?lang=en"`)

	rec = cl.get("/blog/hello/", "Accept-Language", "en")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "Hello")
	assert.NotContains(t, rec.Body.String(), "你好")

	rec = cl.get("/blog/only-zh/", "Accept-Language", "en")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "只有中文")

	// The English home page lists only the post it can show in English or
	// the default locale.
	rec = cl.get("/", "Accept-Language", "en")
	assert.Contains(t, rec.Body.String(), "Hello")
	assert.NotContains(t, rec.Body.String(), "只有中文")
}

func TestSearchDocuments(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "en", Title: "Hello", Date: "2024-01-01", Tags: []string{"go"}, Published: true}))

	rec := newClient(t, a).get("/search.json")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "blog/hello", docs[0]["path"])
	assert.Equal(t, "en", docs[0]["locale"])
}

func TestSitemapAlternates(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "en", Title: "Hello", Date: "2024-01-01", Published: true}))
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "zh-Hant-TW", Title: "你好", Date: "2024-01-03", Published: true}))
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "solo", Locale: "en", Title: "Solo", Date: "2024-01-02", Published: true}))

	rec := newClient(t, a).get("/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, body, "<loc>https://blog.kevinfan.me/blog/hello/</loc><lastmod>2024-01-03</lastmod>")
	assert.Contains(t, body, `hreflang="zh-Hant-TW" href="https://blog.kevinfan.me/blog/hello/?lang=zh-Hant-TW"`)
	assert.Contains(t, body, `hreflang="x-default" href="https://blog.kevinfan.me/blog/hello/"`)
	assert.NotContains(t, body, "blog/solo/?lang=")
}

func TestFeedIsLocalized(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "zh-Hant-TW", Title: "你好", Date: "2024-01-01", Published: true}))

	rec := newClient(t, a).get("/feed.xml?lang=zh-Hant-TW")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<language>zh-Hant-TW</language>")
	assert.Contains(t, body, "<title>你好</title>")
	assert.Contains(t, body, "Kevin Fan：與你探索更廣闊的技術世界")
}

func TestFeedListsOnlyTheChannelLocale(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "hello", Locale: "zh-Hant-TW", Title: "你好", Date: "2024-01-02", Tags: []string{"go"}, Published: true}))
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "notes", Locale: "zh-Hant-TW", Title: "筆記", Date: "2024-01-01", Tags: []string{"web"}, Published: true}))
	require.NoError(t, a.Store.SavePost(mysite.BlogPost{Slug: "english", Locale: "en", Title: "English only", Date: "2024-01-03", Published: true}))
	cl := newClient(t, a)

	body := cl.get("/feed.xml?lang=zh-Hant-TW").Body.String()
	assert.Contains(t, body, "<title>你好</title>")
	assert.Contains(t, body, "<title>筆記</title>")
	assert.Contains(t, body, "<category>go</category>")
	assert.NotContains(t, body, "English only")

	body = cl.get("/feed.xml?lang=zh-Hant-TW&tag=GO").Body.String()
	assert.Contains(t, body, "<title>你好</title>")
	assert.NotContains(t, body, "<title>筆記</title>")

	body = cl.get("/feed.xml?lang=en").Body.String()
	assert.Contains(t, body, "English only")
	assert.NotContains(t, body, "你好")
}

func TestRobots(t *testing.T) {
	rec := newClient(t, newTestApp(t)).get("/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://blog.kevinfan.me/sitemap.xml")
	assert.Contains(t, rec.Body.String(), "Disallow: /admin/")
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 20)
}

func TestAdminRequiresLogin(t *testing.T) {
	cl := newClient(t, newTestApp(t))
	rec := cl.get("/admin/new/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))

	rec = cl.postForm("/admin/login/", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password.")
}

func TestAdminSaveTranslation(t *testing.T) {
	a := newTestApp(t)
	cl := newClient(t, a)
	cl.login()

	rec := cl.postForm("/admin/save/", url.Values{
		"title":     {"哈囉 世界"},
		"locale":    {"zh-Hant-TW"},
		"date":      {"2024-03-01"},
		"tags":      {"go, 筆記"},
		"content":   {"內容"},
		"published": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?msg=saved", rec.Header().Get("Location"))

	post, err := a.Store.GetPostAny("哈囉-世界", "zh-Hant-TW")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "筆記"}, post.Tags)

	rec = cl.get("/?lang=zh-Hant-TW")
	assert.Contains(t, rec.Body.String(), "哈囉 世界")

	rec = cl.postForm("/admin/save/", url.Values{"title": {"x"}, "locale": {"fr"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "Unsupported+locale")

	rec = cl.postForm("/admin/post/"+url.PathEscape("哈囉-世界")+"/delete/", url.Values{"locale": {"zh-Hant-TW"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = a.Store.GetPostAny("哈囉-世界", "zh-Hant-TW")
	assert.ErrorIs(t, err, mysite.ErrNotFound)
}

func TestImageUpload(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := newTestApp(t, mysite.WithFs(fs))
	cl := newClient(t, a)
	cl.login()

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 1200, 600))))

	upload := func() *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "Cover Photo.png")
		require.NoError(t, err)
		_, err = fw.Write(pngBuf.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/admin/images/upload/", &body)
		req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
		req.Header.Set("X-CSRF-Token", cl.csrf())
		return cl.do(req)
	}

	rec := upload()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/public/uploads/cover-photo.jpg")

	exists, err := afero.Exists(fs, filepath.Join("public", "uploads", "cover-photo.jpg"))
	require.NoError(t, err)
	assert.True(t, exists)

	require.Equal(t, http.StatusOK, upload().Code)
	images, err := a.Store.ListImages()
	require.NoError(t, err)
	require.Len(t, images, 2)
	names := []string{images[0].Filename, images[1].Filename}
	assert.ElementsMatch(t, []string{"cover-photo.jpg", "cover-photo-2.jpg"}, names)
	assert.Equal(t, 800, images[0].Width)
	assert.Equal(t, 400, images[0].Height)

	rec = cl.get("/public/uploads/cover-photo.jpg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))

	rec = cl.postForm("/admin/images/cover-photo.jpg/delete/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exists, err = afero.Exists(fs, filepath.Join("public", "uploads", "cover-photo.jpg"))
	require.NoError(t, err)
	assert.False(t, exists)
}
