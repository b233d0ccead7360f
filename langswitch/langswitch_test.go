package langswitch_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/langswitch"
	"github.com/kevinypfan/my-site/locale"
)

type countingTranslator struct {
	calls int
}

func (c *countingTranslator) Text(key string) string {
	c.calls++
	return map[string]string{"zh-Hant-TW": "繁體中文", "en": "English"}[key]
}

func TestActivateCallsOnSelectOnce(t *testing.T) {
	tr := &countingTranslator{}
	var got []locale.Code
	c := langswitch.New(tr, func(code locale.Code) { got = append(got, code) }, "zh-Hant-TW", "zh-Hant-TW")

	// Rendering and label lookups never trigger the callback.
	for i := 0; i < 3; i++ {
		assert.Equal(t, "繁體中文", c.Label())
		require.NoError(t, c.Component().Render(context.Background(), &bytes.Buffer{}))
	}
	assert.Empty(t, got)
	assert.GreaterOrEqual(t, tr.calls, 6)

	c.Activate()
	assert.Equal(t, []locale.Code{"zh-Hant-TW"}, got)

	c.Activate()
	assert.Equal(t, []locale.Code{"zh-Hant-TW", "zh-Hant-TW"}, got)
}

func TestActivateWithoutCallback(t *testing.T) {
	c := langswitch.New(nil, nil, "en", "en")
	assert.NotPanics(t, c.Activate)
	assert.Equal(t, "en", c.Label())
}

func TestFlagPath(t *testing.T) {
	assert.Equal(t, "/static/flags/zh-Hant-TW.svg", langswitch.FlagPath("zh-Hant-TW"))
	assert.Equal(t, "/static/flags/en.svg", langswitch.FlagPath("en"))
	assert.Equal(t, "/lang/zh-Hant-TW/", langswitch.ActionPath("zh-Hant-TW"))
}

func TestComponentMarkup(t *testing.T) {
	c := langswitch.New(i18n.TranslatorFunc(func(string) string { return `<Chinese & "Co">` }), nil, "zh-Hant-TW", "zh-Hant-TW")
	c.CSRFToken = "tok"
	c.Return = "/projects/"

	var buf bytes.Buffer
	require.NoError(t, c.Component().Render(context.Background(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<form method="post" action="/lang/zh-Hant-TW/"`), out)
	assert.Contains(t, out, `<img src="/static/flags/zh-Hant-TW.svg" alt="zh-Hant-TW" width="30" height="26" class="rounded"/>`)
	assert.Contains(t, out, `<input type="hidden" name="_csrf" value="tok"/>`)
	assert.Contains(t, out, `<input type="hidden" name="return" value="/projects/"/>`)
	assert.Contains(t, out, `<div>&lt;Chinese &amp; &#34;Co&#34;&gt;</div>`)
	assert.Equal(t, 1, strings.Count(out, "<button"))
}

func TestMenu(t *testing.T) {
	tr := i18n.TranslatorFunc(func(key string) string { return "label-" + key })
	menu := langswitch.Menu(
		langswitch.New(tr, nil, "en", "en"),
		langswitch.New(tr, nil, "zh-Hant-TW", "zh-Hant-TW"),
	)

	var buf bytes.Buffer
	require.NoError(t, menu.Render(context.Background(), &buf))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "<li>"))
	assert.Contains(t, out, "label-en")
	assert.Contains(t, out, "/static/flags/en.svg")
	assert.Less(t, strings.Index(out, "label-en"), strings.Index(out, "label-zh-Hant-TW"))
}
