// Package markdown renders post bodies and project descriptions to HTML as a
// templ component.
package markdown

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// md is safe for concurrent use. Raw HTML in the source is dropped and
// dangerous link schemes are blanked by the default renderer.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(attrTransformer{}, 100)),
	),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := RenderMarkdown(&buf, content); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderMarkdown writes the HTML representation of content to buf.
func RenderMarkdown(buf *bytes.Buffer, content string) error {
	return md.Convert([]byte(content), buf)
}

// attrTransformer opens external links in a new tab and lets every image
// after the first load lazily.
type attrTransformer struct{}

func (attrTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	images := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			if isExternal(v.Destination) {
				v.SetAttributeString("target", []byte("_blank"))
				v.SetAttributeString("rel", []byte("noopener noreferrer"))
			}
		case *ast.Image:
			images++
			v.SetAttributeString("decoding", []byte("async"))
			if images > 1 {
				v.SetAttributeString("loading", []byte("lazy"))
			}
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest []byte) bool {
	return bytes.HasPrefix(dest, []byte("https://")) || bytes.HasPrefix(dest, []byte("http://"))
}
