package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, contents string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contents))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "hello world", CleanText("  hello \n\t  world\u0000 "))
	require.Equal(t, "", CleanText(" \n "))
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t, `<div>
		<a href="/browse_plain/docs/readme.txt?w=abc">
			readme.txt
		</a>
		<a href="/get/a%20b">a   b</a>
	</div>`)

	anchors := GetAnchors(context.Background(), doc.Find("a"))
	expected := []Anchor{
		{Name: "readme.txt", Href: "/browse_plain/docs/readme.txt?w=abc"},
		{Name: "a b", Href: "/get/a%20b"},
	}
	if diff := cmp.Diff(expected, anchors); diff != "" {
		t.Fatal(diff)
	}
}

func TestClassTokens(t *testing.T) {
	doc := parse(t, `<img class=" sprite  s_page_white_text ">`)
	require.Equal(t, []string{"sprite", "s_page_white_text"}, ClassTokens(doc.Find("img")))
}

func TestHasAttrContaining(t *testing.T) {
	doc := parse(t, `<form method="post" action="https://www.dropbox.com/LOGIN"></form>`)
	node := doc.Find("form").Nodes[0]
	require.True(t, HasAttrContaining(node, "/login"))
	require.False(t, HasAttrContaining(node, "/upload"))
}
