package fetch

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var scriptAssetPattern = regexp.MustCompile(`/static/js/main\.\w+\.js`)

// FindScriptAsset locates the main script bundle referenced by page and
// returns its absolute URL under base. Script src and link href attributes
// are checked first; a raw scan of the text covers bundles referenced from
// inline code.
func FindScriptAsset(base, page string) (string, error) {
	asset := assetFromTags(page)
	if asset == "" {
		asset = scriptAssetPattern.FindString(page)
	}
	if asset == "" {
		return "", fmt.Errorf("%w: no main bundle in %s", ErrScriptNotFound, base)
	}
	return strings.TrimRight(base, "/") + asset, nil
}

func assetFromTags(page string) string {
	z := html.NewTokenizer(strings.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if !hasAttr || (tag != "script" && tag != "link") {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				k := string(key)
				if k == "src" || k == "href" {
					if m := scriptAssetPattern.FindString(string(val)); m != "" {
						return m
					}
				}
				if !more {
					break
				}
			}
		}
	}
}
