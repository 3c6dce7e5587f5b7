package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestURLsMixedSchemes(t *testing.T) {
	text := "Check http://example.com/path and visit www.test.org/x?y=1 now"

	assert.Equal(t,
		[]string{"http://example.com/path", "www.test.org/x?y=1"},
		URLs(text),
	)
}

func TestURLsKeepsDuplicates(t *testing.T) {
	text := "https://a.example.com twice https://a.example.com"

	assert.Equal(t,
		[]string{"https://a.example.com", "https://a.example.com"},
		URLs(text),
	)
}

func TestURLsCaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"HTTPS://EXAMPLE.COM/A"}, URLs("go to HTTPS://EXAMPLE.COM/A now"))
}

func TestURLsStopsAtDisallowedCharacters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"angle brackets", "<https://example.com/a>", []string{"https://example.com/a"}},
		{"parentheses", "(see https://example.com/docs)", []string{"https://example.com/docs"}},
		{"quotes", `href="https://example.com/q?a=1&b=2"`, []string{"https://example.com/q?a=1&b=2"}},
		{"comma", "https://example.com/x, then", []string{"https://example.com/x"}},
		{"trailing dot kept", "visit https://example.com/page.", []string{"https://example.com/page."}},
		{"port and fragment", "http://example.com:8080/p#top", []string{"http://example.com:8080/p#top"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URLs(tt.text))
		})
	}
}

func TestURLsNoMatch(t *testing.T) {
	assert.Empty(t, URLs("no links here, just example dot com"))
	assert.Empty(t, URLs(""))
	assert.Empty(t, URLs("ftp://example.com/file"))
}

func TestURLsRequiresTLD(t *testing.T) {
	assert.Empty(t, URLs("http://localhost/path"))
}

func TestProperty_URLsRecoverEmbeddedLink(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	hostGen := gen.IntRange(3, 12).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), gen.AlphaLowerChar()).Map(func(r []rune) string {
			return string(r)
		})
	}, reflectString)
	tldGen := gen.OneConstOf("com", "org", "net", "io", "info")
	pathGen := gen.SliceOfN(6, gen.AlphaNumChar()).Map(func(r []rune) string {
		return string(r)
	})
	wordGen := gen.IntRange(1, 8).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), gen.AlphaChar()).Map(func(r []rune) string {
			return string(r)
		})
	}, reflectString)

	properties.Property("link surrounded by words is extracted intact", prop.ForAll(
		func(host, tld, path, before, after string) bool {
			link := fmt.Sprintf("https://%s.%s/%s", host, tld, path)
			text := before + " " + link + " " + after
			got := URLs(text)
			return len(got) == 1 && got[0] == link
		},
		hostGen, tldGen, pathGen, wordGen, wordGen,
	))

	properties.Property("every match starts with a scheme or www", prop.ForAll(
		func(host, tld, before string) bool {
			text := before + " www." + host + "." + tld + " " + before
			for _, u := range URLs(text) {
				lower := strings.ToLower(u)
				if !strings.HasPrefix(lower, "http://") &&
					!strings.HasPrefix(lower, "https://") &&
					!strings.HasPrefix(lower, "www.") {
					return false
				}
			}
			return true
		},
		hostGen, tldGen, wordGen,
	))

	properties.TestingRun(t)
}
