package extract

import "regexp"

// urlPattern approximates hyperlinks: a scheme or "www." prefix, a host
// run, a dotted TLD of 2-24 letters and an optional path/query tail.
// It is syntactic only and may clip trailing punctuation.
var urlPattern = regexp.MustCompile(
	`(?i)\b(?:https?://|www\.)` +
		`[-a-zA-Z0-9@:%._+~#=]{2,256}` +
		`\.[a-z]{2,24}` +
		`\b[-a-zA-Z0-9@:%_+.~#?&/=]*`,
)

// URLs returns every hyperlink-like substring of text in order of
// appearance. Duplicates are kept.
func URLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}
