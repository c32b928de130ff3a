package lookup

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dotless covers the letters that do not decompose into ASCII plus a mark.
var dotless = strings.NewReplacer("ı", "i", "ß", "ss", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L")

// Slug transliterates the city name to lower-case ASCII words joined by hyphens.
// "İstanbul, Türkiye" becomes "istanbul".
func Slug(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, dotless.Replace(CityName(city)))
	if err != nil {
		ascii = CityName(city)
	}

	var b strings.Builder
	for _, word := range strings.FieldsFunc(strings.ToLower(ascii), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(word)
	}
	return b.String()
}

// PlaceholderImage returns a stock photo URL for city. The same city always
// yields the same URL.
func PlaceholderImage(city string) string {
	slug := Slug(city)
	if slug == "" {
		slug = "travel"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(slug))
	return fmt.Sprintf("https://loremflickr.com/800/600/%s,city,landmark?lock=%d", url.PathEscape(slug), h.Sum32()%1000)
}
