package transfermarkt

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractClubLinks parses the league listing page and returns the absolute
// URL of every club page for the selected season.
//
// Each club appears as a highlighted link cell inside an odd/even table row;
// only anchors carrying a saison_id are club pages. An unexpected page
// structure yields an empty slice, not an error: the caller's cardinality
// gate is responsible for rejecting short enumerations.
func ExtractClubLinks(html []byte, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Reason: "invalid listing page HTML", Err: err}
	}

	var links []string
	doc.Find("tr.odd, tr.even").Each(func(_ int, row *goquery.Selection) {
		row.Find("td.hauptlink.no-border-links a[href]").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || !strings.Contains(href, "saison_id") {
				return
			}
			links = append(links, baseURL+href)
		})
	})

	return links, nil
}

// CountDistinct returns the number of unique URLs in links. Duplicates in
// the enumerated list are counted once, so a listing that repeats a club
// fails the downstream cardinality check instead of slipping past it.
func CountDistinct(links []string) int {
	unique := make(map[string]struct{}, len(links))
	for _, l := range links {
		unique[l] = struct{}{}
	}
	return len(unique)
}
