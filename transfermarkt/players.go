package transfermarkt

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Player attributes looked up on the detail page, with the labels they may
// appear under. The first matching label wins.
var profileLabels = []struct {
	assign func(*Profile, string)
	labels []string
}{
	{func(p *Profile, v string) { p.FullName = v }, []string{"Full name:", "Name in home country:"}},
	{func(p *Profile, v string) { p.Height = v }, []string{"Height:"}},
	{func(p *Profile, v string) { p.Position = v }, []string{"Position:"}},
	{func(p *Profile, v string) { p.Foot = v }, []string{"Foot:"}},
}

// ExtractRoster parses a club roster page into one row per player.
//
// A table row only counts as a player when it carries a profile link;
// decorative odd/even rows without one are skipped.
func ExtractRoster(html []byte) ([]RosterRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Reason: "invalid roster page HTML", Err: err}
	}

	var rows []RosterRow
	doc.Find("tr.odd, tr.even").Each(func(_ int, tr *goquery.Selection) {
		anchor := tr.Find("a[href*='profil']").First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")

		row := RosterRow{
			Name:        strings.TrimSpace(anchor.Text()),
			ProfilePath: href,
		}

		details := tr.Find("td.zentriert")
		if details.Length() > 1 {
			// DOB cell carries the age in parentheses; keep only the date.
			dob := strings.TrimSpace(details.Eq(1).Text())
			row.DateOfBirth = strings.TrimSpace(strings.SplitN(dob, "(", 2)[0])
		}
		if details.Length() > 2 {
			if alt, ok := details.Eq(2).Find("img").First().Attr("alt"); ok {
				row.Country = alt
			}
		}

		row.MarketValue = strings.TrimSpace(tr.Find("td.rechts.hauptlink").First().Text())

		rows = append(rows, row)
	})

	return rows, nil
}

// ExtractProfile parses a player detail page into the supplementary
// attributes. The page renders attributes as an alternating sequence of
// label and value spans; an attribute whose label is absent, or whose label
// is the final span, maps to NullValue.
func ExtractProfile(html []byte) (Profile, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return EmptyProfile(), &ParseError{Reason: "invalid profile page HTML", Err: err}
	}

	var cells []string
	doc.Find("span.info-table__content--regular, span.info-table__content--bold").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(s.Text()))
	})

	profile := EmptyProfile()
	for _, attr := range profileLabels {
		for _, label := range attr.labels {
			if v, ok := valueAfterLabel(cells, label); ok {
				attr.assign(&profile, v)
				break
			}
		}
	}

	return profile, nil
}

// valueAfterLabel returns the cell following the first occurrence of label.
func valueAfterLabel(cells []string, label string) (string, bool) {
	for i, cell := range cells {
		if cell == label {
			if i+1 < len(cells) {
				return cells[i+1], true
			}
			return "", false
		}
	}
	return "", false
}
