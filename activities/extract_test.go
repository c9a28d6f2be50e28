package activities

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azrulhm/eplingest/transfermarkt"
	"github.com/azrulhm/eplingest/workflow"
)

const clubPage = `
<html><body><table>
<tr class="odd">
  <td><a href="/bukayo-saka/profil/spieler/433177">Bukayo Saka</a></td>
  <td class="zentriert">7</td>
  <td class="zentriert">Sep 5, 2001 (22)</td>
  <td class="zentriert"><img alt="England"/></td>
  <td class="rechts hauptlink">&euro;120.00m</td>
</tr>
<tr class="even">
  <td><a href="/gabriel/profil/spieler/435338">Gabriel</a></td>
  <td class="zentriert">6</td>
  <td class="zentriert">Dec 19, 1997 (26)</td>
  <td class="zentriert"><img alt="Brazil"/></td>
  <td class="rechts hauptlink">&euro;75.00m</td>
</tr>
<tr class="odd">
  <td>Row without a profile link</td>
</tr>
</table></body></html>`

const sakaProfile = `
<html><body>
<span class="info-table__content--regular">Full name:</span>
<span class="info-table__content--bold">Bukayo Ayoyinka Temidayo Saka</span>
<span class="info-table__content--regular">Height:</span>
<span class="info-table__content--bold">1,78 m</span>
<span class="info-table__content--regular">Position:</span>
<span class="info-table__content--bold">Right Winger</span>
<span class="info-table__content--regular">Foot:</span>
<span class="info-table__content--bold">left</span>
</body></html>`

// No Position attribute on this page.
const gabrielProfile = `
<html><body>
<span class="info-table__content--regular">Name in home country:</span>
<span class="info-table__content--bold">Gabriel dos Santos Magalhães</span>
<span class="info-table__content--regular">Height:</span>
<span class="info-table__content--bold">1,90 m</span>
</body></html>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestPlayerExtractor_ExtractPlayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/club":
			w.Write([]byte(clubPage))
		case "/bukayo-saka/profil/spieler/433177":
			w.Write([]byte(sakaProfile))
		case "/gabriel/profil/spieler/435338":
			w.Write([]byte(gabrielProfile))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	x := NewPlayerExtractor(transfermarkt.NewClient(srv.URL), testLogger())
	records, err := x.ExtractPlayers(context.Background(), workflow.ExtractionInput{
		ClubURL:  srv.URL + "/club",
		LoadDate: "01082023",
	})
	require.NoError(t, err)

	// Only the two rows carrying a profile link become records.
	require.Len(t, records, 2)

	saka := records[0]
	assert.Equal(t, "Bukayo Saka", saka.Name)
	assert.Equal(t, "Bukayo Ayoyinka Temidayo Saka", saka.FullName)
	assert.Equal(t, "1,78 m", saka.Height)
	assert.Equal(t, "Right Winger", saka.Position)
	assert.Equal(t, "left", saka.Foot)
	assert.Equal(t, srv.URL+"/bukayo-saka/profil/spieler/433177", saka.Link)
	assert.Equal(t, "Sep 5, 2001", saka.DateOfBirth)
	assert.Equal(t, "England", saka.Country)
	assert.Equal(t, "€120.00m", saka.MarketValue)
	assert.Equal(t, "01082023", saka.LoadDate)

	gabriel := records[1]
	assert.Equal(t, "Gabriel dos Santos Magalhães", gabriel.FullName)
	assert.Equal(t, transfermarkt.NullValue, gabriel.Position)
	assert.Equal(t, transfermarkt.NullValue, gabriel.Foot)
}

func TestPlayerExtractor_ProfileFetchFailureDegradesToSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/club" {
			w.Write([]byte(clubPage))
			return
		}
		// Every detail page is blocked.
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	x := NewPlayerExtractor(transfermarkt.NewClient(srv.URL, transfermarkt.WithRetries(0)), testLogger())
	records, err := x.ExtractPlayers(context.Background(), workflow.ExtractionInput{
		ClubURL:  srv.URL + "/club",
		LoadDate: "01082023",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		assert.Equal(t, transfermarkt.NullValue, rec.FullName)
		assert.Equal(t, transfermarkt.NullValue, rec.Height)
		assert.Equal(t, transfermarkt.NullValue, rec.Position)
		assert.Equal(t, transfermarkt.NullValue, rec.Foot)
		// Roster-sourced fields are unaffected.
		assert.NotEqual(t, transfermarkt.NullValue, rec.Name)
	}
}

func TestPlayerExtractor_RosterFetchFailureIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	x := NewPlayerExtractor(transfermarkt.NewClient(srv.URL, transfermarkt.WithRetries(0)), testLogger())
	_, err := x.ExtractPlayers(context.Background(), workflow.ExtractionInput{
		ClubURL:  srv.URL + "/club",
		LoadDate: "01082023",
	})

	var fetchErr *transfermarkt.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
