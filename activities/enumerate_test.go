package activities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azrulhm/eplingest/transfermarkt"
)

const leagueListing = `
<html><body><table>
<tr class="odd">
  <td class="hauptlink no-border-links">
    <a href="/fc-arsenal/startseite/verein/11/saison_id/2023">Arsenal FC</a>
  </td>
</tr>
<tr class="even">
  <td class="hauptlink no-border-links">
    <a href="/manchester-city/startseite/verein/281/saison_id/2023">Manchester City</a>
  </td>
</tr>
</table></body></html>`

func TestClubEnumerator_EnumerateClubs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(leagueListing))
	}))
	defer srv.Close()

	e := NewClubEnumerator(transfermarkt.NewClient(srv.URL), "/premier-league/startseite/wettbewerb/GB1", testLogger())
	clubs, err := e.EnumerateClubs(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, "saison_id=2023", gotQuery)
	assert.Equal(t, []string{
		srv.URL + "/fc-arsenal/startseite/verein/11/saison_id/2023",
		srv.URL + "/manchester-city/startseite/verein/281/saison_id/2023",
	}, clubs)
}

func TestClubEnumerator_ListingFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewClubEnumerator(transfermarkt.NewClient(srv.URL, transfermarkt.WithRetries(0)), "/league", testLogger())
	_, err := e.EnumerateClubs(context.Background(), 2023)

	var fetchErr *transfermarkt.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
