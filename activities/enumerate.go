package activities

import (
	"context"
	"log/slog"

	"github.com/azrulhm/eplingest/transfermarkt"
)

// ClubEnumerator lists the club page URLs from the league listing page.
type ClubEnumerator struct {
	client     *transfermarkt.Client
	leaguePath string
	logger     *slog.Logger
}

// NewClubEnumerator creates an enumerator for the league at leaguePath.
func NewClubEnumerator(client *transfermarkt.Client, leaguePath string, logger *slog.Logger) *ClubEnumerator {
	return &ClubEnumerator{
		client:     client,
		leaguePath: leaguePath,
		logger:     logger.With("component", "enumerate"),
	}
}

// EnumerateClubs fetches the listing for the season and extracts every club
// page URL, duplicates included. The caller's cardinality gate judges the
// result.
func (e *ClubEnumerator) EnumerateClubs(ctx context.Context, season int) ([]string, error) {
	html, err := e.client.LeaguePage(ctx, e.leaguePath, season)
	if err != nil {
		return nil, err
	}

	links, err := transfermarkt.ExtractClubLinks(html, e.client.BaseURL())
	if err != nil {
		return nil, err
	}

	e.logger.Debug("enumerated club pages", "season", season, "links", len(links),
		"distinct", transfermarkt.CountDistinct(links))
	return links, nil
}
