package activities

import (
	"context"
	"log/slog"

	"github.com/azrulhm/eplingest/transfermarkt"
	"github.com/azrulhm/eplingest/workflow"
)

// PlayerExtractor turns one club page into player records, consulting each
// player's detail page for the supplementary attributes.
type PlayerExtractor struct {
	client *transfermarkt.Client
	logger *slog.Logger
}

// NewPlayerExtractor creates an extractor using the given page client.
func NewPlayerExtractor(client *transfermarkt.Client, logger *slog.Logger) *PlayerExtractor {
	return &PlayerExtractor{
		client: client,
		logger: logger.With("component", "extract"),
	}
}

// ExtractPlayers fetches the club's roster and builds one record per player.
//
// A failed detail page leaves that player's supplementary attributes at the
// NULL sentinel rather than aborting the whole club: a single blocked profile
// should not cost the other twenty-odd players in the squad. Failure to fetch
// or parse the roster page itself is returned to the caller for retry.
func (x *PlayerExtractor) ExtractPlayers(ctx context.Context, in workflow.ExtractionInput) ([]transfermarkt.PlayerRecord, error) {
	html, err := x.client.Page(ctx, in.ClubURL)
	if err != nil {
		return nil, err
	}

	rows, err := transfermarkt.ExtractRoster(html)
	if err != nil {
		return nil, err
	}

	records := make([]transfermarkt.PlayerRecord, 0, len(rows))
	for _, row := range rows {
		profile := x.fetchProfile(ctx, row.ProfilePath)
		records = append(records, transfermarkt.PlayerRecord{
			Name:        orNull(row.Name),
			FullName:    profile.FullName,
			Height:      profile.Height,
			Position:    profile.Position,
			Foot:        profile.Foot,
			Link:        x.client.BaseURL() + row.ProfilePath,
			DateOfBirth: orNull(row.DateOfBirth),
			Country:     orNull(row.Country),
			MarketValue: orNull(row.MarketValue),
			LoadDate:    in.LoadDate,
		})
	}

	x.logger.Debug("extracted club", "club_url", in.ClubURL, "players", len(records))
	return records, nil
}

// fetchProfile retrieves and parses one player's detail page, degrading to
// all-NULL attributes on any failure.
func (x *PlayerExtractor) fetchProfile(ctx context.Context, profilePath string) transfermarkt.Profile {
	html, err := x.client.Page(ctx, profilePath)
	if err != nil {
		x.logger.Warn("profile fetch failed, using sentinel attributes",
			"profile_path", profilePath, "error", err)
		return transfermarkt.EmptyProfile()
	}

	profile, err := transfermarkt.ExtractProfile(html)
	if err != nil {
		x.logger.Warn("profile parse failed, using sentinel attributes",
			"profile_path", profilePath, "error", err)
		return transfermarkt.EmptyProfile()
	}
	return profile
}

// orNull substitutes the sentinel for roster cells the page left empty.
func orNull(s string) string {
	if s == "" {
		return transfermarkt.NullValue
	}
	return s
}
