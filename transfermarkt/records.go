// Package transfermarkt fetches and parses club and player pages from
// transfermarkt.com. Fetching and parsing are kept separate: the Client only
// retrieves raw HTML, and the Extract* functions are pure so identical input
// always yields identical records.
package transfermarkt

import "fmt"

// NullValue is the sentinel stored for a player attribute that is absent
// from the detail page.
const NullValue = "NULL"

// PlayerRecord is one normalized roster entry. Field names in the JSON form
// match the columns of the table store partition.
type PlayerRecord struct {
	Name        string `json:"player_name"`
	FullName    string `json:"player_full_name"`
	Height      string `json:"player_height"`
	Position    string `json:"player_detailed_position"`
	Foot        string `json:"player_preferred_foot"`
	Link        string `json:"player_link"`
	DateOfBirth string `json:"player_dob"`
	Country     string `json:"player_country"`
	MarketValue string `json:"player_value"`
	LoadDate    string `json:"load_date"`
}

// RosterRow is one player row from a club roster page, before the detail
// page has been consulted.
type RosterRow struct {
	Name        string
	ProfilePath string
	DateOfBirth string
	Country     string
	MarketValue string
}

// Profile holds the supplementary attributes scraped from a player's
// detail page. Absent attributes are set to NullValue.
type Profile struct {
	FullName string
	Height   string
	Position string
	Foot     string
}

// EmptyProfile returns a Profile with every attribute set to NullValue.
func EmptyProfile() Profile {
	return Profile{
		FullName: NullValue,
		Height:   NullValue,
		Position: NullValue,
		Foot:     NullValue,
	}
}

// FetchError indicates a page could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError indicates a page was retrieved but its content could not be
// interpreted.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing page: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing page: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
