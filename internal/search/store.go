package search

import "fmt"

// Store describes the per-store naming conventions for launch URIs and icons.
type Store struct {
	Name       string
	LaunchURI  string // fmt pattern taking the identifier
	IconPrefix string // prepended to the identifier to form the icon name
	LibraryURI string // opened when the user asks for more results
}

// Steam is the store served by this provider. Steam installs per-title
// icons into the hicolor theme as steam_icon_<appid>.
var Steam = Store{
	Name:       "Steam",
	LaunchURI:  "steam://rungameid/%s",
	IconPrefix: "steam_icon_",
	LibraryURI: "steam://open/games",
}

// LaunchURIFor returns the URI that starts id.
func (s Store) LaunchURIFor(id string) string {
	return fmt.Sprintf(s.LaunchURI, id)
}

// IconFor returns the icon theme name for id.
func (s Store) IconFor(id string) string {
	return s.IconPrefix + id
}
