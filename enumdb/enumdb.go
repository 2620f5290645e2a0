// Package enumdb loads the per-game enum databases that resolve an AINB
// file's late-binding (classname, value name) patches into integers. Real
// retail tables are game data, not source code, and aren't distributed
// with this package; Load ships one resource per known game name, empty
// until a caller populates enumdb/data/<game>.json with the real table.
package enumdb

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nx-tools/ainb"
)

//go:embed data/*.json
var data embed.FS

// Known game identifiers, matching the source project's set_* helpers.
const (
	NintendoSwitchSports = "nss"
	Splatoon3            = "s3"
	TearsOfTheKingdom    = "totk"
	SuperMarioBrosWonder = "smw"
)

// games that never needed enum resolution in the source project still get
// an empty database rather than an error, same as the game-specific ones.
var noDatabaseGames = map[string]bool{
	TearsOfTheKingdom:    true,
	SuperMarioBrosWonder: true,
}

// Load returns the enum database for game. An unrecognized game name is
// not an error: it returns an empty database, since a file that never
// triggers an enum patch works fine decoded against one.
func Load(game string) (ainb.EnumDatabase, error) {
	if noDatabaseGames[game] {
		return ainb.EnumDatabase{}, nil
	}
	raw, err := data.ReadFile(fmt.Sprintf("data/%s.json", game))
	if err != nil {
		return ainb.EnumDatabase{}, nil
	}
	var db ainb.EnumDatabase
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("enumdb: parsing %s.json: %w", game, err)
	}
	if db == nil {
		db = ainb.EnumDatabase{}
	}
	return db, nil
}
