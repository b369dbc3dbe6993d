// Package dataset is the JSON interchange format of the catalog tables.
// It seeds the SQLite and in-memory stores.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

// Dataset holds every catalog table.
type Dataset struct {
	Buildings          []Building    `json:"buildings"`
	BuildingArchitects []Credit      `json:"building_architects"`
	Compositions       []Composition `json:"architect_compositions"`
	Individuals        []Individual  `json:"individual_architects"`
}

// Building is one row of the buildings table.
type Building struct {
	ID              int64    `json:"building_id"`
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	TitleEn         string   `json:"titleEn"`
	BuildingTypes   string   `json:"buildingTypes"`
	BuildingTypesEn string   `json:"buildingTypesEn"`
	Location        string   `json:"location"`
	LocationEn      string   `json:"locationEn_from_datasheetChunkEn"`
	CompletionYears string   `json:"completionYears"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	Description     string   `json:"description,omitempty"`
	History         string   `json:"history,omitempty"`
	TechnicalInfo   string   `json:"technical_info,omitempty"`
}

// Credit links a building to a group architect.
type Credit struct {
	BuildingID  int64 `json:"building_id"`
	ArchitectID int64 `json:"architect_id"`
}

// Composition links a group architect to an individual member.
type Composition struct {
	ArchitectID  int64 `json:"architect_id"`
	IndividualID int64 `json:"individual_architect_id"`
	OrderIndex   int   `json:"order_index"`
}

// Individual is one row of the individual architects table.
type Individual struct {
	ID        int64  `json:"individual_architect_id"`
	Slug      string `json:"slug"`
	NameJa    string `json:"name_ja"`
	NameEn    string `json:"name_en"`
	BirthYear *int   `json:"birth_year,omitempty"`
	DeathYear *int   `json:"death_year,omitempty"`
	Biography string `json:"biography,omitempty"`
	Awards    string `json:"awards,omitempty"`
}

// Load reads and validates a dataset file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return d, nil
}

// Decode parses and validates a dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks identifier and slug uniqueness.
func (d *Dataset) Validate() error {
	ids := make(map[int64]struct{}, len(d.Buildings))
	slugs := make(map[string]struct{}, len(d.Buildings))
	for _, b := range d.Buildings {
		if _, dup := ids[b.ID]; dup {
			return fmt.Errorf("duplicate building_id %d", b.ID)
		}
		if b.Slug == "" {
			return fmt.Errorf("building %d has no slug", b.ID)
		}
		if _, dup := slugs[b.Slug]; dup {
			return fmt.Errorf("duplicate building slug %q", b.Slug)
		}
		ids[b.ID] = struct{}{}
		slugs[b.Slug] = struct{}{}
	}

	people := make(map[int64]struct{}, len(d.Individuals))
	for _, a := range d.Individuals {
		if _, dup := people[a.ID]; dup {
			return fmt.Errorf("duplicate individual_architect_id %d", a.ID)
		}
		people[a.ID] = struct{}{}
	}
	return nil
}

// Rows converts every table to store rows keyed by table name.
func (d *Dataset) Rows() map[string][]db.Row {
	out := map[string][]db.Row{
		db.TableBuildings:          make([]db.Row, 0, len(d.Buildings)),
		db.TableBuildingArchitects: make([]db.Row, 0, len(d.BuildingArchitects)),
		db.TableCompositions:       make([]db.Row, 0, len(d.Compositions)),
		db.TableIndividuals:        make([]db.Row, 0, len(d.Individuals)),
	}
	for _, b := range d.Buildings {
		out[db.TableBuildings] = append(out[db.TableBuildings], b.Row())
	}
	for _, c := range d.BuildingArchitects {
		out[db.TableBuildingArchitects] = append(out[db.TableBuildingArchitects], db.Row{
			db.ColBuildingID:  c.BuildingID,
			db.ColArchitectID: c.ArchitectID,
		})
	}
	for _, c := range d.Compositions {
		out[db.TableCompositions] = append(out[db.TableCompositions], db.Row{
			db.ColArchitectID:  c.ArchitectID,
			db.ColIndividualID: c.IndividualID,
			db.ColOrderIndex:   int64(c.OrderIndex),
		})
	}
	for _, a := range d.Individuals {
		out[db.TableIndividuals] = append(out[db.TableIndividuals], a.Row())
	}
	return out
}

// Row converts a building to a store row.
func (b Building) Row() db.Row {
	return db.Row{
		db.ColBuildingID:      b.ID,
		db.ColSlug:            b.Slug,
		db.ColTitle:           b.Title,
		db.ColTitleEn:         b.TitleEn,
		db.ColBuildingTypes:   b.BuildingTypes,
		db.ColBuildingTypesEn: b.BuildingTypesEn,
		db.ColLocation:        b.Location,
		db.ColLocationEn:      b.LocationEn,
		db.ColCompletionYears: b.CompletionYears,
		db.ColLat:             floatOrNil(b.Lat),
		db.ColLng:             floatOrNil(b.Lng),
		db.ColDescription:     b.Description,
		db.ColHistory:         b.History,
		db.ColTechnicalInfo:   b.TechnicalInfo,
	}
}

// Row converts an individual architect to a store row.
func (a Individual) Row() db.Row {
	return db.Row{
		db.ColIndividualID: a.ID,
		db.ColSlug:         a.Slug,
		db.ColNameJa:       a.NameJa,
		db.ColNameEn:       a.NameEn,
		db.ColBirthYear:    intOrNil(a.BirthYear),
		db.ColDeathYear:    intOrNil(a.DeathYear),
		db.ColBiography:    a.Biography,
		db.ColAwards:       a.Awards,
	}
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func intOrNil(i *int) any {
	if i == nil {
		return nil
	}
	return int64(*i)
}
