package db

// Tables of the catalog schema.
const (
	TableBuildings          = "buildings_table_2"
	TableBuildingArchitects = "building_architects"
	TableCompositions       = "architect_compositions"
	TableIndividuals        = "individual_architects"
)

// Columns of the catalog schema. Names follow the upstream data API.
const (
	ColBuildingID      = "building_id"
	ColSlug            = "slug"
	ColTitle           = "title"
	ColTitleEn         = "titleEn"
	ColBuildingTypes   = "buildingTypes"
	ColBuildingTypesEn = "buildingTypesEn"
	ColLocation        = "location"
	ColLocationEn      = "locationEn_from_datasheetChunkEn"
	ColCompletionYears = "completionYears"
	ColLat             = "lat"
	ColLng             = "lng"
	ColDescription     = "description"
	ColHistory         = "history"
	ColTechnicalInfo   = "technical_info"

	// ColArchitectID is the group architect credited on a building.
	ColArchitectID  = "architect_id"
	ColIndividualID = "individual_architect_id"
	ColOrderIndex   = "order_index"
	ColNameJa       = "name_ja"
	ColNameEn       = "name_en"
	ColBirthYear    = "birth_year"
	ColDeathYear    = "death_year"
	ColBiography    = "biography"
	ColAwards       = "awards"

	// ColRank carries the relevance of a ranked search row.
	ColRank = "rank"
)

// BuildingProjection is the column set returned by searches.
var BuildingProjection = []string{
	ColBuildingID, ColSlug, ColTitle, ColTitleEn,
	ColBuildingTypes, ColBuildingTypesEn, ColLocation, ColLocationEn,
	ColCompletionYears, ColLat, ColLng,
}

// BuildingDetail is the column set of a building page.
var BuildingDetail = append(append([]string(nil), BuildingProjection...),
	ColDescription, ColHistory, ColTechnicalInfo)

// IndividualColumns is the column set of an individual architect.
var IndividualColumns = []string{
	ColIndividualID, ColSlug, ColNameJa, ColNameEn,
	ColBirthYear, ColDeathYear, ColBiography, ColAwards,
}
