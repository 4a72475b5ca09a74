package gazetteer

import "github.com/agenthands/geoparse/internal/core/model"

type aliasTableKey struct {
	key string
	typ model.EntityType
}

// builtinAliases are attached to matching entries after loading, so the
// usual abbreviations and former names resolve exactly.
var builtinAliases = map[aliasTableKey][]string{
	{"united states", model.Country}:        {"USA", "U.S.A.", "US", "U.S.", "United States of America", "America"},
	{"united kingdom", model.Country}:       {"UK", "U.K.", "Great Britain", "Britain"},
	{"united arab emirates", model.Country}: {"UAE", "U.A.E."},
	{"new zealand", model.Country}:          {"NZ"},
	{"mumbai", model.City}:                  {"Bombay"},
	{"chennai", model.City}:                 {"Madras"},
	{"kolkata", model.City}:                 {"Calcutta"},
	{"bengaluru", model.City}:               {"Bangalore"},
	{"bangalore", model.City}:               {"Bengaluru"},
	{"new york", model.City}:                {"New York City", "NYC"},
	{"los angeles", model.City}:             {"LA", "L.A."},
	{"san francisco", model.City}:           {"SF"},
}
