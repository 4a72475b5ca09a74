package model

// ExtractedPlaces is the JSON shape the LLM recognizer asks for.
type ExtractedPlaces struct {
	Places []ExtractedPlace `json:"places"`
}

type ExtractedPlace struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}
