package driver

const (
	SavePlacesQuery = `
		UNWIND $places AS place
		MERGE (p:Place {name: place.name, type: place.type})
		SET p.aliases = place.aliases,
			p.seq = place.seq
		RETURN count(p) AS saved
	`

	LoadPlacesQuery = `
		MATCH (p:Place)
		RETURN p.name AS name, p.type AS type, p.aliases AS aliases
		ORDER BY p.seq ASC
	`

	CountPlacesQuery = `
		MATCH (p:Place)
		RETURN count(p) AS total
	`

	DeletePlacesQuery = `
		MATCH (p:Place)
		DETACH DELETE p
	`
)
