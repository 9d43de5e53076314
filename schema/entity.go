package schema

// Entity is a schemaless admin record; the pipeline does not transform
// domain payloads.
type Entity map[string]interface{}

// ID returns the entity identifier when present.
func (e Entity) ID() string {
	if value, ok := e["id"].(string); ok {
		return value
	}
	return ""
}

// EntityList is one page of entities.
type EntityList struct {
	Items      []Entity `json:"items"`
	NextCursor string   `json:"nextCursor,omitempty"`
}
