package entities

// SpeakerIdentity is the resolved identity of one diarized speaker id.
// Once a primary name is bound it is never silently overwritten; conflicting
// evidence accumulates in Alternates instead.
type SpeakerIdentity struct {
	PrimaryName string   `json:"primary_name"`
	Confidence  float64  `json:"confidence"`
	Alternates  []string `json:"alternates,omitempty"`
}

// SpeakerMap maps a diarized speaker id to its resolved identity
type SpeakerMap map[string]SpeakerIdentity

// NameFor returns the primary name bound to the given diarized id, or the id
// itself when it is unresolved.
func (m SpeakerMap) NameFor(id string) string {
	if ident, ok := m[id]; ok && ident.PrimaryName != "" {
		return ident.PrimaryName
	}
	return id
}

// HasAlternate reports whether name is already recorded as an alternate of id.
func (m SpeakerMap) HasAlternate(id, name string) bool {
	ident, ok := m[id]
	if !ok {
		return false
	}
	for _, alt := range ident.Alternates {
		if alt == name {
			return true
		}
	}
	return false
}
