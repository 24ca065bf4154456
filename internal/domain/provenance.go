package domain

// ProvenanceEntry records one change touching one (category, member) key.
// Entries for a key form the base-to-override chain; the last entry carries
// the value that survived the merge and is marked final.
type ProvenanceEntry struct {
	ChangeID string `json:"change_id"`
	Value    int64  `json:"value"`
	Final    bool   `json:"final"`
}

// Trace maps dotted "category.member" paths to their ordered write history.
type Trace map[string][]ProvenanceEntry

// TracePath builds the trace key for one (category, member) pair.
func TracePath(category, member string) string {
	return category + "." + member
}

// Record appends one write to a key's history, demoting the previous final
// entry so the last write is always the single final one.
func (t Trace) Record(category, member, changeID string, value int64) {
	path := TracePath(category, member)
	chain := t[path]
	if n := len(chain); n > 0 {
		chain[n-1].Final = false
	}
	t[path] = append(chain, ProvenanceEntry{ChangeID: changeID, Value: value, Final: true})
}

// Chain returns the ordered write history for one key, nil when no change
// ever touched it.
func (t Trace) Chain(category, member string) []ProvenanceEntry {
	return t[TracePath(category, member)]
}
