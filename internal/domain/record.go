package domain

// RankingRecord maps column headers to cell text and remembers the order
// the columns were added in.
type RankingRecord struct {
	keys   []string
	values map[string]string
}

func NewRankingRecord() RankingRecord {
	return RankingRecord{values: make(map[string]string)}
}

// RecordOf builds a record from parallel column and value slices.
func RecordOf(columns, values []string) RankingRecord {
	r := NewRankingRecord()
	for i, c := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Set(c, v)
	}
	return r
}

// Set assigns a value. Re-setting a key keeps its original position.
func (r *RankingRecord) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r RankingRecord) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r RankingRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r RankingRecord) Values() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

func (r RankingRecord) Len() int {
	return len(r.keys)
}

func (r RankingRecord) Equal(other RankingRecord) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k || other.values[k] != r.values[k] {
			return false
		}
	}
	return true
}

// ResultSet accumulates records across seasons in fetch order.
type ResultSet []RankingRecord
