package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankingRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRankingRecord()
	r.Set("Points", "12")
	r.Set("Date", "01-09-2024")
	r.Set("Tournament", "DM")

	assert.Equal(t, []string{"Points", "Date", "Tournament"}, r.Keys())
	assert.Equal(t, []string{"12", "01-09-2024", "DM"}, r.Values())

	r.Set("Points", "14")
	assert.Equal(t, []string{"Points", "Date", "Tournament"}, r.Keys())
	v, ok := r.Get("Points")
	assert.True(t, ok)
	assert.Equal(t, "14", v)

	_, ok = r.Get("Rank")
	assert.False(t, ok)
}

func TestRankingRecordKeysIsACopy(t *testing.T) {
	r := RecordOf([]string{"a", "b"}, []string{"1", "2"})
	keys := r.Keys()
	keys[0] = "z"
	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestRecordOfPadsShortValues(t *testing.T) {
	r := RecordOf([]string{"a", "b", "c"}, []string{"1"})
	assert.Equal(t, []string{"1", "", ""}, r.Values())
}

func TestRankingRecordEqual(t *testing.T) {
	a := RecordOf([]string{"a", "b"}, []string{"1", "2"})

	assert.True(t, a.Equal(RecordOf([]string{"a", "b"}, []string{"1", "2"})))
	assert.False(t, a.Equal(RecordOf([]string{"b", "a"}, []string{"2", "1"})))
	assert.False(t, a.Equal(RecordOf([]string{"a", "b"}, []string{"1", "3"})))
	assert.False(t, a.Equal(RecordOf([]string{"a"}, []string{"1"})))
}

func TestZeroRecordSet(t *testing.T) {
	var r RankingRecord
	r.Set("a", "1")
	assert.Equal(t, 1, r.Len())
}
