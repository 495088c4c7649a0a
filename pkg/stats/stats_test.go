package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/swecha-admin/pkg/enrich"
	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"male", GenderMale},
		{"M", GenderMale},
		{"  Female ", GenderFemale},
		{"f", GenderFemale},
		{"Other", GenderOther},
		{"o", GenderOther},
		{"", GenderUnknown},
		{"string", GenderUnknown},
		{"null", GenderUnknown},
		{"unknown", GenderUnknown},
		{"unkonown", GenderUnknown},
		{"prefer not to say", GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGender(tt.in))
		})
	}
}

func TestGenderBreakdown(t *testing.T) {
	users := []entity.User{
		{Gender: "Male"},
		{Gender: "m"},
		{Gender: "female"},
		{Gender: ""},
		{Gender: "string"},
		{},
	}

	got := GenderBreakdown(users)
	assert.Equal(t, map[string]int{"male": 2, "female": 1, "unknown": 3}, got)
	_, hasOther := got["other"]
	assert.False(t, hasOther, "unobserved buckets must not appear")
}

func TestCategoricalBreakdown_MixedValues(t *testing.T) {
	values := []string{"Male", "m", "FEMALE", "blah", "", ""}
	got := CategoricalBreakdown(values, func(v string) string { return v }, NormalizeGender)
	assert.Equal(t, map[string]int{"male": 2, "female": 1, "unknown": 3}, got)
}

func TestCategoricalBreakdown_RawValues(t *testing.T) {
	records := []entity.Record{{MediaType: "audio"}, {MediaType: "text"}, {MediaType: "audio"}}
	got := CategoricalBreakdown(records, func(r entity.Record) string { return r.MediaType }, nil)
	assert.Equal(t, map[string]int{"audio": 2, "text": 1}, got)
}

func entries(metrics ...int) map[string]enrich.Entry[string] {
	ids := []string{"A", "B", "C", "D", "E", "F"}
	out := make(map[string]enrich.Entry[string], len(metrics))
	for i, m := range metrics {
		out[ids[i]] = enrich.Entry[string]{ID: ids[i], Item: ids[i], Metric: m, HasActivity: m > 0, Index: i}
	}
	return out
}

func TestTopN_TieBreakBySourceOrder(t *testing.T) {
	top := TopN(entries(5, 9, 5, 1), 3)

	require.Len(t, top, 3)
	assert.Equal(t, "B", top[0].ID)
	assert.Equal(t, "A", top[1].ID)
	assert.Equal(t, "C", top[2].ID)
}

func TestTopN_EqualMetrics(t *testing.T) {
	top := TopN(entries(5, 5, 3), 2)

	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].ID)
	assert.Equal(t, 5, top[0].Metric)
	assert.Equal(t, "B", top[1].ID)
	assert.Equal(t, 5, top[1].Metric)
}

func TestTopN_Bounds(t *testing.T) {
	assert.Len(t, TopN(entries(1, 2), 10), 2)
	assert.Empty(t, TopN(entries(1, 2), 0))
	assert.Empty(t, TopN(entries(), 5))
}

func TestTopN_Deterministic(t *testing.T) {
	e := entries(3, 3, 3, 3, 3, 3)
	first := TopN(e, 6)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, TopN(e, 6))
	}
	assert.Equal(t, "A", first[0].ID)
	assert.Equal(t, "F", first[5].ID)
}

func TestActivityRate(t *testing.T) {
	assert.Equal(t, 0.0, ActivityRate(entries()))
	assert.Equal(t, 50.0, ActivityRate(entries(0, 3, 0, 1)))
	assert.Equal(t, 100.0, ActivityRate(entries(2)))

	failed := entries(4, 0)
	e := failed["B"]
	e.Failed = true
	failed["B"] = e
	assert.Equal(t, 50.0, ActivityRate(failed), "failed units count as inactive")
}

func TestSummarizeUsers(t *testing.T) {
	users := []entity.User{
		{Gender: "male", IsActive: true},
		{Gender: "female", IsActive: true},
		{Gender: "f", IsActive: false},
		{Gender: "null", IsActive: true},
	}

	s := SummarizeUsers(users)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Active)
	assert.Equal(t, 1, s.Inactive)
	assert.Equal(t, 75.0, s.ActivePercent)
	assert.Equal(t, map[string]int{"male": 1, "female": 2, "unknown": 1}, s.Gender)
	assert.Equal(t, 50.0, s.GenderPercent["female"])
}

func TestSummarizeUsers_Empty(t *testing.T) {
	s := SummarizeUsers(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.ActivePercent)
	assert.Empty(t, s.Gender)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 0, Total([]entity.User(nil)))
	assert.Equal(t, 3, Total([]int{1, 2, 3}))
}
