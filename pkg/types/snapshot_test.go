package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMapJSONKeepsOrder(t *testing.T) {
	m := FieldMap{
		{LabelType, "SalariedWorker"},
		{LabelName, "Bob"},
		{LabelAge, 45},
		{LabelSalary, mustDec("3000.50")},
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Type":"SalariedWorker","Name":"Bob","Age":45,"Salary":3000.5}`, string(data))

	var back FieldMap
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Labels(), back.Labels())
	assert.Equal(t, json.Number("3000.5"), back[3].Value)
}

func TestFieldMapRejectsNested(t *testing.T) {
	var m FieldMap
	assert.Error(t, json.Unmarshal([]byte(`{"Name":{"first":"A"}}`), &m))
	assert.Error(t, json.Unmarshal([]byte(`["Name"]`), &m))
}

func TestSnapshotJSON(t *testing.T) {
	snap := NewSnapshot()
	snap[CategoryHourly] = []Record{
		{ID: "1", Fields: newHourly().FieldMap()},
		{ID: "3", Fields: newHourly().FieldMap()},
	}
	snap[CategorySalaried] = []Record{{ID: "2", Fields: newSalaried().FieldMap()}}

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 3, back.Len())

	ids := func(s Snapshot) map[string][]string {
		out := map[string][]string{}
		for c, recs := range s {
			out[c] = []string{}
			for _, r := range recs {
				out[c] = append(out[c], r.ID)
			}
		}
		return out
	}
	if diff := cmp.Diff(ids(snap), ids(back)); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, snap[CategorySalaried][0].Fields.Labels(), back[CategorySalaried][0].Fields.Labels())
}

func TestSnapshotEmptyDocument(t *testing.T) {
	data, err := json.Marshal(NewSnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"hourly":{},"salaried":{}}`, string(data))

	var back Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"hourly":{}}`), &back))
	assert.Empty(t, back[CategorySalaried])
	assert.NotNil(t, back[CategorySalaried])
}

func TestSnapshotDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown category", `{"hourly":{},"contract":{}}`},
		{"duplicate category", `{"hourly":{},"hourly":{}}`},
		{"duplicate identifier", `{"hourly":{"1":{"Type":"HourlyWorker"},"1":{"Type":"HourlyWorker"}}}`},
		{"not an object", `[1,2]`},
		{"truncated", `{"hourly":{"1":`},
		{"trailing data", `{"hourly":{}} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snapshot
			assert.Error(t, json.Unmarshal([]byte(tt.doc), &s))
		})
	}
}
