package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, NewID().Validate())
	assert.Error(t, ID("").Validate())
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	orig := Timestamp(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, time.Time(orig).Equal(time.Time(decoded)))

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
}

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		wantPage int
		wantSize int
	}{
		{"zero values", PageRequest{}, 1, 20},
		{"negative page", PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"already sane", PageRequest{Page: 4, PageSize: 25}, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.wantPage, tt.in.Page)
			assert.Equal(t, tt.wantSize, tt.in.PageSize)
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	p := PageRequest{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestNewPageResponse(t *testing.T) {
	items := []string{"a", "b", "c"}

	resp := NewPageResponse(items, 12, PageRequest{Page: 2, PageSize: 5})
	assert.Equal(t, items, resp.Items)
	assert.Equal(t, int64(12), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)

	exact := NewPageResponse(items, 10, PageRequest{Page: 1, PageSize: 5})
	assert.Equal(t, 2, exact.TotalPages)

	empty := NewPageResponse([]string(nil), 0, PageRequest{})
	assert.Equal(t, 0, empty.TotalPages)
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now()
	ev := NewBaseEvent("spc-1")

	assert.Equal(t, "spc-1", ev.AggregateID())
	assert.NotEmpty(t, ev.EventID())
	assert.False(t, ev.OccurredAt().Before(before))
}
