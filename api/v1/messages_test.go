package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestEncode(t *testing.T) {
	s, err := Encode(GetAggregateResponse{
		PostID:  42,
		Records: []AggregateRecord{{Key: "plot", Category: "Plot", Rating: 4.5, Formatted: "4.5"}},
		Average: 4.5,
	})
	require.NoError(t, err)

	assert.Equal(t, 42.0, s.Fields["post_id"].GetNumberValue())
	records := s.Fields["records"].GetListValue().GetValues()
	require.Len(t, records, 1)
	assert.Equal(t, "Plot", records[0].GetStructValue().Fields["category"].GetStringValue())
}

func TestDecode(t *testing.T) {
	t.Run("numbers and booleans", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{"step": 3, "delete_old_data": true, "extra": "ignored"})
		require.NoError(t, err)

		var req MigrateStepRequest
		require.NoError(t, Decode(s, &req))
		assert.Equal(t, MigrateStepRequest{Step: 3, DeleteOldData: true}, req)
	})

	t.Run("nil struct", func(t *testing.T) {
		var req RenderReportRequest
		require.NoError(t, Decode(nil, &req))
		assert.Zero(t, req)
	})

	t.Run("wrong type", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{"post_id": "seven"})
		require.NoError(t, err)

		var req RenderReportRequest
		assert.Error(t, Decode(s, &req))
	})

	t.Run("fractional integer", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{"post_id": 1.5})
		require.NoError(t, err)

		var req RenderReportRequest
		assert.Error(t, Decode(s, &req))
	})
}
