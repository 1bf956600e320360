package v1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages travel as google.protobuf.Struct. The Go types below are their
// typed views; field names are the JSON names on the wire.

type RenderReportRequest struct {
	PostID int64  `json:"post_id"`
	Layout string `json:"layout,omitempty"`
}

type RenderReportResponse struct {
	HTML string `json:"html"`
}

type GetAggregateRequest struct {
	PostID int64 `json:"post_id"`
}

type AggregateRecord struct {
	Key         string  `json:"key"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Formatted   string  `json:"formatted"`
}

type GetAggregateResponse struct {
	PostID           int64             `json:"post_id"`
	Records          []AggregateRecord `json:"records"`
	Average          float64           `json:"average"`
	FormattedAverage string            `json:"formatted_average"`
}

type MigrateStepRequest struct {
	Step          int  `json:"step"`
	DeleteOldData bool `json:"delete_old_data"`
}

type MigrateStepResponse struct {
	Step       string `json:"step"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// Encode converts v into a Struct through its JSON form.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return s, nil
}

// Decode fills dest from s. A nil Struct decodes as an empty object.
func Decode(s *structpb.Struct, dest any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode %T: %w", dest, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %T: %w", dest, err)
	}
	return nil
}
