package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client wraps RatingReportClient with the typed request and response views.
type Client struct {
	raw RatingReportClient
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{raw: NewRatingReportClient(cc)}
}

func call[Req, Resp any](ctx context.Context, req Req, fn func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), opts ...grpc.CallOption) (Resp, error) {
	var resp Resp
	in, err := Encode(req)
	if err != nil {
		return resp, err
	}
	out, err := fn(ctx, in, opts...)
	if err != nil {
		return resp, err
	}
	err = Decode(out, &resp)
	return resp, err
}

func (c *Client) RenderReport(ctx context.Context, req RenderReportRequest, opts ...grpc.CallOption) (RenderReportResponse, error) {
	return call[RenderReportRequest, RenderReportResponse](ctx, req, c.raw.RenderReport, opts...)
}

func (c *Client) GetAggregate(ctx context.Context, req GetAggregateRequest, opts ...grpc.CallOption) (GetAggregateResponse, error) {
	return call[GetAggregateRequest, GetAggregateResponse](ctx, req, c.raw.GetAggregate, opts...)
}

func (c *Client) MigrateStep(ctx context.Context, req MigrateStepRequest, opts ...grpc.CallOption) (MigrateStepResponse, error) {
	return call[MigrateStepRequest, MigrateStepResponse](ctx, req, c.raw.MigrateStep, opts...)
}
