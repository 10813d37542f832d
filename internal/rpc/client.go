package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region client-struct
// Client calls the prediction service over a gRPC connection.
type Client struct {
	conn grpc.ClientConnInterface
	own  *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// Dial connects to a prediction server at addr without transport security.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, own: conn}, nil
}

// NewClient wraps an existing connection. Close leaves it open.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close shuts down a connection opened by Dial.
func (c *Client) Close() error {
	if c.own == nil {
		return nil
	}
	return c.own.Close()
}

// #endregion constructor

// #region calls
// Prediction fetches the current prediction.
func (c *Client) Prediction(ctx context.Context) (PredictionView, error) {
	var v PredictionView
	err := c.call(ctx, methodGetPrediction, &emptypb.Empty{}, &v)
	return v, err
}

// History fetches up to limit records, newest first. Zero means all.
func (c *Client) History(ctx context.Context, limit uint32) (HistoryView, error) {
	var v HistoryView
	err := c.call(ctx, methodGetHistory, wrapperspb.UInt32(limit), &v)
	return v, err
}

// Stats fetches the ledger tallies.
func (c *Client) Stats(ctx context.Context) (StatsView, error) {
	var v StatsView
	err := c.call(ctx, methodGetStats, &emptypb.Empty{}, &v)
	return v, err
}

// Weights fetches the ensemble weight table.
func (c *Client) Weights(ctx context.Context) (WeightsView, error) {
	var v WeightsView
	err := c.call(ctx, methodGetWeights, &emptypb.Empty{}, &v)
	return v, err
}

// Healthy reports whether the prediction service answers SERVING.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, fmt.Errorf("health rpc: %w", err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *Client) call(ctx context.Context, method string, req any, view any) error {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	return fromStruct(out, view)
}

// #endregion calls
