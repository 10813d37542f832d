package rpc

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/ledger"
	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/predictor"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region descriptor
// ServiceName is the fully qualified gRPC service name.
const ServiceName = "txpredict.v1.PredictionService"

const (
	methodGetPrediction = "/" + ServiceName + "/GetPrediction"
	methodGetHistory    = "/" + ServiceName + "/GetHistory"
	methodGetStats      = "/" + ServiceName + "/GetStats"
	methodGetWeights    = "/" + ServiceName + "/GetWeights"
)

// PredictionServer is the server side of the prediction service.
type PredictionServer interface {
	GetPrediction(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetHistory(context.Context, *wrapperspb.UInt32Value) (*structpb.Struct, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetWeights(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the prediction service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPrediction", Handler: getPredictionHandler},
		{MethodName: "GetHistory", Handler: getHistoryHandler},
		{MethodName: "GetStats", Handler: getStatsHandler},
		{MethodName: "GetWeights", Handler: getWeightsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "txpredict/v1/prediction.proto",
}

func getPredictionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServer).GetPrediction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetPrediction}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictionServer).GetPrediction(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.UInt32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetHistory}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictionServer).GetHistory(ctx, req.(*wrapperspb.UInt32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetStats}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictionServer).GetStats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getWeightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServer).GetWeights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetWeights}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PredictionServer).GetWeights(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion descriptor

// #region service
// Source is the read side of a session the service answers from.
type Source interface {
	Snapshot() (ensemble.Prediction, outcome.Record, bool)
	Recent(n int) []outcome.Record
	Stats() ledger.Stats
	Weights() update.Weights
	Opinions() []predictor.Opinion
}

// ServiceConfig holds the service limits.
type ServiceConfig struct {
	// HistoryLimit caps the records one GetHistory call returns.
	// Zero means no cap.
	HistoryLimit int
}

// DefaultServiceConfig returns the default service limits.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{HistoryLimit: 200}
}

// Service implements PredictionServer over a Source.
type Service struct {
	src    Source
	config ServiceConfig
}

// NewService creates a service reading from src.
func NewService(src Source, config ServiceConfig) *Service {
	return &Service{src: src, config: config}
}

// GetPrediction returns the last result and the call for the next session.
func (s *Service) GetPrediction(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.prediction())
}

// GetHistory returns up to limit records, newest first. A missing or zero
// limit, or one above HistoryLimit, is served as HistoryLimit.
func (s *Service) GetHistory(ctx context.Context, req *wrapperspb.UInt32Value) (*structpb.Struct, error) {
	recent := s.src.Recent(s.historyLimit(int(req.GetValue())))
	view := HistoryView{Records: make([]HistoryItem, len(recent))}
	for i, r := range recent {
		view.Records[i] = historyItem(r)
	}
	return toStruct(view)
}

// GetStats returns the prediction ledger tallies.
func (s *Service) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.src.Stats()
	return toStruct(StatsView{
		TotalPredictions: st.TotalPredictions,
		TotalWins:        st.TotalWins,
		TotalLosses:      st.TotalLosses,
		WinRate:          st.WinRate,
		ActivePatterns:   st.ActivePatterns,
	})
}

// GetWeights returns the current ensemble weight table and each
// predictor's call on the current history.
func (s *Service) GetWeights(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	w := s.src.Weights()
	ops := s.src.Opinions()
	view := WeightsView{
		Weights:  make(map[string]float64, len(w)),
		Opinions: make([]OpinionView, len(ops)),
	}
	for id, v := range w {
		view.Weights[string(id)] = v
	}
	for i, op := range ops {
		call := Abstain
		if op.OK {
			call = string(op.Category)
		}
		view.Opinions[i] = OpinionView{ID: string(op.ID), Call: call}
	}
	return toStruct(view)
}

// historyLimit resolves a requested record count against the cap.
// Recent clamps to the history length, so no cap returns everything.
func (s *Service) historyLimit(requested int) int {
	limit := s.config.HistoryLimit
	if limit <= 0 {
		if requested > 0 {
			return requested
		}
		return math.MaxInt
	}
	if requested > 0 && requested < limit {
		return requested
	}
	return limit
}

func (s *Service) prediction() PredictionView {
	p, last, ok := s.src.Snapshot()
	if !ok {
		return PredictionView{Result: Waiting, Prediction: "none", Confidence: "0%"}
	}
	next := p.TargetSession
	dice := last.Dice
	total := last.Total
	return PredictionView{
		PreviousSession: &last.Session,
		Dice:            &dice,
		Total:           &total,
		Result:          resultLabel(last.Category),
		CurrentSession:  &next,
		Prediction:      string(p.Category),
		Confidence:      fmt.Sprintf("%d%%", int(math.Round(p.Confidence*100))),
	}
}

// #endregion service
