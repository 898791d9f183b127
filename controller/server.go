package controller

import (
	"context"

	"github.com/Nystya/atomic-kv/domain"
	pb "github.com/Nystya/atomic-kv/grpc/atomickv"
	"github.com/Nystya/atomic-kv/service"
	"github.com/dapr/kit/logger"
	"github.com/golang/protobuf/ptypes/empty"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type StoreServer struct {
	pb.UnimplementedAtomicStoreServer

	store service.Store

	logger logger.Logger
}

func NewStoreServer(store service.Store, log logger.Logger) *StoreServer {
	return &StoreServer{
		UnimplementedAtomicStoreServer: pb.UnimplementedAtomicStoreServer{},
		store:                          store,
		logger:                         log,
	}
}

func (c *StoreServer) WriteAtomic(ctx context.Context, _ *empty.Empty) (*structpb.Struct, error) {
	return resultToStruct(c.store.WriteAtomic(ctx))
}

func (c *StoreServer) WriteNonAtomic(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	if err := c.store.WriteNonAtomic(ctx); err != nil {
		return nil, c.toStatus(err)
	}

	return &empty.Empty{}, nil
}

func (c *StoreServer) WriteAwaited(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	if err := c.store.WriteAwaited(ctx); err != nil {
		return nil, c.toStatus(err)
	}

	return &empty.Empty{}, nil
}

// Transact expects {"writes": [{"key": k, "value": v}, ...], "fail": bool}.
// A null value is an invalid value and aborts the transaction.
func (c *StoreServer) Transact(ctx context.Context, request *structpb.Struct) (*structpb.Struct, error) {
	fields := request.GetFields()

	writes := make([]service.KeyValue, 0)
	for i, item := range fields[pb.FieldWrites].GetListValue().GetValues() {
		write := item.GetStructValue()
		if write == nil {
			return nil, status.Errorf(codes.InvalidArgument, "write %d is not an object", i)
		}

		key, ok := write.GetFields()[pb.FieldKey]
		if !ok || key.GetStringValue() == "" {
			return nil, status.Errorf(codes.InvalidArgument, "write %d has no key", i)
		}

		writes = append(writes, service.KeyValue{
			Key:   key.GetStringValue(),
			Value: write.GetFields()[pb.FieldValue].AsInterface(),
		})
	}

	fail := fields[pb.FieldFail].GetBoolValue()

	return resultToStruct(c.store.Transact(ctx, writes, fail))
}

func (c *StoreServer) Read(ctx context.Context, request *structpb.ListValue) (*structpb.Struct, error) {
	keys := make([]string, 0, len(request.GetValues()))
	for _, value := range request.GetValues() {
		keys = append(keys, value.GetStringValue())
	}

	values, err := c.store.Read(ctx, keys)
	if err != nil {
		return nil, c.toStatus(err)
	}

	fields := make(map[string]*structpb.Value, len(values))
	for key, value := range values {
		if value == nil {
			fields[key] = structpb.NewNullValue()
			continue
		}

		fields[key] = structpb.NewStringValue(*value)
	}

	return &structpb.Struct{Fields: fields}, nil
}

func (c *StoreServer) Reset(ctx context.Context, _ *empty.Empty) (*empty.Empty, error) {
	if err := c.store.Reset(ctx); err != nil {
		return nil, c.toStatus(err)
	}

	return &empty.Empty{}, nil
}

func (c *StoreServer) GetStatus(ctx context.Context, txID *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	s, err := c.store.GetStatus(ctx, txID.GetValue())
	if err != nil {
		return nil, c.toStatus(err)
	}

	return wrapperspb.String(s.String()), nil
}

func resultToStruct(result domain.Result) (*structpb.Struct, error) {
	fields := map[string]*structpb.Value{
		pb.FieldTxID:   structpb.NewStringValue(result.TxID),
		pb.FieldStatus: structpb.NewStringValue(result.Status.String()),
		pb.FieldWrites: structpb.NewNumberValue(float64(result.Writes)),
	}

	if result.Reason != nil {
		fields[pb.FieldReason] = structpb.NewStringValue(result.Reason.Error())
	}

	return &structpb.Struct{Fields: fields}, nil
}

func (c *StoreServer) toStatus(err error) error {
	switch {
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domain.IsInvalidValue(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsScriptFault(err):
		c.logger.Warnf("unguarded write faulted: %v", err)
		return status.Error(codes.Internal, err.Error())
	}

	c.logger.Errorf("request failed: %v", errors.Cause(err))

	return status.Error(codes.Unavailable, err.Error())
}
