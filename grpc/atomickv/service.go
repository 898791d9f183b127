// Package atomickv holds the gRPC service definition of the atomic store.
// Messages are protobuf well-known types, so no generated message code is
// needed; the descriptor below is what protoc-gen-go-grpc would emit for
//
//	service AtomicStore {
//	  rpc WriteAtomic(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc WriteNonAtomic(google.protobuf.Empty) returns (google.protobuf.Empty);
//	  rpc WriteAwaited(google.protobuf.Empty) returns (google.protobuf.Empty);
//	  rpc Transact(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc Read(google.protobuf.ListValue) returns (google.protobuf.Struct);
//	  rpc Reset(google.protobuf.Empty) returns (google.protobuf.Empty);
//	  rpc GetStatus(google.protobuf.StringValue) returns (google.protobuf.StringValue);
//	}
package atomickv

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "atomickv.AtomicStore"

// Field names used in Struct messages.
const (
	FieldTxID   = "id"
	FieldStatus = "status"
	FieldWrites = "writes"
	FieldReason = "reason"
	FieldKey    = "key"
	FieldValue  = "value"
	FieldFail   = "fail"
)

type AtomicStoreClient interface {
	WriteAtomic(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	WriteNonAtomic(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	WriteAwaited(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	Transact(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Read(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Reset(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error)
	GetStatus(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type atomicStoreClient struct {
	cc grpc.ClientConnInterface
}

func NewAtomicStoreClient(cc grpc.ClientConnInterface) AtomicStoreClient {
	return &atomicStoreClient{cc}
}

func (c *atomicStoreClient) WriteAtomic(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/WriteAtomic", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *atomicStoreClient) WriteNonAtomic(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	out := new(empty.Empty)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/WriteNonAtomic", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *atomicStoreClient) WriteAwaited(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	out := new(empty.Empty)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/WriteAwaited", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *atomicStoreClient) Transact(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/Transact", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *atomicStoreClient) Read(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/Read", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *atomicStoreClient) Reset(ctx context.Context, in *empty.Empty, opts ...grpc.CallOption) (*empty.Empty, error) {
	out := new(empty.Empty)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/Reset", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *atomicStoreClient) GetStatus(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetStatus", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type AtomicStoreServer interface {
	WriteAtomic(context.Context, *empty.Empty) (*structpb.Struct, error)
	WriteNonAtomic(context.Context, *empty.Empty) (*empty.Empty, error)
	WriteAwaited(context.Context, *empty.Empty) (*empty.Empty, error)
	Transact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Read(context.Context, *structpb.ListValue) (*structpb.Struct, error)
	Reset(context.Context, *empty.Empty) (*empty.Empty, error)
	GetStatus(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedAtomicStoreServer can be embedded to have forward compatible implementations.
type UnimplementedAtomicStoreServer struct{}

func (UnimplementedAtomicStoreServer) WriteAtomic(context.Context, *empty.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WriteAtomic not implemented")
}
func (UnimplementedAtomicStoreServer) WriteNonAtomic(context.Context, *empty.Empty) (*empty.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WriteNonAtomic not implemented")
}
func (UnimplementedAtomicStoreServer) WriteAwaited(context.Context, *empty.Empty) (*empty.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WriteAwaited not implemented")
}
func (UnimplementedAtomicStoreServer) Transact(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Transact not implemented")
}
func (UnimplementedAtomicStoreServer) Read(context.Context, *structpb.ListValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Read not implemented")
}
func (UnimplementedAtomicStoreServer) Reset(context.Context, *empty.Empty) (*empty.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Reset not implemented")
}
func (UnimplementedAtomicStoreServer) GetStatus(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}

func RegisterAtomicStoreServer(s grpc.ServiceRegistrar, srv AtomicStoreServer) {
	s.RegisterService(&AtomicStore_ServiceDesc, srv)
}

func _AtomicStore_WriteAtomic_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).WriteAtomic(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/WriteAtomic",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).WriteAtomic(ctx, req.(*empty.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _AtomicStore_WriteNonAtomic_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).WriteNonAtomic(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/WriteNonAtomic",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).WriteNonAtomic(ctx, req.(*empty.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _AtomicStore_WriteAwaited_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).WriteAwaited(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/WriteAwaited",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).WriteAwaited(ctx, req.(*empty.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _AtomicStore_Transact_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).Transact(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Transact",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).Transact(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _AtomicStore_Read_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).Read(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Read",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).Read(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _AtomicStore_Reset_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).Reset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Reset",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).Reset(ctx, req.(*empty.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _AtomicStore_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtomicStoreServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/GetStatus",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtomicStoreServer).GetStatus(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var AtomicStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AtomicStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WriteAtomic", Handler: _AtomicStore_WriteAtomic_Handler},
		{MethodName: "WriteNonAtomic", Handler: _AtomicStore_WriteNonAtomic_Handler},
		{MethodName: "WriteAwaited", Handler: _AtomicStore_WriteAwaited_Handler},
		{MethodName: "Transact", Handler: _AtomicStore_Transact_Handler},
		{MethodName: "Read", Handler: _AtomicStore_Read_Handler},
		{MethodName: "Reset", Handler: _AtomicStore_Reset_Handler},
		{MethodName: "GetStatus", Handler: _AtomicStore_GetStatus_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "atomickv.proto",
}
