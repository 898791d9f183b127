package messaging

import (
	"context"
	"time"

	"github.com/Nystya/atomic-kv/domain"
	pb "github.com/Nystya/atomic-kv/grpc/atomickv"
	"github.com/dapr/kit/logger"
	"github.com/golang/protobuf/ptypes/empty"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type StoreClientConfig struct {
	ServerAddr  string
	DialTimeout time.Duration
	DialOptions []grpc.DialOption
}

type StoreClient struct {
	rpcStoreClient pb.AtomicStoreClient
	conn           *grpc.ClientConn
	serverAddr     string
	dialTimeout    time.Duration
	dialOptions    []grpc.DialOption

	logger logger.Logger
}

func NewStoreClient(config *StoreClientConfig, log logger.Logger) *StoreClient {
	dialTimeout := config.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}

	return &StoreClient{
		serverAddr:  config.ServerAddr,
		dialTimeout: dialTimeout,
		dialOptions: config.DialOptions,
		logger:      log,
	}
}

func (c *StoreClient) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	opts := append([]grpc.DialOption{grpc.WithInsecure(), grpc.WithBlock()}, c.dialOptions...)

	rpcConn, err := grpc.DialContext(ctx, c.serverAddr, opts...)
	if err != nil {
		return errors.Wrapf(err, "could not connect to %s", c.serverAddr)
	}

	c.logger.Infof("Connected to: %v", c.serverAddr)

	c.conn = rpcConn
	c.rpcStoreClient = pb.NewAtomicStoreClient(rpcConn)

	return nil
}

func (c *StoreClient) Close() error {
	if c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// TxResult is the decoded outcome of a remote atomic execution.
type TxResult struct {
	TxID   string
	Status domain.Status
	Writes int
	Reason string
}

func (c *StoreClient) WriteAtomic(ctx context.Context) (*TxResult, error) {
	resp, err := c.rpcStoreClient.WriteAtomic(ctx, &empty.Empty{})
	if err != nil {
		return nil, err
	}

	return decodeResult(resp)
}

func (c *StoreClient) WriteNonAtomic(ctx context.Context) error {
	_, err := c.rpcStoreClient.WriteNonAtomic(ctx, &empty.Empty{})
	return err
}

func (c *StoreClient) WriteAwaited(ctx context.Context) error {
	_, err := c.rpcStoreClient.WriteAwaited(ctx, &empty.Empty{})
	return err
}

// Transact sends writes in order. Use a nil value to send an invalid value.
func (c *StoreClient) Transact(ctx context.Context, keys []string, values []interface{}, fail bool) (*TxResult, error) {
	if len(keys) != len(values) {
		return nil, errors.Errorf("got %d keys and %d values", len(keys), len(values))
	}

	writes := make([]interface{}, 0, len(keys))
	for i, key := range keys {
		writes = append(writes, map[string]interface{}{
			pb.FieldKey:   key,
			pb.FieldValue: values[i],
		})
	}

	request, err := structpb.NewStruct(map[string]interface{}{
		pb.FieldWrites: writes,
		pb.FieldFail:   fail,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not encode transaction")
	}

	resp, err := c.rpcStoreClient.Transact(ctx, request)
	if err != nil {
		return nil, err
	}

	return decodeResult(resp)
}

func (c *StoreClient) Read(ctx context.Context, keys ...string) (map[string]*string, error) {
	values := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		values = append(values, key)
	}

	request, err := structpb.NewList(values)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode keys")
	}

	resp, err := c.rpcStoreClient.Read(ctx, request)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*string, len(resp.GetFields()))
	for key, value := range resp.GetFields() {
		if _, ok := value.GetKind().(*structpb.Value_NullValue); ok {
			result[key] = nil
			continue
		}

		s := value.GetStringValue()
		result[key] = &s
	}

	return result, nil
}

func (c *StoreClient) Reset(ctx context.Context) error {
	_, err := c.rpcStoreClient.Reset(ctx, &empty.Empty{})
	return err
}

func (c *StoreClient) GetStatus(ctx context.Context, txID string) (domain.Status, error) {
	resp, err := c.rpcStoreClient.GetStatus(ctx, wrapperspb.String(txID))
	if err != nil {
		return domain.Open, err
	}

	return domain.ParseStatus(resp.GetValue())
}

func decodeResult(resp *structpb.Struct) (*TxResult, error) {
	fields := resp.GetFields()

	s, err := domain.ParseStatus(fields[pb.FieldStatus].GetStringValue())
	if err != nil {
		return nil, err
	}

	return &TxResult{
		TxID:   fields[pb.FieldTxID].GetStringValue(),
		Status: s,
		Writes: int(fields[pb.FieldWrites].GetNumberValue()),
		Reason: fields[pb.FieldReason].GetStringValue(),
	}, nil
}
