// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package pushrpc declares the gRPC push stream shared by the server handler
// and the client listener.
//
// Messages are plain Go structs carried with a JSON codec, so the service is
// described by a hand-written [grpc.ServiceDesc] instead of generated
// protobuf stubs. The caller's bearer token travels in the "authorization"
// metadata key.
package pushrpc

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"

	"github.com/MKhiriev/go-offline-sync/models"
)

const (
	ServiceName         = "offlinesync.push.v1.RecordPush"
	subscribeStream     = "Subscribe"
	SubscribeFullMethod = "/" + ServiceName + "/" + subscribeStream

	// CodecName is the content subtype both sides negotiate.
	CodecName = "json"

	// AuthorizationKey is the metadata key holding "Bearer <token>".
	AuthorizationKey = "authorization"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

// SubscribeRequest opens the stream. The owner is taken from the token.
type SubscribeRequest struct{}

// EventStream is the server side of an open subscription.
type EventStream interface {
	Send(event *models.PushEvent) error
	Context() context.Context
}

// PushServer is implemented by the server-side push handler.
type PushServer interface {
	Subscribe(req *SubscribeRequest, stream EventStream) error
}

type eventStream struct {
	grpc.ServerStream
}

func (s *eventStream) Send(event *models.PushEvent) error {
	return s.ServerStream.SendMsg(event)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	req := new(SubscribeRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(PushServer).Subscribe(req, &eventStream{stream})
}

// ServiceDesc describes the push service for [grpc.ServiceRegistrar].
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PushServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    subscribeStream,
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "pushrpc",
}

// RegisterPushServer attaches srv to the gRPC server s.
func RegisterPushServer(s grpc.ServiceRegistrar, srv PushServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// EventReceiver is the client side of an open subscription.
type EventReceiver interface {
	Recv() (*models.PushEvent, error)
}

// Client opens push subscriptions over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Subscribe opens a stream authorized with token. The stream ends when ctx is
// cancelled.
func (c *Client) Subscribe(ctx context.Context, token string) (EventReceiver, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, AuthorizationKey, "Bearer "+token)

	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], SubscribeFullMethod, grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&SubscribeRequest{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	return &eventReceiver{stream: stream}, nil
}

type eventReceiver struct {
	stream grpc.ClientStream
}

func (r *eventReceiver) Recv() (*models.PushEvent, error) {
	event := new(models.PushEvent)
	if err := r.stream.RecvMsg(event); err != nil {
		return nil, err
	}
	return event, nil
}

// AuthorizationFromContext returns the raw authorization value sent by the
// client, or "" when absent.
func AuthorizationFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(AuthorizationKey)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
