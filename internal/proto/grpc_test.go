package proto

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/db"
	"github.com/Rogue-Bear-Innovations/websites/internal/service"
)

func newTestClient(t *testing.T) *WebsitesClient {
	t.Helper()
	l := zap.NewNop().Sugar()

	store, err := db.DialSQLite(context.Background(), ":memory:", l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	adapter := db.NewAdapter(func(context.Context) (db.Store, error) { return store, nil }, l)

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterWebsitesServer(srv, NewWebsitesServerImpl(service.NewWebsites(adapter, "user-1", l), l, true))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewWebsitesClient(conn)
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestWebsitesCRUD(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	created, err := c.Create(ctx, mustStruct(t, map[string]interface{}{
		"title":    "Example",
		"url":      "example.com",
		"userId":   "u1",
		"tags":     []interface{}{"a", " ", "b"},
		"isPublic": 1,
	}))
	require.NoError(t, err)
	assert.True(t, created.Fields["success"].GetBoolValue())
	assert.Equal(t, service.MsgCreated, created.Fields["message"].GetStringValue())

	data := created.Fields["data"].GetStructValue()
	require.NotNil(t, data)
	id := data.Fields["id"].GetStringValue()
	assert.Equal(t, "https://example.com", data.Fields["url"].GetStringValue())
	assert.True(t, data.Fields["isPublic"].GetBoolValue())
	assert.Len(t, data.Fields["tags"].GetListValue().GetValues(), 2)

	listed, err := c.List(ctx, mustStruct(t, map[string]interface{}{"userId": "u1"}))
	require.NoError(t, err)
	items := listed.Fields["data"].GetListValue().GetValues()
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].GetStructValue().Fields["id"].GetStringValue())

	updated, err := c.Update(ctx, mustStruct(t, map[string]interface{}{"id": id, "note": " hello "}))
	require.NoError(t, err)
	got := updated.Fields["data"].GetStructValue()
	assert.Equal(t, "hello", got.Fields["note"].GetStringValue())
	assert.Equal(t, "Example", got.Fields["title"].GetStringValue())

	deleted, err := c.Delete(ctx, mustStruct(t, map[string]interface{}{"id": id}))
	require.NoError(t, err)
	assert.Equal(t, service.MsgDeleted, deleted.Fields["message"].GetStringValue())
	_, hasData := deleted.Fields["data"]
	assert.False(t, hasData)

	listed, err = c.List(ctx, mustStruct(t, map[string]interface{}{"userId": "u1"}))
	require.NoError(t, err)
	assert.Empty(t, listed.Fields["data"].GetListValue().GetValues())
}

func TestWebsitesErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.List(ctx, mustStruct(t, map[string]interface{}{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "User ID is required", status.Convert(err).Message())

	_, err = c.Create(ctx, mustStruct(t, map[string]interface{}{"title": "t", "url": "https://"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Create(ctx, mustStruct(t, map[string]interface{}{"title": "t", "url": "example.com"}))
	require.NoError(t, err)
	_, err = c.Create(ctx, mustStruct(t, map[string]interface{}{"title": "t", "url": "example.com"}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.Delete(ctx, mustStruct(t, map[string]interface{}{"id": db.NewID()}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Update(ctx, mustStruct(t, map[string]interface{}{"id": db.NewID(), "tags": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, codes.InvalidArgument, StatusCode(apperr.KindValidation))
	assert.Equal(t, codes.Unavailable, StatusCode(apperr.KindConnection))
	assert.Equal(t, codes.Internal, StatusCode(apperr.KindInternal))
}
