package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newServer(t *testing.T, hub *Hub) (*httptest.Server, chan struct{}) {
	t.Helper()
	registered := make(chan struct{}, 1)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register("c1", "u1", conn)
		registered <- struct{}{}
		defer func() {
			hub.Unregister("c1")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	return srv, registered
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_ObserveBroadcastsChange(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { hub.Run(ctx); close(done) }()

	srv, registered := newServer(t, hub)
	conn := dial(t, srv)
	<-registered
	assert.Equal(t, 1, hub.Count())

	repo := store.NewRepository[models.Distribution](models.CollectionDistributions, hub)
	require.NoError(t, repo.Create(context.Background(), models.Distribution{ID: "d1"}))

	var msg struct {
		Event string `json:"event"`
		Data  Change `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "distributions.upsert", msg.Event)
	assert.Equal(t, []string{"d1"}, msg.Data.IDs)

	conn.Close()
	srv.Close()
	cancel()
	<-done
}

func TestHub_ObserveIgnoresReplaceAndNeverBlocks(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	hub.Observe(context.Background(), store.Event{Collection: "stock", Op: store.OpReplace})
	assert.Len(t, hub.feed, 0)

	for i := 0; i < feedBuffer+10; i++ {
		hub.Observe(context.Background(), store.Event{Collection: "stock", Op: store.OpDelete, IDs: []string{"x"}})
	}
	assert.Len(t, hub.feed, feedBuffer)
}
