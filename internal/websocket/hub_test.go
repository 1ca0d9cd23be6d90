package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToUserOnly(t *testing.T) {
	hub := NewHub()
	ana := newClient(nil)
	luis := newClient(nil)
	hub.Register("ana", ana)
	hub.Register("luis", luis)

	hub.Publish("ana", Notice{Type: NoticeBalance, Balance: "90.00"})

	require.Len(t, ana.send, 1)
	assert.Len(t, luis.send, 0)
	var notice Notice
	require.NoError(t, json.Unmarshal(<-ana.send, &notice))
	assert.Equal(t, Notice{Type: NoticeBalance, Balance: "90.00"}, notice)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	client := newClient(nil)
	hub.Register("ana", client)
	for i := 0; i < sendBuffer+5; i++ {
		hub.Publish("ana", Notice{Type: NoticeMail})
	}
	assert.Len(t, client.send, sendBuffer)
}

func TestUnregisterRemovesEmptyUser(t *testing.T) {
	hub := NewHub()
	client := newClient(nil)
	hub.Register("ana", client)
	assert.Equal(t, 1, hub.Connected("ana"))
	hub.Unregister("ana", client)
	hub.Unregister("ana", client)
	assert.Equal(t, 0, hub.Connected("ana"))
	hub.Publish("ana", Notice{Type: NoticeMail})
}

func TestServeWSStreamsNotices(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub, "ana")
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connected("ana") == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish("ana", Notice{Type: NoticeMail, MailID: "m1", Subject: "Dinero recibido"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var notice Notice
	require.NoError(t, conn.ReadJSON(&notice))
	assert.Equal(t, "m1", notice.MailID)
	assert.Equal(t, NoticeMail, notice.Type)
}
