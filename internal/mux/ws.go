package mux

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"holdem-server/pkg/room"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10
const maxMessageSize = 4096

// socketCredentials returns the token for a websocket request
// A token sent as the first subprotocol is echoed back in the response header
func socketCredentials(r *http.Request) (string, http.Header) {
	if token := r.FormValue("access_token"); token != "" {
		return token, nil
	}

	if authHeader := strings.Split(r.Header.Get("Authorization"), " "); len(authHeader) == 2 && strings.ToLower(authHeader[0]) == "bearer" {
		return authHeader[1], nil
	}

	if protocols := websocket.Subprotocols(r); len(protocols) > 0 {
		return protocols[0], http.Header{"Sec-Websocket-Protocol": {protocols[0]}}
	}

	return "", nil
}

func (m *Mux) getWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token, header := socketCredentials(r)

		conn, err := upgrader.Upgrade(w, r, header)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		userID, err := m.authenticateSocket(token)
		if err != nil {
			logrus.WithError(err).Debug("rejecting websocket connection")
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"), time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		client, err := room.NewClient(conn, userID, m.socket.newLimiter())
		if err != nil {
			logrus.WithError(err).Error("could not create client")
			_ = conn.Close()
			return
		}

		m.pitBoss.ClientConnected(client)

		waitForCloseFrame := make(chan bool)
		defer func() {
			m.pitBoss.ClientDisconnected(client)
			_ = conn.Close()
			close(waitForCloseFrame)
		}()

		go m.webSocketWriteLoop(client, waitForCloseFrame)
		m.webSocketReadLoop(r, client)
	}
}

func (m *Mux) authenticateSocket(token string) (int64, error) {
	if token == "" {
		return 0, errMissingCredentials
	}

	return m.keys.ValidUserID(token)
}

func (m *Mux) webSocketWriteLoop(client *room.Client, waitForCloseFrame chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case reason := <-client.Close:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = client.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, reason))

			// wait for the close frame
			select {
			case <-waitForCloseFrame:
			case <-time.After(time.Second):
			}
			return
		case msg := <-client.SendChan():
			logrus.WithField("message", msg).WithField("client", client.String()).Trace("sending message to client")

			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("client", client.String()).Error("could not write message")
				return
			}
		case <-waitForCloseFrame:
			return
		}
	}
}

func (m *Mux) webSocketReadLoop(r *http.Request, client *room.Client) {
	for {
		_, b, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("client", client.String()).Error("could not read message")
			}

			client.CloseError = err
			return
		}

		m.pitBoss.ReceivedMessage(r.Context(), client, b)
	}
}
