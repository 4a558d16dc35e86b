package mux

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-server/internal/jwt"
	"holdem-server/internal/rng"
	"holdem-server/pkg/model"
	"holdem-server/pkg/room"
)

var cbg = context.Background()

type testServer struct {
	*httptest.Server
	keys    *jwt.Keys
	pitBoss *room.PitBoss
	store   *model.Memory
}

func newTestServer(t *testing.T, socket ...SocketConfig) *testServer {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	store := model.NewMemory()
	pitBoss := room.NewPitBoss(store, room.WithRNG(rng.NewSeeded(1)))

	var sc SocketConfig
	if len(socket) > 0 {
		sc = socket[0]
	}

	ts := &testServer{
		keys:    jwt.NewKeys(privateKey),
		pitBoss: pitBoss,
		store:   store,
	}

	ts.Server = httptest.NewServer(NewMux("v1.2.3", pitBoss, ts.keys, sc))
	t.Cleanup(func() {
		ts.Close()
		pitBoss.Close()
	})

	return ts
}

// token signs a credential for the user
func (ts *testServer) token(t *testing.T, userID int64) string {
	t.Helper()

	token, err := ts.keys.Sign(userID, time.Hour)
	require.NoError(t, err)

	return token
}

func Test_parsePaginationOptions(t *testing.T) {
	req := func(queryString string) *http.Request {
		req, _ := http.NewRequest(http.MethodGet, "https://example.domain/"+queryString, nil)
		return req
	}

	start, rows, err := parsePaginationOptions(req(""))
	assert.NoError(t, err)
	assert.Equal(t, 0, start)
	assert.Equal(t, defaultRows, rows)

	start, rows, err = parsePaginationOptions(req("?start=10&rows=25"))
	assert.NoError(t, err)
	assert.Equal(t, 10, start)
	assert.Equal(t, 25, rows)

	_, _, err = parsePaginationOptions(req("?start=-1&rows=25"))
	assert.EqualError(t, err, "start cannot be less than zero")

	_, _, err = parsePaginationOptions(req("?start=0&rows=0"))
	assert.EqualError(t, err, "rows must be greater than zero")

	_, _, err = parsePaginationOptions(req(fmt.Sprintf("?start=0&rows=%d", maxRows+1)))
	assert.EqualError(t, err, fmt.Sprintf("rows cannot be greater than %d", maxRows))

	_, _, err = parsePaginationOptions(req("?rows=ten"))
	assert.EqualError(t, err, "rows must be an integer")
}

func Test_writeError(t *testing.T) {
	tests := []struct {
		err        error
		statusCode int
		message    string
	}{
		{model.ErrNotFound, 404, "Not Found"},
		{fmt.Errorf("room abc: %w", model.ErrNotFound), 404, "Not Found"},
		{model.ErrSessionInProgress, 409, "a hand is already in progress for this room"},
		{model.ErrRoomFull, 409, "the room is full"},
		{model.UserError("name is required"), 400, "name is required"},
		{room.ErrClosed, 503, "Service Unavailable"},
		{fmt.Errorf("connection reset by peer"), 500, "Internal Server Error"},
	}

	for _, test := range tests {
		t.Run(test.message, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, test.err)

			var resp errorResponse
			assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, test.statusCode, w.Code)
			assert.Equal(t, errorResponse{Message: test.message, StatusCode: test.statusCode}, resp)
		})
	}
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *testServer, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *testServer, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}
