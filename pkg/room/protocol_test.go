package room

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"holdem-server/pkg/poker/action"
)

func TestDecodeMessage(t *testing.T) {
	a := assert.New(t)

	msg, err := DecodeMessage([]byte(`{"type":"join_room","data":{"roomId":"abc"}}`))
	a.NoError(err)
	a.Equal(&JoinRoom{RoomID: "abc"}, msg)

	msg, err = DecodeMessage([]byte(`{"type":"leave_room","data":{"roomId":"abc"}}`))
	a.NoError(err)
	a.Equal(&LeaveRoom{RoomID: "abc"}, msg)

	msg, err = DecodeMessage([]byte(`{"type":"game_action","data":{"sessionId":"s1","action":{"action_type":"raise","amount":40}}}`))
	a.NoError(err)
	a.Equal(&GameAction{SessionID: "s1", Action: &ActionPayload{Type: action.Raise, Amount: 40}}, msg)

	msg, err = DecodeMessage([]byte(`{"type":"chat_message","data":{"roomId":"abc","message":"nice hand"}}`))
	a.NoError(err)
	a.Equal(&ChatMessage{RoomID: "abc", Message: "nice hand"}, msg)
}

func TestDecodeMessage_errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"not json", `hello`, "malformed message: invalid character 'h' looking for beginning of value"},
		{"missing type", `{"data":{}}`, "malformed message: type is required"},
		{"unknown type", `{"type":"shuffle_up","data":{}}`, "unknown message type: shuffle_up"},
		{"missing data", `{"type":"join_room"}`, "malformed message: data is required"},
		{"null data", `{"type":"join_room","data":null}`, "malformed message: data is required"},
		{"join without room", `{"type":"join_room","data":{}}`, "malformed message: roomId is required"},
		{"leave with blank room", `{"type":"leave_room","data":{"roomId":"  "}}`, "malformed message: roomId is required"},
		{"action without session", `{"type":"game_action","data":{"action":{"action_type":"fold"}}}`, "malformed message: sessionId is required"},
		{"action without action", `{"type":"game_action","data":{"sessionId":"s1"}}`, "malformed message: action is required"},
		{"blind", `{"type":"game_action","data":{"sessionId":"s1","action":{"action_type":"big_blind","amount":20}}}`, `malformed message: "big_blind" cannot be submitted`},
		{"unknown action", `{"type":"game_action","data":{"sessionId":"s1","action":{"action_type":"muck"}}}`, "malformed message: unknown action for identifier: muck"},
		{"negative amount", `{"type":"game_action","data":{"sessionId":"s1","action":{"action_type":"raise","amount":-5}}}`, "malformed message: amount cannot be negative"},
		{"empty chat", `{"type":"chat_message","data":{"roomId":"abc","message":""}}`, "malformed message: message is required"},
		{"wrong shape", `{"type":"join_room","data":{"roomId":5}}`, "malformed message: json: cannot unmarshal number"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(test.input))
			assert.Nil(t, msg)
			assert.ErrorContains(t, err, test.err)
		})
	}
}

func TestMessage_json(t *testing.T) {
	a := assert.New(t)

	at := time.Date(2026, 3, 14, 21, 5, 0, 0, time.FixedZone("EST", -5*3600))
	msg := newChatRelay(7, &ChatMessage{RoomID: "abc", Message: "gl"}, at)

	b, err := json.Marshal(msg)
	a.NoError(err)
	a.JSONEq(`{
		"type": "chat_message",
		"data": {"userId": 7, "roomId": "abc", "message": "gl", "timestamp": "2026-03-15T02:05:00Z"}
	}`, string(b))

	b, err = json.Marshal(newErrorResponse(ErrInvalidRoomID))
	a.NoError(err)
	a.JSONEq(`{"type":"error","data":{"message":"invalid room id"}}`, string(b))
}
