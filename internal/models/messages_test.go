package models

import (
	"encoding/json"
	"testing"

	apperrors "whiteboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, msg Inbound)
	}{
		{
			name:  "join room",
			input: `{"type":"join_room","roomId":"r1"}`,
			check: func(t *testing.T, msg Inbound) {
				assert.Equal(t, &JoinRoom{RoomID: "r1"}, msg)
			},
		},
		{
			name:  "leave room",
			input: `{"type":"leave_room","roomId":"r1"}`,
			check: func(t *testing.T, msg Inbound) {
				assert.Equal(t, &LeaveRoom{RoomID: "r1"}, msg)
			},
		},
		{
			name:  "drawing with element array",
			input: `{"type":"drawing","roomId":"r1","clientId":"tab","elements":[{"id":"a","version":2},{"id":"b","version":1,"isDeleted":true}]}`,
			check: func(t *testing.T, msg Inbound) {
				d := msg.(*Drawing)
				assert.Equal(t, "tab", d.ClientID)
				require.Len(t, d.Elements, 2)
				assert.Equal(t, int64(2), d.Elements[0].Version)
				assert.True(t, d.Elements[1].IsDeleted)
			},
		},
		{
			name:  "drawing with a single element object",
			input: `{"type":"drawing","roomId":"r1","elements":{"id":"a","version":1}}`,
			check: func(t *testing.T, msg Inbound) {
				d := msg.(*Drawing)
				require.Len(t, d.Elements, 1)
				assert.Equal(t, "a", d.Elements[0].ID)
			},
		},
		{
			name:  "cursor",
			input: `{"type":"cursor","roomId":"r1","pointer":{"x":3,"y":4},"color":"red"}`,
			check: func(t *testing.T, msg Inbound) {
				c := msg.(*Cursor)
				assert.Equal(t, Pointer{X: 3, Y: 4}, *c.Pointer)
				assert.Equal(t, "red", c.Color)
				assert.Empty(t, c.Username)
			},
		},
		{
			name:  "chat content is trimmed",
			input: `{"type":"chat","roomId":"r1","content":"  hi  "}`,
			check: func(t *testing.T, msg Inbound) {
				assert.Equal(t, &Chat{RoomID: "r1", Content: "hi"}, msg)
			},
		},
		{
			name:  "chat falls back to message field",
			input: `{"type":"chat","roomId":"r1","message":"legacy"}`,
			check: func(t *testing.T, msg Inbound) {
				assert.Equal(t, "legacy", msg.(*Chat).Content)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, "r1", msg.Room())
			tt.check(t, msg)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `nope`},
		{name: "no type", input: `{"roomId":"r1"}`},
		{name: "missing room id", input: `{"type":"join_room"}`},
		{name: "no elements", input: `{"type":"drawing","roomId":"r1"}`},
		{name: "element without id", input: `{"type":"drawing","roomId":"r1","elements":[{"version":1}]}`},
		{name: "cursor without pointer", input: `{"type":"cursor","roomId":"r1"}`},
		{name: "empty chat", input: `{"type":"chat","roomId":"r1","content":""}`},
		{name: "wrong field type", input: `{"type":"join_room","roomId":42}`},
		{name: "invalid utf-8 in element", input: "{\"type\":\"drawing\",\"roomId\":\"r1\",\"elements\":[{\"id\":\"e1\",\"version\":1,\"text\":\"\xff\xfe\"}]}"},
		{name: "invalid utf-8 in chat", input: "{\"type\":\"chat\",\"roomId\":\"r1\",\"content\":\"hi \xc3\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.input))
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"explode","roomId":"r1"}`))

	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
	assert.ErrorIs(t, err, apperrors.ErrUnknownMessageType)
	assert.Contains(t, err.Error(), "explode")
}

func TestElement_PreservesPayload(t *testing.T) {
	input := `{"id":"e1","version":3,"type":"rectangle","points":[[0,0],[1,2]],"customData":{"k":"v"}}`

	var e Element
	require.NoError(t, json.Unmarshal([]byte(input), &e))

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))

	event, err := json.Marshal(DrawingEvent{Type: MessageTypeDrawing, RoomID: "r1", Elements: []Element{e}, UserID: "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"drawing","roomId":"r1","userId":"u1","elements":[`+input+`]}`, string(event))
}

func TestElement_MarshalWithoutPayload(t *testing.T) {
	out, err := json.Marshal(Element{ID: "e1", Version: 2, IsDeleted: true})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"e1","version":2,"isDeleted":true}`, string(out))
}
