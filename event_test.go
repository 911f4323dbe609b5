package dux

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr error
	}{
		{
			name:  "typed event",
			event: Event{Type: "increment"},
		},
		{
			name:  "typed event with payload",
			event: Event{Type: "incrementByAmount", Payload: 5},
		},
		{
			name:    "missing type",
			event:   Event{},
			wantErr: ErrMissingType,
		},
		{
			name:    "payload only",
			event:   Event{Payload: "data"},
			wantErr: ErrMissingType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEventJSON(t *testing.T) {
	t.Run("payload omitted when nil", func(t *testing.T) {
		data, err := json.Marshal(Event{Type: "noop"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"noop"}`, string(data))
	})

	t.Run("wire shape", func(t *testing.T) {
		data, err := json.Marshal(Event{Type: "incrementByAmount", Payload: 5})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"incrementByAmount","payload":5}`, string(data))
	})

	t.Run("marshal rejects malformed event", func(t *testing.T) {
		_, err := json.Marshal(Event{Payload: 1})
		assert.ErrorIs(t, err, ErrMissingType)
	})

	t.Run("unmarshal", func(t *testing.T) {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(`{"type":"add","payload":"milk"}`), &e))
		assert.Equal(t, "add", e.Type)
		assert.Equal(t, "milk", e.Payload)
	})

	t.Run("unmarshal rejects missing discriminant", func(t *testing.T) {
		var e Event
		err := json.Unmarshal([]byte(`{"payload":"milk"}`), &e)
		assert.ErrorIs(t, err, ErrMissingType)
	})
}

func TestNewEvent(t *testing.T) {
	e := NewEvent("reset")
	assert.Equal(t, "reset", e.Type)
	assert.Nil(t, e.Payload)
}

func TestCreator(t *testing.T) {
	incrementBy := Creator("incrementByAmount")

	e := incrementBy(5)
	assert.Equal(t, Event{Type: "incrementByAmount", Payload: 5}, e)

	store := New(counterReducer)
	require.NoError(t, store.Dispatch(incrementBy(2)))
	require.NoError(t, store.Dispatch(incrementBy(3)))
	assert.Equal(t, 5, store.GetState().Value)
}

func TestSentinelTypesNamespaced(t *testing.T) {
	// Application discriminants are plain names; the store's own sentinels
	// must not collide with them.
	assert.Equal(t, "@@dux/INIT", InitType)
	assert.Equal(t, "@@dux/REPLACE", ReplaceType)
	assert.True(t, Event{Type: InitType}.internal())
	assert.True(t, Event{Type: ReplaceType}.internal())
	assert.False(t, Event{Type: "increment"}.internal())
}
