package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEvent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		event, err := NewOutboxEvent("employee.registered", map[string]string{"email": "ana@opspilot.io"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, "employee.registered", event.EventType)
		assert.JSONEq(t, `{"email":"ana@opspilot.io"}`, event.Payload)
		assert.Equal(t, OutboxEventStatusPending, event.Status)
		assert.Zero(t, event.Retries)
		assert.Nil(t, event.ProcessedAt)
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("Error_UnencodablePayload", func(t *testing.T) {
		_, err := NewOutboxEvent("broken", map[string]any{"ch": make(chan int)})
		assert.ErrorContains(t, err, "failed to marshal event payload")
	})
}
