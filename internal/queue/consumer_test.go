package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/logging"
)

func TestFormatAuditLineOmitsResetToken(t *testing.T) {
	ev := PasswordResetRequestedEvent{
		Meta:      Meta{EventID: "e1", OccurredAt: "2025-05-29T12:00:00Z"},
		UserID:    3,
		Email:     "ann@example.com",
		Token:     "supersecrettoken",
		ExpiresAt: "2025-05-29T13:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	line, err := FormatAuditLine(PasswordResetRequested, body)
	require.NoError(t, err)
	assert.Equal(t, "[2025-05-29T12:00:00Z] Password reset requested | event_id=e1 | user_id=3 | expires_at=2025-05-29T13:00:00Z\n", line)
	assert.NotContains(t, line, "supersecrettoken")
}

func TestFormatAuditLineProductPurged(t *testing.T) {
	body, err := json.Marshal(ProductPurgedEvent{
		Meta:      Meta{EventID: "e2", OccurredAt: "2025-05-29T12:00:00Z"},
		ProductID: 10, SellerID: 2, ActorID: 1, ActorRole: "admin",
	})
	require.NoError(t, err)

	line, err := FormatAuditLine(ProductPurged, body)
	require.NoError(t, err)
	assert.Contains(t, line, "product_id=10 | seller_id=2 | actor_id=1 | actor_role=admin")
}

func TestFormatAuditLineRejects(t *testing.T) {
	_, err := FormatAuditLine("order.shipped", []byte(`{}`))
	assert.Error(t, err)

	_, err = FormatAuditLine(PaymentCreated, []byte(`not json`))
	assert.Error(t, err)
}

func TestAuditConsumerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	a := &AuditConsumer{LogPath: path, Logger: logging.Discard()}

	for i := 0; i < 2; i++ {
		body, err := json.Marshal(PasswordResetEvent{Meta: NewMeta(time.Now()), UserID: uint64(i + 1)})
		require.NoError(t, err)
		require.NoError(t, a.handle(PasswordReset, body))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user_id=1\n")
	assert.Contains(t, string(data), "user_id=2\n")
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Len(t, m.EventID, 36)
	assert.Equal(t, "2025-01-02T03:04:05Z", m.OccurredAt)
}
