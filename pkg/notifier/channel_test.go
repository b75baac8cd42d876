package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogChannel_Send(t *testing.T) {
	t.Parallel()

	ch := LogChannel{}
	err := ch.Send(t.Context(), Notification{ErrorType: "e", ServiceName: "s", Message: "m", Count: 1})
	assert.NoError(t, err)
}

func TestSMTPChannel_RendersBodyTemplate(t *testing.T) {
	t.Parallel()

	c := NewSMTPChannel(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "alerts@example.com", To: []string{"admin@example.com"}})

	n := Notification{
		ErrorType:   "workflow_auth_failed",
		ServiceName: "airflow",
		Message:     "401 unauthorized",
		Count:       3,
		FirstSeen:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		LastSeen:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	var body strings.Builder
	require.NoError(t, c.body.Execute(&body, n))

	rendered := body.String()
	assert.Contains(t, rendered, "workflow_auth_failed")
	assert.Contains(t, rendered, "airflow")
	assert.Contains(t, rendered, "Occurrences: 3")
	assert.Contains(t, rendered, "401 unauthorized")
}
