package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	t.Run("one_hit_of_three", func(t *testing.T) {
		msg := Compose(Summary{
			SearchText: "SOLD OUT",
			Selector:   ".status",
			Hits:       []string{"https://a.test"},
			Misses:     []string{"https://b.test", "https://c.test [fetch error]"},
			Total:      3,
		})

		assert.Equal(t, "[ALERT] Found 'SOLD OUT' on 1/3 URL(s)", msg.Subject)
		expected := strings.Join([]string{
			"Search text: 'SOLD OUT'",
			"CSS selector: '.status'",
			"",
			"Found on:",
			"- https://a.test",
			"",
			"Not found on:",
			"- https://b.test",
			"- https://c.test [fetch error]",
			"",
			"Checked by web-monitor",
		}, "\n")
		assert.Equal(t, expected, msg.Body)
	})

	t.Run("no_misses_and_no_selector", func(t *testing.T) {
		msg := Compose(Summary{
			SearchText: "back in stock",
			Hits:       []string{"https://a.test", "https://b.test"},
			Total:      2,
		})

		assert.Equal(t, "[ALERT] Found 'back in stock' on 2/2 URL(s)", msg.Subject)
		assert.Contains(t, msg.Body, "CSS selector: 'N/A'")
		assert.Contains(t, msg.Body, "Not found on:\n- (none)\n")
	})
}

func TestMessage_Bytes(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	t.Run("headers_and_body", func(t *testing.T) {
		msg := Message{
			From:    "bot@example.com",
			To:      "ops@example.com",
			Subject: "[ALERT] Found 'SOLD OUT' on 1/1 URL(s)",
			Body:    "Found on:\n- https://a.test",
		}
		raw, err := msg.Bytes(now)
		require.NoError(t, err)

		s := string(raw)
		assert.Contains(t, s, "From: bot@example.com\r\n")
		assert.Contains(t, s, "To: ops@example.com\r\n")
		assert.Contains(t, s, "Subject: [ALERT] Found 'SOLD OUT' on 1/1 URL(s)\r\n")
		assert.Contains(t, s, "Date: Mon, 19 Oct 2026 09:00:00 +0000\r\n")
		assert.Contains(t, s, "Content-Type: text/plain; charset=UTF-8\r\n")
		assert.Contains(t, s, "\r\n\r\nFound on:\r\n- https://a.test")
	})

	t.Run("header_injection_is_stripped", func(t *testing.T) {
		msg := Message{To: "ops@example.com\r\nBcc: evil@example.com", Subject: "x"}
		raw, err := msg.Bytes(now)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "\r\nBcc:")
	})

	t.Run("non_ascii_subject_is_encoded", func(t *testing.T) {
		msg := Message{Subject: "[ALERT] Found '在庫切れ' on 1/1 URL(s)"}
		raw, err := msg.Bytes(now)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Subject: =?utf-8?q?")
	})
}
