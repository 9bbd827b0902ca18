package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    ev := BookingPaidEvent{
        BookingID:  7,
        ClientID:   3,
        TalentID:   2,
        TalentName: "Aiko",
        Amount:     50000,
        Status:     "paid",
        PaidAt:     "2026-01-01T00:00:00Z",
    }
    body, err := json.Marshal(ev)
    require.NoError(t, err)

    require.NoError(t, handleMessage(dir, body))
    require.NoError(t, handleMessage(dir, body))

    raw, err := os.ReadFile(filepath.Join(dir, "booking.log"))
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
    require.Len(t, lines, 2)
    assert.Equal(t, `[2026-01-01T00:00:00Z] Booking paid | booking_id=7 | client_id=3 | talent_id=2 | talent="Aiko" | amount=50000 yen | status=paid`, lines[0])
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
    dir := t.TempDir()
    assert.Error(t, handleMessage(dir, []byte("{not json")))
    assert.Error(t, handleMessage(dir, []byte(`{"client_id":1}`)))

    _, err := os.Stat(filepath.Join(dir, "booking.log"))
    assert.True(t, os.IsNotExist(err))
}
