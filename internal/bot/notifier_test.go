package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/models"
)

type sent struct {
	Path string
	Body map[string]any
}

func fakeTelegram(t *testing.T, status int) (*httptest.Server, func() []sent) {
	var mu sync.Mutex
	var calls []sent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, sent{Path: r.URL.Path, Body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []sent {
		mu.Lock()
		defer mu.Unlock()
		return append([]sent(nil), calls...)
	}
}

func TestNotifier_Message(t *testing.T) {
	srv, calls := fakeTelegram(t, http.StatusOK)
	n := NewNotifier(NewClient("TOKEN", srv.URL), 42, "", zap.NewNop())

	n.Transition(models.Registration{Code: "REG-0A1B2C3D", FullName: "Sara <S>", FinalAmount: 950, TotalDiscountRate: 5}, "draft", "cancelled")

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, "/botTOKEN/sendMessage", got[0].Path)
	assert.EqualValues(t, 42, got[0].Body["chat_id"])
	assert.Equal(t, "<b>REG-0A1B2C3D</b> Sara &lt;S&gt;\ndraft → cancelled\nAmount due: 950.00 (5% off)", got[0].Body["text"])
}

func TestNotifier_ConfirmationSendsQR(t *testing.T) {
	srv, calls := fakeTelegram(t, http.StatusOK)
	n := NewNotifier(NewClient("TOKEN", srv.URL), 42, "https://clubs.example.org/", zap.NewNop())

	n.Transition(models.Registration{Code: "REG-0A1B2C3D", FullName: "Sara"}, "draft", "confirmed")

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, "/botTOKEN/sendPhoto", got[0].Path)
	assert.Equal(t, "https://clubs.example.org/qr/REG-0A1B2C3D.png", got[0].Body["photo"])
}

func TestClient_ErrorStatus(t *testing.T) {
	srv, _ := fakeTelegram(t, http.StatusForbidden)
	err := NewClient("TOKEN", srv.URL).SendMessage(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
