package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roayati/clubs/internal/models"
)

// Notifier tells the staff chat about registration state changes.
type Notifier struct {
	client  *Client
	chatID  int64
	baseURL string
	log     *zap.Logger
}

func NewNotifier(c *Client, chatID int64, baseURL string, log *zap.Logger) *Notifier {
	return &Notifier{client: c, chatID: chatID, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// Transition sends one message per change. Confirmations carry the QR of
// the registration when a public base URL is known.
func (n *Notifier) Transition(reg models.Registration, from, to string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	text := transitionText(reg, from, to)
	var err error
	if to == models.StateConfirmed && n.baseURL != "" {
		err = n.client.SendPhoto(ctx, n.chatID, n.baseURL+"/qr/"+reg.Code+".png", text)
	} else {
		err = n.client.SendMessage(ctx, n.chatID, text)
	}
	if err != nil {
		n.log.Warn("staff notification failed", zap.String("code", reg.Code), zap.Error(err))
	}
}

func transitionText(reg models.Registration, from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> %s\n", html.EscapeString(reg.Code), html.EscapeString(reg.DisplayName()))
	fmt.Fprintf(&b, "%s → %s", from, to)
	if reg.FinalAmount > 0 {
		fmt.Fprintf(&b, "\nAmount due: %.2f", reg.FinalAmount)
		if reg.TotalDiscountRate > 0 {
			fmt.Fprintf(&b, " (%g%% off)", reg.TotalDiscountRate)
		}
	}
	return b.String()
}
