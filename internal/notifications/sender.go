package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/craftroots/storefront-backend/internal/orders"
	"github.com/craftroots/storefront-backend/pkg/config"
	"github.com/craftroots/storefront-backend/pkg/logger"
)

// Discard drops confirmations. Wired when SMTP is not configured.
type Discard struct{}

func (Discard) OrderCreated(context.Context, orders.View) {}

// Dialer is the slice of gomail the sender needs. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender emails order confirmations off the request path. Delivery failures
// are retried and then logged; they never surface to the checkout caller.
type Sender struct {
	dialer Dialer
	from   string
	cfg    config.NotificationsConfig
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewSender wires a sender against a real SMTP host.
func NewSender(smtp config.SMTPConfig, cfg config.NotificationsConfig, log *logger.Logger) (*Sender, error) {
	if smtp.Host == "" {
		return nil, fmt.Errorf("smtp host required")
	}
	dialer := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	return NewSenderWithDialer(dialer, smtp.From, cfg, log)
}

// NewSenderWithDialer accepts any Dialer, which is how tests get in.
func NewSenderWithDialer(dialer Dialer, from string, cfg config.NotificationsConfig, log *logger.Logger) (*Sender, error) {
	if dialer == nil {
		return nil, fmt.Errorf("dialer required")
	}
	if from == "" {
		return nil, fmt.Errorf("from address required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	return &Sender{dialer: dialer, from: from, cfg: cfg, log: log}, nil
}

// OrderCreated queues the confirmation email and returns immediately.
func (s *Sender) OrderCreated(ctx context.Context, order orders.View) {
	if strings.TrimSpace(order.CustomerEmail) == "" {
		s.log.Debug(ctx, "order has no customer email, skipping confirmation")
		return
	}

	// Detach from the request lifetime but keep the attached log fields.
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(ctx, order)
	}()
}

// Wait blocks until all queued confirmations have been attempted. Called on
// shutdown so in-flight emails are not dropped.
func (s *Sender) Wait() {
	s.wg.Wait()
}

func (s *Sender) deliver(ctx context.Context, order orders.View) {
	sendCtx := ctx
	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	ctx = s.log.WithOrderID(ctx, order.ID.String())
	msg := s.compose(order)
	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), retry.NewConstant(s.cfg.RetryBackoff))
	err := retry.Do(sendCtx, backoff, func(_ context.Context) error {
		if err := s.dialer.DialAndSend(msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "order confirmation delivery failed", err)
		return
	}
	s.log.Info(ctx, "order confirmation sent")
}

func (s *Sender) compose(order orders.View) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", order.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order %s confirmed", order.OrderNumber))
	msg.SetBody("text/plain", confirmationBody(order))
	return msg
}

func confirmationBody(order orders.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s\n", item.Quantity, item.ProductName, item.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", order.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Tax:      %s\n", order.Tax.StringFixed(2))
	fmt.Fprintf(&b, "Shipping: %s\n", order.Shipping.StringFixed(2))
	fmt.Fprintf(&b, "Total:    %s\n", order.Total.StringFixed(2))
	fmt.Fprintf(&b, "\nWe will let you know when it ships.\n")
	return b.String()
}
