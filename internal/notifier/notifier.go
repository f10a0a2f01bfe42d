package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/shop"
)

// Channel delivers an order confirmation over one medium.
type Channel interface {
	Name() string
	Send(ctx context.Context, receipt shop.Receipt) error
}

// DefaultSendTimeout bounds one channel send when NewDispatcher gets no timeout.
const DefaultSendTimeout = 15 * time.Second

// Dispatcher fans a placed order out to every channel in the background so
// the payment request does not wait on SES or the SMS gateway.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Dispatcher{channels: channels, timeout: timeout, log: log}
}

func (d *Dispatcher) OrderPlaced(ctx context.Context, receipt shop.Receipt) error {
	detached := context.WithoutCancel(ctx)

	for _, ch := range d.channels {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(detached, d.timeout)
			defer cancel()

			if err := ch.Send(ctx, receipt); err != nil {
				d.log.Error("order notification failed",
					zap.String("channel", ch.Name()),
					zap.Uints("order_ids", receipt.OrderIDs()),
					zap.Error(err),
				)
			}
		}(ch)
	}
	return nil
}

// Wait blocks until every notification started so far has finished or hit
// the send timeout.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func orderRef(receipt shop.Receipt) string {
	ids := receipt.OrderIDs()
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(refs, ", ")
}
