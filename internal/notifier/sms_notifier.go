package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/indra474/flower-project/configs"
	"github.com/indra474/flower-project/internal/shop"
)

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SMSNotifier sends order confirmations through the Africa's Talking messaging API.
type SMSNotifier struct {
	cfg    config.AfricaTalkingConfig
	client *http.Client
	log    *zap.Logger
}

func NewSMSNotifier(cfg config.AfricaTalkingConfig, client *http.Client, log *zap.Logger) *SMSNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &SMSNotifier{cfg: cfg, client: client, log: log}
}

func (n *SMSNotifier) Name() string { return "sms" }

func (n *SMSNotifier) Send(ctx context.Context, receipt shop.Receipt) error {
	to := receipt.Buyer.Phone
	if to == "" {
		return fmt.Errorf("recipient phone number is empty")
	}

	message := fmt.Sprintf("Your order %s has been successfully placed! Total: Rs %s. Thank you for shopping with us!",
		orderRef(receipt), receipt.Total.StringFixed(2))

	data := url.Values{}
	data.Set("username", n.cfg.Username)
	data.Set("to", to)
	data.Set("message", message)
	data.Set("from", n.cfg.SenderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp); decodeErr == nil {
			return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, smsResp.SMSMessageData.Message)
		}
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&smsResp); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}

	n.log.Info("order confirmation sms sent",
		zap.Uints("order_ids", receipt.OrderIDs()),
		zap.String("to", to),
		zap.String("message", smsResp.SMSMessageData.Message),
	)
	return nil
}
