package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/configs"
	"github.com/indra474/flower-project/internal/shop"
)

// SESAPI is the part of the SES client the notifier uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type EmailNotifier struct {
	client SESAPI
	sender string
	log    *zap.Logger
}

func NewEmailNotifier(ctx context.Context, cfg config.EmailConfig, log *zap.Logger) (*EmailNotifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return NewEmailNotifierWithClient(ses.NewFromConfig(awsCfg), cfg.SenderEmail, log), nil
}

func NewEmailNotifierWithClient(client SESAPI, sender string, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{client: client, sender: sender, log: log}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Send(ctx context.Context, receipt shop.Receipt) error {
	if n.sender == "" {
		return fmt.Errorf("sender email address is not configured")
	}

	recipient := receipt.Buyer.Email
	if recipient == "" {
		// Email is optional on the payment form.
		return nil
	}

	subject := fmt.Sprintf("Order %s Confirmation - Thank You for Your Purchase!", orderRef(receipt))
	total := receipt.Total.StringFixed(2)

	var rowsHTML, rowsText strings.Builder
	for _, o := range receipt.Orders {
		fmt.Fprintf(&rowsHTML, "<li>#%d %s x %d = Rs %s</li>",
			o.ID, html.EscapeString(o.Flower.Name), o.Quantity, o.Total().StringFixed(2))
		fmt.Fprintf(&rowsText, "#%d %s x %d = Rs %s\n",
			o.ID, o.Flower.Name, o.Quantity, o.Total().StringFixed(2))
	}

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Thank you for your order! It has been successfully placed.</p>
            <p><strong>Order Details:</strong></p>
            <ul>%s</ul>
            <p>Total Amount: Rs %s</p>
            <p>Payment method: %s</p>
            <p>Best regards,</p>
            <p>The Flower Shop</p>
        </body>
        </html>`,
		html.EscapeString(receipt.Buyer.Name), rowsHTML.String(), total, html.EscapeString(receipt.Buyer.PaymentMethod))

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! It has been successfully placed.\n\n"+
			"Order Details:\n%s\nTotal Amount: Rs %s\nPayment method: %s\n\nBest regards,\nThe Flower Shop",
		receipt.Buyer.Name, rowsText.String(), total, receipt.Buyer.PaymentMethod)

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.log.Info("order confirmation email sent",
		zap.Uints("order_ids", receipt.OrderIDs()),
		zap.String("to", recipient),
	)
	return nil
}
