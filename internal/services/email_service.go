package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/realty/internal/metrics"
	"github.com/BradenHooton/realty/internal/models"
)

// Email templates, used as the metrics label
const (
	EmailTemplateListingStatus   = "listing_status"
	EmailTemplateFeaturedExpired = "featured_expired"
)

// EmailService defines the interface for agent notifications
type EmailService interface {
	SendListingStatusEmail(ctx context.Context, agent *models.User, listing *models.Listing, from, to string) error
	SendFeaturedExpiredEmail(ctx context.Context, agent *models.User, listing *models.Listing) error
}

type emailMessage struct {
	template string
	to       string
	subject  string
	text     string
	html     string
}

func listingStatusMessage(agent *models.User, listing *models.Listing, from, to string) emailMessage {
	text := fmt.Sprintf(`Hello %s,

The status of your listing "%s" changed from %s to %s.

This is an automated message. Please do not reply to this email.
`, agent.Name, listing.Title, from, to)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
    <p>Hello %s,</p>
    <p>The status of your listing <strong>%s</strong> changed from <code>%s</code> to <code>%s</code>.</p>
    <p style="color:#666;font-size:12px">This is an automated message. Please do not reply to this email.</p>
</body>
</html>
`, html.EscapeString(agent.Name), html.EscapeString(listing.Title), html.EscapeString(from), html.EscapeString(to))

	return emailMessage{
		template: EmailTemplateListingStatus,
		to:       agent.Email,
		subject:  fmt.Sprintf("Your listing is now %s", to),
		text:     text,
		html:     body,
	}
}

func featuredExpiredMessage(agent *models.User, listing *models.Listing) emailMessage {
	text := fmt.Sprintf(`Hello %s,

The featured period for your listing "%s" has ended. The listing remains published.
You can feature it again from your dashboard if your plan has featured slots available.
`, agent.Name, listing.Title)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
    <p>Hello %s,</p>
    <p>The featured period for your listing <strong>%s</strong> has ended. The listing remains published.</p>
    <p>You can feature it again from your dashboard if your plan has featured slots available.</p>
</body>
</html>
`, html.EscapeString(agent.Name), html.EscapeString(listing.Title))

	return emailMessage{
		template: EmailTemplateFeaturedExpired,
		to:       agent.Email,
		subject:  "Your featured listing has expired",
		text:     text,
		html:     body,
	}
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(ctx context.Context, region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

func (s *AWSSESEmailService) SendListingStatusEmail(ctx context.Context, agent *models.User, listing *models.Listing, from, to string) error {
	return s.send(ctx, listingStatusMessage(agent, listing, from, to))
}

func (s *AWSSESEmailService) SendFeaturedExpiredEmail(ctx context.Context, agent *models.User, listing *models.Listing) error {
	return s.send(ctx, featuredExpiredMessage(agent, listing))
}

func (s *AWSSESEmailService) send(ctx context.Context, msg emailMessage) (err error) {
	defer func() { metrics.EmailSent(msg.template, err) }()

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(msg.subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(msg.html),
				},
				Text: &types.Content{
					Data: aws.String(msg.text),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("template", msg.template),
			slog.String("email", msg.to),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("template", msg.template),
		slog.String("email", msg.to),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// LogEmailService writes emails to the log instead of sending them. Used in
// development and whenever EMAIL_PROVIDER=log.
type LogEmailService struct {
	logger *slog.Logger
}

func NewLogEmailService(logger *slog.Logger) *LogEmailService {
	return &LogEmailService{logger: logger}
}

func (s *LogEmailService) SendListingStatusEmail(ctx context.Context, agent *models.User, listing *models.Listing, from, to string) error {
	s.log(ctx, listingStatusMessage(agent, listing, from, to))
	return nil
}

func (s *LogEmailService) SendFeaturedExpiredEmail(ctx context.Context, agent *models.User, listing *models.Listing) error {
	s.log(ctx, featuredExpiredMessage(agent, listing))
	return nil
}

func (s *LogEmailService) log(ctx context.Context, msg emailMessage) {
	s.logger.InfoContext(ctx, "email (not sent)",
		slog.String("template", msg.template),
		slog.String("email", msg.to),
		slog.String("subject", msg.subject),
	)
	metrics.EmailSent(msg.template, nil)
}
