// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"
	"strings"

	"collection-points/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier mails a confirmation to the entity once its point is created.
// Other notices and notices without a recipient are skipped.
type SESNotifier struct {
	client    SESService
	fromEmail string
}

func NewSESNotifier(cfg awssdk.Config, fromEmail string) *SESNotifier {
	return NewSESNotifierWith(ses.NewFromConfig(cfg), fromEmail)
}

func NewSESNotifierWith(client SESService, fromEmail string) *SESNotifier {
	return &SESNotifier{client: client, fromEmail: fromEmail}
}

func (n *SESNotifier) Notify(ctx context.Context, notice models.Notice) error {
	if !notice.Success() || notice.Point == nil || strings.TrimSpace(notice.Recipient) == "" {
		return nil
	}

	subject := fmt.Sprintf("Ponto de coleta %s cadastrado", notice.Point.Name)
	body := confirmationBody(notice.Point)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{notice.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(body)},
			},
		},
		Source: awssdk.String(n.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}

func confirmationBody(p *models.Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "%s - %s\n", p.City, p.UF)
	fmt.Fprintf(&b, "Lat %g, Lon %g\n", p.Latitude, p.Longitude)
	if len(p.Items) > 0 {
		ids := make([]string, len(p.Items))
		for i, id := range p.Items {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(&b, "Itens: %s\n", strings.Join(ids, ","))
	}
	return b.String()
}
