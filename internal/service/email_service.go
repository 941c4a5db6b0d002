package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. With no from-address
// configured the service is disabled and all sends become no-ops.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendPasswordResetEmail sends a password reset email. The link lands on the
// change-password page with the reset token attached.
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	resetLink := fmt.Sprintf("%s/change-password?token=%s", s.appBaseURL, resetToken)
	if s.debug {
		log.Printf("[DEBUG] Reset link generated: %s", resetLink)
	}

	subject := "Réinitialisation de votre mot de passe"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #1d4ed8; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #1d4ed8; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Réinitialisation du mot de passe</h1>
		</div>
		<div class="content">
			<p>Bonjour %s,</p>
			<p>Nous avons reçu une demande de réinitialisation du mot de passe de votre compte adhérent.</p>
			<p>Cliquez sur le bouton ci-dessous pour choisir un nouveau mot de passe :</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Réinitialiser le mot de passe</a>
			</p>
			<p>Ou copiez ce lien dans votre navigateur :</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p><strong>Ce lien expire dans 1 heure.</strong></p>
			<p>Si vous n'êtes pas à l'origine de cette demande, vous pouvez ignorer cet email.</p>
		</div>
		<div class="footer">
			<p>Email automatique du portail adhérents. Merci de ne pas répondre.</p>
		</div>
	</div>
</body>
</html>
`, toName, resetLink, resetLink)

	textBody := fmt.Sprintf(`Bonjour %s,

Nous avons reçu une demande de réinitialisation du mot de passe de votre compte adhérent.

Cliquez sur le lien ci-dessous pour choisir un nouveau mot de passe :
%s

Ce lien expire dans 1 heure.

Si vous n'êtes pas à l'origine de cette demande, vous pouvez ignorer cet email.

---
Email automatique du portail adhérents. Merci de ne pas répondre.
`, toName, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail notifies a newly registered member that an account was
// created for them and that they must change their password on first login.
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Bienvenue sur le portail adhérents"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #1d4ed8; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #1d4ed8; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Bienvenue !</h1>
		</div>
		<div class="content">
			<p>Bonjour %s,</p>
			<p>Votre compte adhérent a été créé. Depuis le portail vous pouvez :</p>
			<ul>
				<li>Consulter le catalogue des prestations</li>
				<li>Déclarer vos ayants droit</li>
				<li>Soumettre des demandes de prestation et suivre leur traitement</li>
			</ul>
			<p>Lors de votre première connexion, vous devrez changer votre mot de passe.</p>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Se connecter</a>
			</p>
		</div>
		<div class="footer">
			<p>Email automatique du portail adhérents. Merci de ne pas répondre.</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Bonjour %s,

Votre compte adhérent a été créé. Depuis le portail vous pouvez :
- Consulter le catalogue des prestations
- Déclarer vos ayants droit
- Soumettre des demandes de prestation et suivre leur traitement

Lors de votre première connexion, vous devrez changer votre mot de passe.

Connexion : %s/login

---
Email automatique du portail adhérents. Merci de ne pas répondre.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendRequestDecisionEmail notifies a member that an admin has decided one of
// their benefit requests.
func (s *EmailService) SendRequestDecisionEmail(ctx context.Context, toEmail, toName, serviceName, status, comments string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): decision to %s", toEmail)
		return nil
	}

	decision := "rejetée"
	if status == "approved" {
		decision = "approuvée"
	}

	subject := fmt.Sprintf("Votre demande « %s » a été %s", serviceName, decision)
	commentBlock := ""
	if comments != "" {
		commentBlock = fmt.Sprintf("\n\nCommentaire : %s", comments)
	}

	textBody := fmt.Sprintf(`Bonjour %s,

Votre demande de prestation « %s » a été %s.%s

Vous pouvez consulter le détail depuis votre historique sur le portail : %s/member/history

---
Email automatique du portail adhérents. Merci de ne pas répondre.
`, toName, serviceName, decision, commentBlock, s.appBaseURL)

	htmlBody := fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Votre demande de prestation « %s » a été <strong>%s</strong>.</p>
<p>%s</p>
<p><a href="%s/member/history">Consulter mon historique</a></p>
`, toName, serviceName, decision, commentBlock, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] SES SendEmail: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
