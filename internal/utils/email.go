package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"
)

// SendWelcomeEmail prévient un nouvel utilisateur que son compte a été créé
// par un administrateur. L'échec d'envoi est non bloquant pour la création.
func SendWelcomeEmail(to string, isAdmin bool) error {
	msg := mail.NewMsg()

	if err := msg.From("noreply@effectif.app"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject("Votre accès Effectif a été créé")
	msg.SetBodyString(mail.TypeTextHTML, welcomeHTML(to, isAdmin))

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail de bienvenue à", to)
	return client.DialAndSend(msg)
}

func welcomeHTML(email string, isAdmin bool) string {
	role := "Utilisateur"
	if isAdmin {
		role = "Administrateur"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Bienvenue sur Effectif</h2>
	<p>Un compte vient d'être créé pour <strong>%s</strong>.</p>
	<p>Rôle attribué : <strong>%s</strong></p>
	<p>Connectez-vous avec le mot de passe communiqué par votre administrateur,
	puis modifiez-le dès la première connexion.</p>
	<p style="color:#888;font-size:12px">Cet e-mail a été envoyé automatiquement, merci de ne pas y répondre.</p>
</body>
</html>`, email, role)
}
