package mail

import (
	"fmt"

	"github.com/spatium-offices/vms/config"
)

// Sender is the delivery contract the notification flows consume.
type Sender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

// Notifier composes the transactional messages the backend sends: the OTP
// verification code, the visitor-waiting alert to a host, and the
// identity-card download link.
type Notifier struct {
	cfg    *config.Config
	sender Sender
}

func NewNotifier(cfg *config.Config, sender Sender) *Notifier {
	return &Notifier{cfg: cfg, sender: sender}
}

func (n *Notifier) logoHTML() string {
	if n.cfg.Mail.EmailLogo == "" {
		return ""
	}
	return fmt.Sprintf(`<img src=%q alt=%q height="48"/>`, n.cfg.Mail.EmailLogo, n.cfg.App.Name)
}

func (n *Notifier) SendVerificationCode(to, code string) error {
	subject := fmt.Sprintf("Verification Code - %s", n.cfg.App.Name)
	body := fmt.Sprintf(`%s<p>Your verification code is <strong>%s</strong>.</p>
<p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>`,
		n.logoHTML(), code)

	return n.sender.SendHTML([]string{to}, subject, body)
}

func (n *Notifier) SendVisitorWaiting(to, visitorName, fromCompany string) error {
	subject := "Visitor Waiting for You in the Lobby"
	body := fmt.Sprintf(`%s<p><strong>%s</strong> from %s has arrived and is waiting for you in the lobby.</p>`,
		n.logoHTML(), visitorName, fromCompany)

	return n.sender.SendHTML([]string{to}, subject, body)
}

func (n *Notifier) SendIdentityCardLink(to, cardURL string) error {
	subject := "Download Identity Card"
	body := fmt.Sprintf(`%s<p>Your visitor identity card is ready.</p>
<p><a href=%q>Download your identity card</a></p>`, n.logoHTML(), cardURL)

	return n.sender.SendHTML([]string{to}, subject, body)
}
