package smtp

import (
	"fmt"

	"github.com/flaco/hooked/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailServer struct {
	enabled      bool
	server       string
	port         int
	user         string
	pass         string
	admin        string
	serverConfig config.ServerConfig
}

func New(conf config.Config) *EmailServer {
	return &EmailServer{
		enabled:      conf.Email.Enabled,
		server:       conf.Email.Server,
		port:         conf.Email.Port,
		user:         conf.Email.User,
		pass:         conf.Email.Pass,
		admin:        conf.Email.Admin,
		serverConfig: conf.Server,
	}
}

func (s *EmailServer) GetMessageBase(subject, toEmail string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.user)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	return m
}

func (s *EmailServer) Send(m *gomail.Message) error {
	d := gomail.NewDialer(s.server, s.port, s.user, s.pass)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Error(
			"Failed to send an email",
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *EmailServer) SendWelcomeEmail(toEmail, name string) error {
	if !s.enabled {
		return nil
	}

	m := s.GetMessageBase("Welcome to Hooked", toEmail)
	m.SetBody(
		"text/html",
		fmt.Sprintf(
			"<h2>Tight lines, %s!</h2>"+
				"<p>Your account has been created. "+
				"Sign in and share your first catch with the community.</p>",
			name,
		),
	)
	return s.Send(m)
}
