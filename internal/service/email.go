package service

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer 是验证码下发的协作方。
// 发送失败必须返回错误，调用方负责回滚已生成的验证码。
type Mailer interface {
	Send(to, code string) error
}

// SMTPMailer 通过 SMTP 发送验证码邮件
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer 构造 SMTPMailer
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Send 发送一封携带验证码的纯文本邮件
func (m *SMTPMailer) Send(to, code string) error {
	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password reset code\r\n\r\nYour verification code is %s. It expires in 2 minutes.\r\n",
		m.from, to, code,
	))

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogMailer 把验证码打到日志，供本地开发在未配置 SMTP 时使用
type LogMailer struct{}

// Send 记录验证码
func (LogMailer) Send(to, code string) error {
	log.Printf("mail to %s: verification code %s", to, code)
	return nil
}
