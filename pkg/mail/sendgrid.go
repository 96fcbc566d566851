package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sitaurs/apm-portal-sub000/config"
)

const (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Message 待发送邮件
type Message struct {
	ToName      string
	ToEmail     string
	Subject     string
	TextContent string
	HTMLContent string
}

// SendGridMailer SendGrid 邮件发送器
type SendGridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGridMailer 创建 SendGrid 发送器
func NewSendGridMailer(cfg *config.MailConfig) *SendGridMailer {
	return &SendGridMailer{
		key:        cfg.SendGridAPIKey,
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		subjPrefix: "[" + cfg.FromName + "] ",
	}
}

// Build 组装 SendGrid v3 邮件体
func (m *SendGridMailer) Build(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return v3
}

// Send 同步发送一封邮件
func (m *SendGridMailer) Send(ctx context.Context, msg *Message) error {
	req := sendgrid.GetRequest(m.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.Build(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("SendGrid 请求失败: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("SendGrid 返回异常状态码 %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
