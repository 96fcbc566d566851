package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
	"github.com/sitaurs/apm-portal-sub000/pkg/mail"
)

// ReviewNotifier 审核结果通知
type ReviewNotifier interface {
	// NotifyReviewed 尽力而为，不返回错误
	NotifyReviewed(s *model.Submission)
}

// NopReviewNotifier 未配置邮件时使用
type NopReviewNotifier struct{}

// NotifyReviewed 什么也不做
func (NopReviewNotifier) NotifyReviewed(*model.Submission) {}

// Mailer 邮件发送
type Mailer interface {
	Send(ctx context.Context, msg *mail.Message) error
}

type mailReviewNotifier struct {
	mailer  Mailer
	timeout time.Duration
	logger  *zap.Logger
}

// NewMailReviewNotifier 基于邮件的审核通知
func NewMailReviewNotifier(mailer Mailer, logger *zap.Logger) ReviewNotifier {
	return &mailReviewNotifier{mailer: mailer, timeout: 15 * time.Second, logger: logger}
}

func (n *mailReviewNotifier) NotifyReviewed(s *model.Submission) {
	if s.SubmitterEmail == nil || *s.SubmitterEmail == "" {
		return
	}
	msg := reviewMessage(s)

	// 请求返回后异步发送，不受请求 ctx 取消影响
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.logger.Warn("发送审核通知邮件失败",
				zap.Int64("submission_id", s.ID),
				zap.Error(err),
			)
		}
	}()
}

// reviewMessage 审核结果邮件内容（印尼语，面向学生）
func reviewMessage(s *model.Submission) *mail.Message {
	var subject, verdict string
	if s.Status == model.StatusApproved {
		subject = "Pengajuan prestasi disetujui"
		verdict = "telah DISETUJUI"
	} else {
		subject = "Pengajuan prestasi ditolak"
		verdict = "DITOLAK"
	}

	text := fmt.Sprintf("Halo %s,\n\nPengajuan prestasi \"%s\" (%s) %s oleh admin.",
		s.SubmitterNama, s.Judul, s.NamaLomba, verdict)
	if s.ReviewerNotes != nil && *s.ReviewerNotes != "" {
		text += "\n\nCatatan reviewer: " + *s.ReviewerNotes
	}
	text += "\n\nTerima kasih."

	return &mail.Message{
		ToName:      s.SubmitterNama,
		ToEmail:     *s.SubmitterEmail,
		Subject:     subject,
		TextContent: text,
	}
}
