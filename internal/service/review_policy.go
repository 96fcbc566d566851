package service

import (
	"errors"

	"github.com/sitaurs/apm-portal-sub000/internal/model"
)

// ErrSubmissionAlreadyReviewed pending_only 策略下重复审核
var ErrSubmissionAlreadyReviewed = errors.New("该提交已审核，不能再次审核")

// ReviewPolicy 已审核提交能否再次审核
type ReviewPolicy string

const (
	// ReviewPolicyOverwrite 再次审核直接覆盖上次结论
	ReviewPolicyOverwrite ReviewPolicy = "overwrite"
	// ReviewPolicyPendingOnly 只有 pending 状态可以审核
	ReviewPolicyPendingOnly ReviewPolicy = "pending_only"
)

// ParseReviewPolicy 未知取值按 overwrite 处理
func ParseReviewPolicy(s string) ReviewPolicy {
	if ReviewPolicy(s) == ReviewPolicyPendingOnly {
		return ReviewPolicyPendingOnly
	}
	return ReviewPolicyOverwrite
}

// Check 判断当前状态是否允许审核
func (p ReviewPolicy) Check(currentStatus string) error {
	if p == ReviewPolicyPendingOnly && currentStatus != model.StatusPending {
		return ErrSubmissionAlreadyReviewed
	}
	return nil
}
