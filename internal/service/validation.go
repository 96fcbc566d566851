package service

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrValidation 参数校验失败（errors.Is 可匹配任意 *ValidationError）
var ErrValidation = errors.New("参数校验失败")

// ValidationError 参数校验失败，Fields 为出错字段的 JSON 名称
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ")
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// newValidator 创建以 JSON 标签命名字段的校验器
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct 运行标签校验，并把错误转换为 *ValidationError
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if !seen[path] {
			seen[path] = true
			fields = append(fields, path)
		}
	}
	return newValidationError(fields...)
}

// fieldPath 去掉根类型名与嵌入结构体名，只保留 JSON 路径
// SubmitRequest.AchievementFields.judul → judul
// SubmitRequest.documents[0].tipe → documents[0].tipe
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		if unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

// mergeValidation 合并多处校验结果
func mergeValidation(errs ...error) error {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		for _, f := range ve.Fields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return newValidationError(fields...)
}

// ── 字段级辅助 ──

const dateLayout = "2006-01-02"

// checkTahun 年份须为四位数且不晚于明年；0 表示未填写
func checkTahun(tahun int, now time.Time) error {
	if tahun == 0 {
		return nil
	}
	if tahun < 2000 || tahun > now.Year()+1 {
		return newValidationError("tahun")
	}
	return nil
}

// parseDate 解析 YYYY-MM-DD，空值返回 nil
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, newValidationError(field)
	}
	return &t, nil
}

// trimPtr 去除首尾空白，空串返回 nil
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
