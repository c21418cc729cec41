package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator OICP消息验证器
type Validator struct {
	validate *validator.Validate
}

// ValidationError 验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error 实现error接口
func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors 验证错误集合
type ValidationErrors []ValidationError

// Error 实现error接口
func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// Fields 出错的字段名
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, err := range e {
		fields = append(fields, err.Field)
	}
	return fields
}

// Checkable 能自我校验的值类型（标识符、枚举）
type Checkable interface {
	IsValid() bool
}

var providerPathPattern = regexp.MustCompile(`^[A-Za-z]{2}[-*]?[A-Za-z0-9]{3}$`)

// NewValidator 创建新的验证器
func NewValidator() *Validator {
	validate := validator.New()

	// 注册自定义验证规则
	registerCustomValidations(validate)

	return &Validator{
		validate: validate,
	}
}

// ValidateStruct 验证结构体
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors ValidationErrors

	if validatorErrors, ok := err.(validator.ValidationErrors); ok {
		for _, validatorError := range validatorErrors {
			validationError := ValidationError{
				Field:   validatorError.Field(),
				Tag:     validatorError.Tag(),
				Value:   fmt.Sprintf("%v", validatorError.Value()),
				Message: getErrorMessage(validatorError),
			}
			validationErrors = append(validationErrors, validationError)
		}
		return validationErrors
	}

	return err
}

// registerCustomValidations 注册自定义验证规则
func registerCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("oicp_id", validateOICPValue)
}

// validateOICPValue 字段类型实现 Checkable 时要求其为规范形式；空值交给 required 处理
func validateOICPValue(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() || field.IsZero() {
		return true
	}
	if c, ok := field.Interface().(Checkable); ok {
		return c.IsValid()
	}
	if field.CanAddr() {
		if c, ok := field.Addr().Interface().(Checkable); ok {
			return c.IsValid()
		}
	}
	// 非 Checkable 类型不适用此规则
	return true
}

// getErrorMessage 获取友好的错误消息
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must not exceed %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", fe.Field())
	case "oicp_id":
		return fmt.Sprintf("Field '%s' is not a valid OICP value", fe.Field())
	default:
		return fmt.Sprintf("Field '%s' failed validation for tag '%s'", fe.Field(), fe.Tag())
	}
}

// ValidateMessageSize 验证SOAP报文大小
func (v *Validator) ValidateMessageSize(data []byte, maxSize int) error {
	if maxSize > 0 && len(data) > maxSize {
		return ValidationError{
			Field:   "message",
			Tag:     "max_size",
			Value:   fmt.Sprintf("%d bytes", len(data)),
			Message: fmt.Sprintf("Message size %d bytes exceeds maximum allowed size %d bytes", len(data), maxSize),
		}
	}
	return nil
}

// ValidateProviderID 验证路由中的服务商标识
func (v *Validator) ValidateProviderID(providerID string) error {
	if providerID == "" {
		return ValidationError{
			Field:   "providerId",
			Tag:     "required",
			Value:   "",
			Message: "Provider ID is required",
		}
	}

	if !providerPathPattern.MatchString(providerID) {
		return ValidationError{
			Field:   "providerId",
			Tag:     "format",
			Value:   providerID,
			Message: "Provider ID must look like DE-GDF or DE*GDF",
		}
	}

	return nil
}
