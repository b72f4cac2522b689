package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/clouddrive/pkg/rule"
)

// TestStruct 用于测试 ValidateStruct.
type TestStruct struct {
	Name string `rule:"required"`
	Age  int    `rule:"gte=18"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	// 有效结构体
	validStruct := TestStruct{Name: "John", Age: 25}

	err := rule.ValidateStruct(validStruct)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 无效结构体：缺少 Name
	invalidStruct1 := TestStruct{Name: "", Age: 25}

	err = rule.ValidateStruct(invalidStruct1)
	if err == nil {
		t.Error("Expected error for invalid struct (missing name), got nil")
	}

	// 无效结构体：Age 小于 18
	invalidStruct2 := TestStruct{Name: "Jane", Age: 16}

	err = rule.ValidateStruct(invalidStruct2)
	if err == nil {
		t.Error("Expected error for invalid struct (age < 18), got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 email
	err := rule.ValidateVar("test@example.com", "required,email")
	if err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	// 无效 email
	err = rule.ValidateVar("invalid-email", "required,email")
	if err == nil {
		t.Error("Expected error for invalid email, got nil")
	}

	// 有效数字
	err = rule.ValidateVar(25, "gte=18")
	if err != nil {
		t.Errorf("Expected no error for valid number, got %v", err)
	}

	// 无效数字
	err = rule.ValidateVar(15, "gte=18")
	if err == nil {
		t.Error("Expected error for invalid number, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：检查字符串长度是否为偶数
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str)%2 == 0
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	// 测试有效字符串
	err = rule.ValidateVar("test", "even_length")
	if err != nil {
		t.Errorf("Expected no error for even length string, got %v", err)
	}

	// 测试无效字符串
	err = rule.ValidateVar("test1", "even_length")
	if err == nil {
		t.Error("Expected error for odd length string, got nil")
	}
}

// TestMIMEPrefix 测试内置的 mimeprefix 规则.
func TestMIMEPrefix(t *testing.T) {
	valid := []string{"image/", "application/", "text/"}
	for _, v := range valid {
		if err := rule.ValidateVar(v, "mimeprefix"); err != nil {
			t.Errorf("%q should be a valid prefix: %v", v, err)
		}
	}

	invalid := []string{"", "image", "image/png", "/", "*/", "te xt/"}
	for _, v := range invalid {
		if err := rule.ValidateVar(v, "mimeprefix"); err == nil {
			t.Errorf("%q should be rejected", v)
		}
	}
}

// TestFileName 测试内置的 filename 规则.
func TestFileName(t *testing.T) {
	if err := rule.ValidateVar("report 2024.pdf", "filename"); err != nil {
		t.Errorf("expected valid name, got %v", err)
	}

	for _, v := range []string{"", "   ", "..", "a/b.txt", "a\\b.txt", "bad\x00name", "bad\xffutf8.txt"} {
		if err := rule.ValidateVar(v, "filename"); err == nil {
			t.Errorf("%q should be rejected", v)
		}
	}
}

// TestErrors 测试校验错误展开为字典.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(TestStruct{Name: "", Age: 3})

	errs := rule.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %v", errs)
	}

	if errs["TestStruct.Age"] != "gte=18" {
		t.Errorf("Age error = %q", errs["TestStruct.Age"])
	}

	if rule.Errors(nil) != nil {
		t.Error("Errors(nil) should be nil")
	}
}
