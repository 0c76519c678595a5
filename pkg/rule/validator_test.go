package rule_test

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/uploadvault/pkg/rule"
)

type sample struct {
	Name string `json:"name" rule:"required"`
	Ext  string `json:"ext"  rule:"omitempty,max=32,upload_ext"`
	Size int64  `json:"size" rule:"gte=0"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Error("Engine() returned nil")
	}
}

// TestUploadExt 测试扩展名规则.
func TestUploadExt(t *testing.T) {
	const tag = "omitempty,max=32,upload_ext"

	valid := []string{"", "png", "JPG", "tar_gz", "mp4", strings.Repeat("a", 32)}
	for _, ext := range valid {
		if err := rule.ValidateVar(ext, tag); err != nil {
			t.Errorf("ext %q should be valid, got %v", ext, err)
		}
	}

	invalid := []string{".png", "tar.gz", "a/b", "é", "a b", strings.Repeat("a", 33)}
	for _, ext := range invalid {
		if err := rule.ValidateVar(ext, tag); err == nil {
			t.Errorf("ext %q should be invalid", ext)
		}
	}
}

// TestValidateStruct_Errors 测试错误信息以 json 字段名为键.
func TestValidateStruct_Errors(t *testing.T) {
	if err := rule.ValidateStruct(sample{Name: "a", Ext: "png"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := rule.ValidateStruct(sample{Ext: "x.y", Size: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}

	errs := rule.Errors(err)
	if len(errs) != 3 {
		t.Fatalf("Errors() = %v, want 3 entries", errs)
	}

	if errs["sample.name"] != "required" {
		t.Errorf("name error = %q", errs["sample.name"])
	}

	if errs["sample.ext"] != "upload_ext" {
		t.Errorf("ext error = %q", errs["sample.ext"])
	}

	if errs["sample.size"] != "gte=0" {
		t.Errorf("size error = %q", errs["sample.size"])
	}

	if rule.Errors(nil) != nil {
		t.Error("Errors(nil) should be nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("lowercase_only", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == strings.ToLower(s)
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	if err := rule.ValidateVar("png", "lowercase_only"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if err := rule.ValidateVar("PNG", "lowercase_only"); err == nil {
		t.Error("Expected error for upper case string, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("short_ext", "required,max=4,upload_ext")

	if err := rule.ValidateVar("jpeg", "short_ext"); err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	if err := rule.ValidateVar("jpeg2", "short_ext"); err == nil {
		t.Error("Expected error for too long extension, got nil")
	}
}
