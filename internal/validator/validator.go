package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 入力チェックで見つかった最初の問題
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(field string, message string) error {
	return &Error{Field: field, Message: message}
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// 必須＋最大文字数
func Required(field string, value string, max int) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail(field, field+" is required")
	}
	if max > 0 && utf8.RuneCountInString(v) > max {
		return fail(field, field+" is too long")
	}
	return nil
}

func MaxLength(field string, value string, max int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) > max {
		return fail(field, field+" is too long")
	}
	return nil
}

func Email(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return fail("email", "email is required")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return fail("email", "invalid email format")
	}
	return nil
}

func Phone(phone string) error {
	p := strings.TrimSpace(phone)
	if p == "" {
		return fail("phoneNumber", "phoneNumber is required")
	}
	if !phoneRe.MatchString(p) {
		return fail("phoneNumber", "invalid phone number")
	}
	return nil
}

// 8文字以上、英字と数字を両方含む
func Password(password string, confirm string) error {
	if password != confirm {
		return fail("confirmPassword", "Passwords do not match")
	}
	if len(password) < 8 {
		return fail("password", "password must be at least 8 characters")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fail("password", "password must contain a letter and a digit")
	}
	return nil
}

// 最初に見つかったエラーを返す
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
