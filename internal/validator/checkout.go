package validator

import "strings"

// チェックアウト開始の入力
type CheckoutInput struct {
	Name      string
	Location  string
	ExtraInfo string
	Zone      string
}

func (in CheckoutInput) Validate() error {
	return First(
		Required("name", in.Name, 255),
		Required("location", in.Location, 255),
		MaxLength("extraInfo", in.ExtraInfo, 2000),
		Zone(in.Zone),
	)
}

// 配送地域は local / other
func Zone(zone string) error {
	switch strings.ToLower(strings.TrimSpace(zone)) {
	case "local", "other":
		return nil
	}
	return fail("zone", "zone must be local or other")
}

type RegisterInput struct {
	Email           string
	Name            string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

func (in RegisterInput) Validate() error {
	return First(
		Email(in.Email),
		Required("name", in.Name, 255),
		Phone(in.PhoneNumber),
		Password(in.Password, in.ConfirmPassword),
	)
}
