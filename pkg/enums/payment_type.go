package enums

import "fmt"

// PaymentType selects which requisites a collect accepts money on.
type PaymentType string

const (
	PaymentTypeCard    PaymentType = "card"
	PaymentTypeAccount PaymentType = "account"
)

func (p PaymentType) String() string {
	return string(p)
}

func (p PaymentType) IsValid() bool {
	return p == PaymentTypeCard || p == PaymentTypeAccount
}

func ParsePaymentType(value string) (PaymentType, error) {
	p := PaymentType(value)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid payment type %q", value)
	}
	return p, nil
}
