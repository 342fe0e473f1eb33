package collects

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
)

const (
	maxTitleLength        = 200
	maxOccasionTextLength = 255
)

var (
	cardNumberRe  = regexp.MustCompile(`^[245]\d{15}$`)
	accountRe     = regexp.MustCompile(`^\d{20}$`)
	bikRe         = regexp.MustCompile(`^\d{9}$`)
	innRe         = regexp.MustCompile(`^\d{10}$`)
	digitSpacesRe = regexp.MustCompile(`[\s-]+`)
)

// normalizeRequisites trims the payment details, strips separators from the
// numeric ones and drops the details of the payment type not in use.
func normalizeRequisites(c *models.Collect) {
	c.RecipientName = strings.TrimSpace(c.RecipientName)
	c.CardNumber = digitsOnly(c.CardNumber)
	c.BankAccountNumber = digitsOnly(c.BankAccountNumber)
	c.BankBIK = digitsOnly(c.BankBIK)
	c.BankINN = digitsOnly(c.BankINN)
	c.BankName = trimmedOrNil(c.BankName)

	switch c.PaymentType {
	case enums.PaymentTypeCard:
		c.BankAccountNumber, c.BankName, c.BankBIK, c.BankINN = nil, nil, nil, nil
	case enums.PaymentTypeAccount:
		c.CardNumber = nil
	}
}

// validateCollect checks a fully merged collect before it is written.
func validateCollect(c *models.Collect) error {
	fields := pkgerrors.FieldErrors{}

	title := strings.TrimSpace(c.Title)
	switch {
	case title == "":
		fields.Add("title", "title is required")
	case utf8.RuneCountInString(title) > maxTitleLength:
		fields.Add("title", "title must be at most 200 characters")
	}

	if !c.Occasion.IsValid() {
		fields.Add("occasion", "unknown occasion")
	} else if c.Occasion == enums.OccasionOther && (c.OccasionOtherText == nil || strings.TrimSpace(*c.OccasionOtherText) == "") {
		fields.Add("occasion_other_text", "describe the occasion when choosing \"other\"")
	}
	if c.OccasionOtherText != nil && utf8.RuneCountInString(*c.OccasionOtherText) > maxOccasionTextLength {
		fields.Add("occasion_other_text", "occasion text must be at most 255 characters")
	}

	if strings.TrimSpace(c.Description) == "" {
		fields.Add("description", "description is required")
	}
	if c.GoalAmount != nil {
		switch {
		case !c.GoalAmount.Round(2).IsPositive():
			fields.Add("goal_amount", "goal amount must be greater than zero")
		case c.GoalAmount.GreaterThan(models.MaxCollectAmount):
			fields.Add("goal_amount", "goal amount must be at most "+models.MaxCollectAmount.StringFixed(2))
		}
	}
	if c.RecipientName == "" {
		fields.Add("recipient_name", "recipient name is required")
	}

	switch c.PaymentType {
	case enums.PaymentTypeCard:
		if !matches(cardNumberRe, c.CardNumber) {
			fields.Add("card_number", "card number must be 16 digits starting with 2, 4 or 5")
		}
	case enums.PaymentTypeAccount:
		if !matches(accountRe, c.BankAccountNumber) {
			fields.Add("bank_account_number", "account number must be 20 digits")
		}
		if c.BankName == nil {
			fields.Add("bank_name", "bank name is required")
		}
		if !matches(bikRe, c.BankBIK) {
			fields.Add("bank_bik", "BIK must be 9 digits")
		}
		if !matches(innRe, c.BankINN) {
			fields.Add("bank_inn", "INN must be 10 digits")
		}
	default:
		fields.Add("payment_type", "payment type must be card or account")
	}

	return fields.Err()
}

func matches(re *regexp.Regexp, v *string) bool {
	return v != nil && re.MatchString(*v)
}

func digitsOnly(v *string) *string {
	if v == nil {
		return nil
	}
	out := digitSpacesRe.ReplaceAllString(*v, "")
	if out == "" {
		return nil
	}
	return &out
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}
