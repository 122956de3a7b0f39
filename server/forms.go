package server

import (
	"errors"
	"strings"
	"sync"

	"trusttracker/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxAmount is the first value that no longer fits decimal(15,2).
var maxAmount = decimal.New(1, 13)

var validatorsOnce sync.Once

// registerValidators adds the custom tags used by the form structs to gin's validator.
func registerValidators() {
	validatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
				return strings.TrimSpace(fl.Field().String()) != ""
			})
		}
	})
}

// formProblem is what the user sees when a submission is rejected. Rerender
// asks for the form to be shown again with the submitted values instead of
// a redirect.
type formProblem struct {
	Message  string
	Rerender bool
}

// describe maps a binding error to the first matching field rule. Problems
// that re-render win over plain flashes.
func describe(err error, rules map[string]formProblem, fallback formProblem) formProblem {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}
	for _, fe := range verrs {
		if p, ok := rules[fe.StructField()]; ok && p.Rerender {
			return p
		}
	}
	for _, fe := range verrs {
		if p, ok := rules[fe.StructField()]; ok {
			return p
		}
	}
	return fallback
}

type trustForm struct {
	Name            string `form:"name" binding:"notblank,max=255"`
	TrusteeName     string `form:"trustee_name" binding:"notblank,max=255"`
	DateEstablished string `form:"date_established" binding:"omitempty,datetime=2006-01-02"`
	Description     string `form:"description"`
}

var trustRules = map[string]formProblem{
	"Name":            {Message: "Name and Trustee Name are required!"},
	"TrusteeName":     {Message: "Name and Trustee Name are required!"},
	"DateEstablished": {Message: "Date established must be a valid date (YYYY-MM-DD).", Rerender: true},
}

func (f trustForm) problem(err error) formProblem {
	return describe(err, trustRules, formProblem{Message: "Name and Trustee Name are required!"})
}

func (f trustForm) model() models.Trust {
	t := models.Trust{
		Name:        strings.TrimSpace(f.Name),
		TrusteeName: strings.TrimSpace(f.TrusteeName),
		Description: strings.TrimSpace(f.Description),
	}
	if d := strings.TrimSpace(f.DateEstablished); d != "" {
		t.DateEstablished = &d
	}
	return t
}

type transactionForm struct {
	TrustID         string `form:"trust_id" binding:"notblank"`
	TransactionDate string `form:"transaction_date" binding:"required,datetime=2006-01-02"`
	Amount          string `form:"amount" binding:"notblank"`
	TransactionType string `form:"transaction_type" binding:"notblank,max=64"`
	Description     string `form:"description"`
}

var transactionRules = map[string]formProblem{
	"TrustID":         {Message: "All required fields must be filled!"},
	"TransactionDate": {Message: "Transaction date must be a valid date (YYYY-MM-DD).", Rerender: true},
	"Amount":          {Message: "All required fields must be filled!"},
	"TransactionType": {Message: "All required fields must be filled!"},
}

func (f transactionForm) problem(err error) formProblem {
	return describe(err, transactionRules, formProblem{Message: "All required fields must be filled!"})
}

// Selected reports whether id is the trust picked in the form.
func (f transactionForm) Selected(id uint) bool {
	n, ok := parseID(strings.TrimSpace(f.TrustID))
	return ok && n == id
}

// userError carries a message that is safe to show as a flash.
type userError string

func (e userError) Error() string { return string(e) }

const (
	errAmountNotNumber userError = "Amount must be a valid number."
	errAmountRange     userError = "Amount is too large."
)

// parseAmount accepts plain decimal numbers such as "50000.00" or "-5000",
// rounded to cents.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errAmountNotNumber
	}
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, errAmountRange
	}
	return d, nil
}

func (f transactionForm) model(trustID uint, amount decimal.Decimal, createdBy uint) models.Transaction {
	return models.Transaction{
		TrustID:         trustID,
		TransactionDate: f.TransactionDate,
		Amount:          amount,
		TransactionType: strings.TrimSpace(f.TransactionType),
		Description:     strings.TrimSpace(f.Description),
		CreatedByID:     &createdBy,
	}
}

type meetingForm struct {
	TrustID     string `form:"trust_id" binding:"notblank"`
	MeetingDate string `form:"meeting_date" binding:"required,datetime=2006-01-02"`
	MeetingTime string `form:"meeting_time" binding:"omitempty,datetime=15:04"`
	Location    string `form:"location" binding:"max=255"`
	Attendees   string `form:"attendees"`
	Notes       string `form:"notes"`
}

var meetingRules = map[string]formProblem{
	"TrustID":     {Message: "Trust and Meeting Date are required!"},
	"MeetingDate": {Message: "Meeting date must be a valid date (YYYY-MM-DD).", Rerender: true},
	"MeetingTime": {Message: "Meeting time must be in HH:MM format.", Rerender: true},
	"Location":    {Message: "Location is too long (max 255 characters)."},
}

func (f meetingForm) problem(err error) formProblem {
	return describe(err, meetingRules, formProblem{Message: "Trust and Meeting Date are required!"})
}

func (f meetingForm) Selected(id uint) bool {
	n, ok := parseID(strings.TrimSpace(f.TrustID))
	return ok && n == id
}

func (f meetingForm) model(trustID, createdBy uint) models.Meeting {
	return models.Meeting{
		TrustID:     trustID,
		MeetingDate: f.MeetingDate,
		MeetingTime: f.MeetingTime,
		Location:    strings.TrimSpace(f.Location),
		Attendees:   strings.TrimSpace(f.Attendees),
		Notes:       strings.TrimSpace(f.Notes),
		CreatedByID: &createdBy,
	}
}

type loginForm struct {
	Username string `form:"username" binding:"notblank"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Username        string `form:"username" binding:"notblank,max=80"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"eqfield=Password"`
	IsAdmin         bool   `form:"is_admin"`
}

var registerRules = map[string]formProblem{
	"Username":        {Message: "Username is required (max 80 characters)."},
	"Password":        {Message: "Password must be at least 6 characters."},
	"ConfirmPassword": {Message: "Passwords do not match."},
}

func (f registerForm) problem(err error) formProblem {
	return describe(err, registerRules, formProblem{Message: "Username and password are required."})
}
