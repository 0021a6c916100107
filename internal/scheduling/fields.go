package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"medsched/pkg/model"
)

const minNameLength = 2

// fieldCheck is the outcome of the syntactic pass over a request: per-field
// messages plus the parsed values the later stages need.
type fieldCheck struct {
	errs            map[model.Field][]model.FieldMessage
	normalizedPhone string
	date            time.Time
	hasDate         bool
	timeOfDay       TimeOfDay
	hasTime         bool
}

func (fc *fieldCheck) add(field model.Field, code model.Code, message string) {
	fc.errs[field] = append(fc.errs[field], model.FieldMessage{
		Field:   field,
		Code:    code,
		Message: message,
	})
}

func (fc *fieldCheck) hasError(field model.Field) bool {
	return len(fc.errs[field]) > 0
}

// fieldValidator runs the format-level checks that need no catalog access.
type fieldValidator struct {
	validate *validator.Validate
	region   string
	loc      *time.Location
}

func newFieldValidator(region string, loc *time.Location) (*fieldValidator, error) {
	v := validator.New()
	if err := v.RegisterValidation("clinic_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	}); err != nil {
		return nil, fmt.Errorf("register clinic_date: %w", err)
	}
	if err := v.RegisterValidation("clinic_time", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	}); err != nil {
		return nil, fmt.Errorf("register clinic_time: %w", err)
	}
	return &fieldValidator{validate: v, region: region, loc: loc}, nil
}

func (fv *fieldValidator) check(req model.AppointmentRequest) *fieldCheck {
	fc := &fieldCheck{errs: make(map[model.Field][]model.FieldMessage)}

	name := strings.TrimSpace(req.PatientName)
	switch {
	case name == "":
		fc.add(model.FieldName, model.CodeEmptyField, "patient name is required")
	case len([]rune(name)) < minNameLength:
		fc.add(model.FieldName, model.CodeEmptyField, fmt.Sprintf("patient name must be at least %d characters", minNameLength))
	}

	phone := strings.TrimSpace(req.PatientPhone)
	if phone == "" {
		fc.add(model.FieldPhone, model.CodeEmptyField, "patient phone is required")
	} else if normalized, ok := fv.normalizePhone(phone); ok {
		fc.normalizedPhone = normalized
	} else {
		fc.add(model.FieldPhone, model.CodeInvalidPhone, fmt.Sprintf("%q is not a valid phone number", phone))
	}

	dateFormatOK := true
	timeFormatOK := true
	if err := fv.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, ve := range verrs {
				switch ve.Tag() {
				case "clinic_date":
					dateFormatOK = false
					fc.add(model.FieldDate, model.CodeInvalidDate, fmt.Sprintf("%q is not a valid date, expected YYYY-MM-DD", req.Date))
				case "clinic_time":
					timeFormatOK = false
					fc.add(model.FieldTime, model.CodeInvalidTime, fmt.Sprintf("%q is not a valid time, expected HH:MM", req.Time))
				}
			}
		}
	}

	if strings.TrimSpace(req.Date) == "" {
		fc.add(model.FieldDate, model.CodeEmptyField, "appointment date is required")
	} else if dateFormatOK {
		if d, err := ParseDate(req.Date, fv.loc); err == nil {
			fc.date = d
			fc.hasDate = true
		} else {
			fc.add(model.FieldDate, model.CodeInvalidDate, fmt.Sprintf("%q is not a valid date, expected YYYY-MM-DD", req.Date))
		}
	}

	if req.Time != "" && timeFormatOK {
		if t, err := ParseTimeOfDay(req.Time); err == nil {
			fc.timeOfDay = t
			fc.hasTime = true
		} else {
			fc.add(model.FieldTime, model.CodeInvalidTime, fmt.Sprintf("%q is not a valid time, expected HH:MM", req.Time))
		}
	}

	return fc
}

// normalizePhone parses a raw phone number against the clinic region and
// returns its E.164 form. Local-format numbers such as 0501234567 come back
// as +972501234567; numbers already carrying a country code keep it.
func (fv *fieldValidator) normalizePhone(raw string) (string, bool) {
	num, err := phonenumbers.Parse(raw, fv.region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
