// Package validation checks run options before a run is started.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jeeftor/rpa-runner/internal/hotkey"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("hotkey", func(fl validator.FieldLevel) bool {
			_, err := hotkey.Parse(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("script_ext", func(fl validator.FieldLevel) bool {
			s := strings.ToLower(fl.Field().String())
			for _, ext := range []string{".xlsx", ".xlsm", ".xltx", ".csv"} {
				if strings.HasSuffix(s, ext) {
					return true
				}
			}
			return false
		})

		validateInst = v
	})
	return validateInst
}

// RunOptions are the user-supplied settings of one run, before parsing
type RunOptions struct {
	Script     string  `yaml:"script" validate:"required,script_ext"`
	Interval   float64 `yaml:"interval" validate:"gte=0"`
	StopHotkey string  `yaml:"stop_hotkey" validate:"required,hotkey"`
	Mode       string  `yaml:"mode" validate:"omitempty,oneof=once loop"`
	LoopCount  int     `yaml:"loop_count" validate:"gte=0"`
	LogLevel   string  `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error"`
}

// ValidationResult holds the errors and warnings of one validation
type ValidationResult struct {
	Errors   []*utils.ConfigError
	Warnings []string
}

// Valid reports whether no errors were recorded
func (vr *ValidationResult) Valid() bool {
	return len(vr.Errors) == 0
}

// AddError adds a validation error
func (vr *ValidationResult) AddError(field string, value interface{}, rule string, message string) {
	vr.Errors = append(vr.Errors, utils.NewConfigError(field, value, rule, message))
}

// AddWarning adds a validation warning
func (vr *ValidationResult) AddWarning(message string) {
	vr.Warnings = append(vr.Warnings, message)
}

// Err folds the errors into a single error, or nil
func (vr *ValidationResult) Err() error {
	if vr.Valid() {
		return nil
	}
	if len(vr.Errors) == 1 {
		return vr.Errors[0]
	}
	multi := utils.NewMultiError("run options")
	for _, e := range vr.Errors {
		multi.Add(e)
	}
	return multi
}

// ValidateRunOptions runs the struct rules and the cross-field checks
func ValidateRunOptions(opts RunOptions) *ValidationResult {
	result := &ValidationResult{}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	opts.LogLevel = strings.ToLower(strings.TrimSpace(opts.LogLevel))

	if err := validatorInstance().Struct(opts); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			result.AddError("options", nil, "struct", err.Error())
			return result
		}
		sort.SliceStable(fieldErrs, func(i, j int) bool {
			return fieldErrs[i].Field() < fieldErrs[j].Field()
		})
		for _, fe := range fieldErrs {
			result.AddError(fieldLabel(fe.Field()), fe.Value(), fe.Tag(), messageFor(fe))
		}
	}

	if opts.Interval > 0 && opts.Interval < 0.005 {
		result.AddWarning(fmt.Sprintf("retry interval %gs is very short and may flood the screen capture", opts.Interval))
	}
	if opts.Mode == "once" && opts.LoopCount > 0 {
		result.AddWarning(fmt.Sprintf("loop count %d is ignored in once mode", opts.LoopCount))
	}

	logging.Debug("Run options validated",
		"script", opts.Script,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))
	return result
}

func fieldLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "hotkey":
		if _, err := hotkey.Parse(fmt.Sprint(fe.Value())); err != nil {
			var ce *utils.ConfigError
			if errors.As(err, &ce) {
				return ce.Message
			}
			return err.Error()
		}
		return "is not a valid hotkey"
	case "script_ext":
		return "must be an .xlsx, .xlsm, .xltx or .csv file"
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
