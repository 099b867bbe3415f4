package handler

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tv-ad-booking/internal/service"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
// Field errors are keyed by JSON name.
type RequestValidator struct {
    v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" || name == "" {
            return f.Name
        }
        return name
    })
    return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    var ve validator.ValidationErrors
    if errors.As(err, &ve) {
        fields := make(map[string]string, len(ve))
        for _, fe := range ve {
            fields[fe.Field()] = fe.Tag()
        }
        return &service.ValidationError{FieldErrors: fields}
    }
    return err
}

// bind decodes the body and runs the validator.
func bind(c echo.Context, req interface{}) error {
    if err := c.Bind(req); err != nil {
        return &service.ValidationError{FieldErrors: map[string]string{"body": "invalid request body"}}
    }
    return c.Validate(req)
}
