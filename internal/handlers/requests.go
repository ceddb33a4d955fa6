package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type createAnnouncementRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// updateAnnouncementRequest leaves absent fields unchanged.
type updateAnnouncementRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validationMessage renders the first failed rule for a client.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "min":
		return field + " must not be empty"
	}
	return field + " is invalid"
}

// numericText unwraps a JSON number or numeric string. ok is false for null
// and the empty string.
func numericText(data []byte) (text string, ok bool, err error) {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return "", false, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return "", false, nil
		}
	}
	return s, true, nil
}

// flexNumber accepts a finite JSON number or a string holding one.
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s, ok, err := numericText(data)
	if err != nil || !ok {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("not a finite number: %q", s)
	}
	n.value, n.set = v, true
	return nil
}

// flexInt accepts a whole JSON number or a string holding one. Fractions and
// values outside int64 are rejected rather than truncated.
type flexInt struct {
	value int64
	set   bool
}

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s, ok, err := numericText(data)
	if err != nil || !ok {
		return err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	n.value, n.set = v, true
	return nil
}
