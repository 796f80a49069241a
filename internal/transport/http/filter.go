package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"trendtracker/internal/analytics"
	apierrors "trendtracker/internal/errors"
)

// filterQuery is the bound form of the dashboard filter query parameters.
// Multi-value dimensions accept comma-separated lists.
type filterQuery struct {
	From            string  `validate:"omitempty,datetime=2006-01-02"`
	To              string  `validate:"omitempty,datetime=2006-01-02"`
	States          string  `validate:"omitempty,max=500"`
	Genders         string  `validate:"omitempty,max=200"`
	AgeGroups       string  `validate:"omitempty,max=200"`
	ProductContains string  `validate:"omitempty,max=200"`
	MinOrderValue   float64 `validate:"omitempty,gte=0"`
}

var validate = validator.New()

// parseFilter builds an analytics.Filter from the request query string.
// Invalid parameters yield an *apierrors.APIError so the caller can respond
// directly.
func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()

	fq := filterQuery{
		From:            q.Get("from"),
		To:              q.Get("to"),
		States:          q.Get("states"),
		Genders:         q.Get("genders"),
		AgeGroups:       q.Get("age_groups"),
		ProductContains: q.Get("product_contains"),
	}

	if raw := q.Get("min_order_value"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return analytics.Filter{}, apierrors.ErrValidation("min_order_value", "must be a number")
		}
		fq.MinOrderValue = v
	}

	if err := validate.Struct(fq); err != nil {
		field, message := "filter", "invalid filter parameters"
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			field = strings.ToLower(ves[0].Field())
			message = "failed validation on " + ves[0].Tag()
		}
		return analytics.Filter{}, apierrors.ErrValidation(field, message)
	}

	f := analytics.Filter{
		States:          splitList(fq.States),
		Genders:         splitList(fq.Genders),
		AgeGroups:       splitList(fq.AgeGroups),
		ProductContains: fq.ProductContains,
		MinOrderValue:   fq.MinOrderValue,
	}
	if fq.From != "" {
		f.From, _ = time.ParseInLocation("2006-01-02", fq.From, time.UTC)
	}
	if fq.To != "" {
		f.To, _ = time.ParseInLocation("2006-01-02", fq.To, time.UTC)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return analytics.Filter{}, apierrors.ErrValidation("to", "must not be before from")
	}
	return f, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseLimit reads a positive "limit" query parameter with a default and a
// hard cap.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apierrors.ErrValidation("limit", "must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}
