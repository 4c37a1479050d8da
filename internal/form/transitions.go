package form

import (
	"errors"
	"math"
	"strings"

	"github.com/MikhailRaia/shortlink/internal/client"
	"github.com/MikhailRaia/shortlink/internal/model"
)

// Begin starts a submission. It hides the previous outcome and either
// reports a missing URL or returns the request to send with the submit
// button switched to its busy state.
func Begin(v View) (View, *model.ShortenRequest, error) {
	v.Error.Visible = false
	v.Result.Visible = false

	url := strings.TrimSpace(v.Fields.URL)
	if url == "" {
		v.Error = Banner{Text: MessageEmptyURL, Visible: true}
		return v, nil, &ValidationError{Message: MessageEmptyURL}
	}

	req := &model.ShortenRequest{URL: url}
	if alias := strings.TrimSpace(v.Fields.Alias); alias != "" {
		req.CustomCode = alias
	}
	if expiry := strings.TrimSpace(v.Fields.Expiry); expiry != "" {
		req.ExpiresInDays = ParseDays(expiry)
	}

	v.Submit = Button{Label: LabelSubmitting, Disabled: true}
	return v, req, nil
}

// Complete renders the outcome of a submission and restores the submit
// button. A nil response without an error counts as a failed call.
func Complete(v View, resp *model.ShortenResponse, err error) View {
	v.Submit = Button{Label: LabelSubmit}

	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = MessageGeneric
		}
		v.Error = Banner{Text: msg, Visible: true}
	case err != nil, resp == nil:
		v.Error = Banner{Text: MessageConnect, Visible: true}
	default:
		meta := MetaCreated
		if resp.Reused {
			meta = MetaReused
		}
		v.Result = ResultPanel{
			Href:    resp.ShortURL,
			Text:    resp.ShortURL,
			Meta:    meta,
			Visible: true,
		}
	}

	return v
}

// CopyFeedback shows the outcome of a clipboard write on the copy button.
func CopyFeedback(v View, err error) View {
	if err != nil {
		v.Copy.Label = LabelCopyFailed
	} else {
		v.Copy.Label = LabelCopied
	}
	return v
}

// ResetCopy puts the copy button back to its idle label.
func ResetCopy(v View) View {
	v.Copy.Label = LabelCopy
	return v
}

// ParseDays reads the leading integer of s the way a lenient browser parse
// does: an optional sign, then decimal digits or a 0x-prefixed hex number,
// ignoring anything after them. Input without a leading number yields an
// invalid Days, sent as null. Values beyond the int range are invalid too.
func ParseDays(s string) *model.Days {
	s = strings.TrimSpace(s)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	var n uint64
	digits := 0
	for ; digits < len(s); digits++ {
		d, ok := digitValue(s[digits], base)
		if !ok {
			break
		}
		if n > (math.MaxInt64-uint64(d))/uint64(base) {
			return &model.Days{}
		}
		n = n*uint64(base) + uint64(d)
	}

	if digits == 0 {
		return &model.Days{}
	}

	value := int64(n)
	if negative {
		value = -value
	}
	if value > math.MaxInt || value < math.MinInt {
		return &model.Days{}
	}

	return model.NewDays(int(value))
}

func digitValue(c byte, base int) (int, bool) {
	var d int
	switch {
	case c >= '0' && c <= '9':
		d = int(c - '0')
	case c >= 'a' && c <= 'f':
		d = int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		d = int(c-'A') + 10
	default:
		return 0, false
	}
	return d, d < base
}
