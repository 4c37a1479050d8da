// Package form drives the shorten form: it turns the three input fields into
// a request, tracks the submit and copy buttons, and renders the outcome into
// an explicit View.
package form

import "time"

const (
	LabelSubmit     = "Shorten"
	LabelSubmitting = "Shortening..."
	LabelCopy       = "Copy"
	LabelCopied     = "Copied!"
	LabelCopyFailed = "Failed"

	MessageEmptyURL = "Please enter a URL."
	MessageGeneric  = "Something went wrong."
	MessageConnect  = "Could not connect to the API."

	MetaReused  = "Existing link returned"
	MetaCreated = "New link created"
)

// FeedbackWindow is how long the copy button shows its outcome.
const FeedbackWindow = 2 * time.Second

// Fields holds the raw text of the inputs.
type Fields struct {
	URL    string
	Alias  string
	Expiry string
}

type Button struct {
	Label    string
	Disabled bool
}

// Banner is the inline error message.
type Banner struct {
	Text    string
	Visible bool
}

// ResultPanel shows the short link. Href is the link target and Text its
// visible text; both carry the short URL.
type ResultPanel struct {
	Href    string
	Text    string
	Meta    string
	Visible bool
}

// View is the complete state of the form.
type View struct {
	Fields Fields
	Submit Button
	Error  Banner
	Result ResultPanel
	Copy   Button
}

// InitialView returns an idle form with nothing displayed.
func InitialView() View {
	return View{
		Submit: Button{Label: LabelSubmit},
		Copy:   Button{Label: LabelCopy},
	}
}
