package site

import (
	"net/mail"
	"strings"
)

// Form field indexes.
const (
	FieldName = iota
	FieldEmail
	FieldMessage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Email", "Message"}

// Form is the contact form.
type Form struct {
	Values [fieldCount]string
	Errors [fieldCount]string
}

// Type appends r to field i.
func (f *Form) Type(i int, r rune) {
	if i < 0 || i >= fieldCount {
		return
	}
	f.Values[i] += string(r)
	f.Errors[i] = ""
}

// Backspace removes the last character of field i.
func (f *Form) Backspace(i int) {
	if i < 0 || i >= fieldCount {
		return
	}
	rs := []rune(f.Values[i])
	if len(rs) > 0 {
		f.Values[i] = string(rs[:len(rs)-1])
	}
}

// Validate checks every field the way a browser checks a form with
// required inputs and an email-typed input, and records the messages.
func (f *Form) Validate() bool {
	ok := true
	for i := range f.Values {
		f.Errors[i] = ""
		if strings.TrimSpace(f.Values[i]) == "" {
			f.Errors[i] = "Please fill out this field."
			ok = false
		}
	}
	if f.Errors[FieldEmail] == "" && !validEmail(f.Values[FieldEmail]) {
		f.Errors[FieldEmail] = "Please enter an email address."
		ok = false
	}
	return ok
}

// validEmail accepts a bare address with a domain part, rejecting display
// names that net/mail would otherwise allow.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	_, domain, _ := strings.Cut(addr.Address, "@")
	return domain != "" && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
