package tui

import (
	"strings"
)

// field is one labelled input. A field with options is a choice cycled
// with left/right instead of typed into.
type field struct {
	label    string
	value    string
	secret   bool
	optional bool
	isChoice bool
	options  []string
	choice   int
	maxLen   int
}

func (f *field) Value() string {
	if f.isChoice {
		if len(f.options) == 0 {
			return ""
		}
		return f.options[f.choice]
	}
	return f.value
}

func (f *field) handleKey(key string) {
	if f.isChoice {
		if len(f.options) == 0 {
			return
		}
		switch key {
		case "left":
			f.choice = (f.choice + len(f.options) - 1) % len(f.options)
		case "right", " ":
			f.choice = (f.choice + 1) % len(f.options)
		}
		return
	}
	switch key {
	case "backspace":
		if r := []rune(f.value); len(r) > 0 {
			f.value = string(r[:len(r)-1])
		}
	case "ctrl+u":
		f.value = ""
	default:
		if len([]rune(key)) == 1 && (f.maxLen == 0 || len([]rune(f.value)) < f.maxLen) {
			f.value += key
		}
	}
}

// form is an ordered set of fields with one focused at a time.
type form struct {
	fields []*field
	focus  int
}

func newForm(fields ...*field) *form {
	return &form{fields: fields}
}

func (f *form) focused() *field {
	return f.fields[f.focus]
}

// HandleKey moves focus on tab/shift+tab and passes anything else to the
// focused field.
func (f *form) HandleKey(key string) {
	switch key {
	case "tab":
		f.focus = (f.focus + 1) % len(f.fields)
	case "shift+tab":
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
	default:
		f.focused().handleKey(key)
	}
}

func (f *form) Value(i int) string {
	return strings.TrimSpace(f.fields[i].Value())
}

func (f *form) Set(i int, v string) {
	f.fields[i].value = v
}

// SetOptions replaces a choice field's options, keeping the selection in range.
func (f *form) SetOptions(i int, opts []string) {
	fl := f.fields[i]
	fl.options = opts
	if fl.choice >= len(opts) {
		fl.choice = 0
	}
}

// Complete reports whether every required field has a value.
func (f *form) Complete() bool {
	for _, fl := range f.fields {
		if !fl.optional && strings.TrimSpace(fl.Value()) == "" {
			return false
		}
	}
	return true
}

// Clear empties the text fields and returns focus to the first one.
func (f *form) Clear() {
	for _, fl := range f.fields {
		fl.value = ""
	}
	f.focus = 0
}

func (f *form) Render(t *Theme) string {
	var b strings.Builder
	for i, fl := range f.fields {
		label := fl.label
		if !fl.optional {
			label += " *"
		}
		b.WriteString(t.Label.Render(label))

		v := fl.Value()
		if fl.secret {
			v = strings.Repeat("•", len([]rune(v)))
		}
		if fl.isChoice {
			v = "< " + v + " >"
		}
		if i == f.focus {
			b.WriteString(t.Focused.Render(v + "_"))
		} else {
			b.WriteString(t.Value.Render(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}
