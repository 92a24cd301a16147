package view

// Button carries an encoded navigation token.
type Button struct {
	Label string
	Token string
}

type Keyboard [][]Button

// View is a transport-neutral outbound message. Markdown selects the
// lightweight markup dialect for Text, otherwise it is sent verbatim.
type View struct {
	Text           string
	PhotoURL       string
	Keyboard       Keyboard
	Markdown       bool
	DisablePreview bool
}

func (s *View) HasPhoto() bool {
	return s.PhotoURL != ""
}

// TextOnly is the same view without its photo.
func (s *View) TextOnly() *View {
	v := *s
	v.PhotoURL = ""
	return &v
}

func (s Keyboard) Buttons() int {
	n := 0
	for _, row := range s {
		n += len(row)
	}
	return n
}
