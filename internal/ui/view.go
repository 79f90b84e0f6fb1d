package ui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// TimestampLayout formats the client-side time a result arrived.
const TimestampLayout = "3:04:05 PM"

// Control labels
const (
	SubmitLabel     = "Analyze"
	BusyLabel       = "Analyzing…"
	CopyLabel       = "Copy"
	CopyDoneLabel   = "✓"
	EmptyStateLabel = "Stage a drawing, ask a question, and the answer shows up here."
)

// Tone is the color class of the status indicator.
type Tone int

const (
	ToneMuted Tone = iota
	ToneOK
	ToneError
)

// StatusView is the connectivity indicator.
type StatusView struct {
	Label string
	Tone  Tone
}

// Chip is one staged file in the drop zone.
type Chip struct {
	Index int
	Name  string
	Size  int
}

// ButtonView is a clickable control.
type ButtonView struct {
	Label   string
	Enabled bool
	Busy    bool
}

// ImageView is one returned image. Data is the inline data URI.
type ImageView struct {
	Name string
	Data string
}

// ResultView is the results panel.
type ResultView struct {
	Images    []ImageView
	Model     string
	Timestamp string
	Answer    string
	RequestID string
	Copy      ButtonView
}

// View describes the whole screen for one State.
type View struct {
	Status     StatusView
	Chips      []Chip
	Prompt     string
	Pills      []Pill
	Model      string
	Models     []string
	Submit     ButtonView
	EmptyState bool
	Result     *ResultView
	Alert      string
	Notice     string
}

// Render derives the View for s.
func Render(s *State) View {
	v := View{
		Status: renderStatus(s.status),
		Prompt: s.prompt,
		Pills:  s.pills,
		Model:  PlainText(s.model),
		Models: plainTexts(s.models),
		Submit: ButtonView{
			Label:   SubmitLabel,
			Enabled: s.CanSubmit(),
			Busy:    s.busy,
		},
		EmptyState: s.result == nil,
		Alert:      s.alert,
		Notice:     s.notice,
	}
	if s.busy {
		v.Submit.Label = BusyLabel
	}

	for i, f := range s.selection.files {
		v.Chips = append(v.Chips, Chip{Index: i, Name: PlainText(f.Name), Size: len(f.Data)})
	}

	if r := s.result; r != nil {
		rv := &ResultView{
			Model:     PlainText(r.Model),
			Timestamp: r.ReceivedAt.Format(TimestampLayout),
			Answer:    PlainText(r.Answer),
			RequestID: PlainText(r.RequestID),
			Copy:      ButtonView{Label: CopyLabel, Enabled: true},
		}
		if s.copyConfirmed {
			rv.Copy.Label = CopyDoneLabel
		}
		for _, img := range r.Images {
			rv.Images = append(rv.Images, ImageView{Name: PlainText(img.Name), Data: img.Data})
		}
		v.Result = rv
	}

	return v
}

func renderStatus(c Connectivity) StatusView {
	sv := StatusView{Label: c.String()}
	switch c {
	case ConnReady:
		sv.Tone = ToneOK
	case ConnDisconnected, ConnError:
		sv.Tone = ToneError
	default:
		sv.Tone = ToneMuted
	}
	return sv
}

// PlainText returns s with terminal escape sequences and control
// characters removed. Newlines and tabs are kept; everything else is
// shown verbatim and never interpreted as markup.
func PlainText(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func plainTexts(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = PlainText(s)
	}
	return out
}
