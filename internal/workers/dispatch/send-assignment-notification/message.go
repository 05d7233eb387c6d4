package sendassignmentnotification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"ac-dispatch-workers/internal/labels"
	"ac-dispatch-workers/internal/matching"
)

// smsLimit keeps SMS bodies to a single GSM-7 segment.
const smsLimit = 160

type messageData struct {
	Name         string
	JobID        string
	AssignmentID string
	ServiceArea  string
	Work         string
	Complexity   string
	Emergency    bool
	NeedsVehicle bool
}

const textBody = `Hi {{.Name}},

You have been assigned job {{.JobID}}{{if .ServiceArea}} in {{.ServiceArea}}{{end}}.
{{if .Emergency}}
This is an EMERGENCY call. Please head out as soon as possible.
{{end}}
Work: {{.Work}}
{{- if .Complexity}}
Complexity: {{.Complexity}}{{end}}
{{- if .NeedsVehicle}}
A service vehicle is required.{{end}}
{{- if .AssignmentID}}
Assignment reference: {{.AssignmentID}}{{end}}
`

const htmlBody = `<p>Hi {{.Name}},</p>
<p>You have been assigned job <strong>{{.JobID}}</strong>{{if .ServiceArea}} in {{.ServiceArea}}{{end}}.</p>
{{if .Emergency}}<p><strong>This is an EMERGENCY call.</strong> Please head out as soon as possible.</p>
{{end}}<ul>
<li>Work: {{.Work}}</li>
{{if .Complexity}}<li>Complexity: {{.Complexity}}</li>
{{end}}{{if .NeedsVehicle}}<li>A service vehicle is required.</li>
{{end}}</ul>
{{if .AssignmentID}}<p>Assignment reference: {{.AssignmentID}}</p>
{{end}}`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

func newMessageData(input *Input, tech matching.TechnicianProfile, req matching.JobRequirements) messageData {
	name := tech.DisplayName
	if name == "" {
		name = "there"
	}
	work := strings.Join(labels.Skills(req.RequiredSkills), ", ")
	if work == "" {
		work = "General service"
	}
	return messageData{
		Name:         name,
		JobID:        input.JobID,
		AssignmentID: input.AssignmentID,
		ServiceArea:  req.ServiceArea,
		Work:         work,
		Complexity:   labels.Complexity(req.Complexity),
		Emergency:    req.Emergency,
		NeedsVehicle: req.RequiresVehicle,
	}
}

func (d messageData) subject() string {
	if d.Emergency {
		return fmt.Sprintf("EMERGENCY job assigned: %s", d.JobID)
	}
	return fmt.Sprintf("New job assigned: %s", d.JobID)
}

func (d messageData) render() (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := textTmpl.Execute(&tb, d); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTmpl.Execute(&hb, d); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	return tb.String(), hb.String(), nil
}

func (d messageData) sms() string {
	var b strings.Builder
	if d.Emergency {
		b.WriteString("URGENT: ")
	}
	b.WriteString("Job ")
	b.WriteString(d.JobID)
	b.WriteString(" assigned to you")
	if d.ServiceArea != "" {
		b.WriteString(" in ")
		b.WriteString(d.ServiceArea)
	}
	b.WriteString(". ")
	b.WriteString(d.Work)
	b.WriteString(".")
	if d.AssignmentID != "" {
		b.WriteString(" Ref ")
		b.WriteString(d.AssignmentID)
	}

	msg := []rune(b.String())
	if len(msg) > smsLimit {
		return string(msg[:smsLimit-3]) + "..."
	}
	return string(msg)
}
