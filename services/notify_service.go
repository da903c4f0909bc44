package services

import (
	"bytes"
	"fmt"
	"html/template"

	"memo-approval-api/config"
	"memo-approval-api/models"
)

// Notification delivery is strictly best-effort: every function here is
// called after the owning state change has committed, and a returned error
// must only ever be logged or folded into the response as a warning.

var submissionTmpl = template.Must(template.New("submission").Parse(`
<html>
  <body>
    <p style="font-size:30px"><strong>Hello {{.Dept}} Department,</strong></p>
    <p style="font-size:16px">A new memo has been submitted by <strong>{{.Person}}</strong> from <strong>{{.Department}}</strong>.</p>
    <p style="font-size:16px">Please visit the app to see the memo.</p>
    <p style="font-size:16px"><strong>Best regards,<br>Memo Approval System</strong></p>
  </body>
</html>`))

var decisionTmpl = template.Must(template.New("decision").Parse(`
<html>
  <body>
    <p style="font-size:30px"><strong>Hello,</strong></p>
    <p style="font-size:19px">Your memo has been <span style="color:{{.Color}};"><strong>{{.Verb}}</strong></span> by the <strong>{{.Dept}}</strong> department.</p>
    <p style="font-size:19px">You can view your memo here: <a href="{{.ImageURL}}">memo image</a> (link expires in one hour).</p>
    <p style="font-size:19px">Please contact the department for clarification.</p>
    <p style="font-size:19px"><strong>Best regards,<br>Memo Approval System</strong></p>
  </body>
</html>`))

var tooLargeTmpl = template.Must(template.New("tooLarge").Parse(`
<html>
  <body>
    <p style="font-size:30px"><strong>Hello {{.Person}},</strong></p>
    <p style="font-size:16px">Your memo has been rejected because it is too large.</p>
    <p style="font-size:16px">Try uploading a memo that is less than 5MB.</p>
    <p style="font-size:16px"><strong>Best regards,<br>Memo Approval System</strong></p>
  </body>
</html>`))

// NotifySubmission tells a destination department that a new memo is waiting.
func NotifySubmission(recipient string, dest models.Role, person, department string) error {
	var body bytes.Buffer
	if err := submissionTmpl.Execute(&body, map[string]string{
		"Dept":       dest.DisplayName(),
		"Person":     person,
		"Department": department,
	}); err != nil {
		return err
	}
	subject := fmt.Sprintf("📩 New Memo Submitted to %s Department", dest.DisplayName())
	return config.SendMail([]string{recipient}, subject, body.String())
}

// NotifyDecision tells the submitter that a role approved or rejected their
// memo, with a signed link to the artifact.
func NotifyDecision(email string, role models.Role, action models.Action, imageURL string) error {
	verb, color := "approved", "green"
	if action == models.ActionReject {
		verb, color = "rejected", "red"
	}
	var body bytes.Buffer
	if err := decisionTmpl.Execute(&body, map[string]string{
		"Dept":     role.DisplayName(),
		"Verb":     verb,
		"Color":    color,
		"ImageURL": imageURL,
	}); err != nil {
		return err
	}
	subject := fmt.Sprintf("📩 Your memo has been %s by %s", verb, role.DisplayName())
	return config.SendMail([]string{email}, subject, body.String())
}

// NotifyTooLarge tells the submitter that the upload was over the size limit.
func NotifyTooLarge(email, person string) error {
	var body bytes.Buffer
	if err := tooLargeTmpl.Execute(&body, map[string]string{"Person": person}); err != nil {
		return err
	}
	return config.SendMail([]string{email}, "📩 Memo Failed To Upload", body.String())
}
