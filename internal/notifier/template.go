package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

const CompletionSubject = "Course Completion Certificate"

// CompletionEmailData is the view model of the completion email
type CompletionEmailData struct {
	StudentName    string
	CertificateURL string
	CourseName     string
	InstructorName string
	InstructorPic  string
}

// NewCompletionEmailData resolves the certificate link against baseURL when one is set
func NewCompletionEmailData(notice *models.CompletionNotice, baseURL string) CompletionEmailData {
	url := notice.CertificateURL
	if baseURL != "" {
		url = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(url, "/")
	}
	return CompletionEmailData{
		StudentName:    notice.StudentName,
		CertificateURL: url,
		CourseName:     notice.CourseName,
		InstructorName: notice.InstructorName,
		InstructorPic:  notice.InstructorPic,
	}
}

var completionTemplate = template.Must(template.New("completion").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Course Completion Certificate</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; background: #f4f4f5; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; background: #ffffff; }
        .header { text-align: center; padding: 20px; }
        .content { padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #0f172a; color: #ffffff; text-decoration: none; border-radius: 6px; }
        .instructor { display: flex; align-items: center; margin-top: 24px; }
        .instructor img { width: 48px; height: 48px; border-radius: 50%; margin-right: 12px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Congratulations, {{.StudentName}}!</h1>
        </div>
        <div class="content">
            <p>You have successfully completed <strong>{{.CourseName}}</strong>.</p>
            <p>Your certificate of completion is ready.</p>
            <p style="text-align: center;">
                <a class="button" href="{{.CertificateURL}}">View certificate</a>
            </p>
            <div class="instructor">
                {{if .InstructorPic}}<img src="{{.InstructorPic}}" alt="{{.InstructorName}}">{{end}}
                <div>
                    <div>{{.InstructorName}}</div>
                    <div style="color: #888; font-size: 12px;">Instructor</div>
                </div>
            </div>
        </div>
        <div class="footer">
            <p>Keep learning!</p>
        </div>
    </div>
</body>
</html>`))

// RenderCompletionEmail renders the completion email body
func RenderCompletionEmail(data CompletionEmailData) (string, error) {
	var body bytes.Buffer
	if err := completionTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}
