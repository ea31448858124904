package mail

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"tripagent/pkg/domain"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// formatBodyHTML renders markdown-ish recommendation text as email-safe HTML:
// escape first, then blank lines become paragraphs, single newlines become
// <br>, and **bold** spans become <strong>.
func formatBodyHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return "<p style='color: red;'>No recommendation available.</p>"
	}
	const paragraph = `</p><p style="margin: 15px 0; line-height: 1.6;">`

	formatted := html.EscapeString(text)
	formatted = strings.ReplaceAll(formatted, "\n\n", paragraph)
	formatted = strings.ReplaceAll(formatted, "\n", "<br>")
	formatted = boldPattern.ReplaceAllString(formatted, `<strong style="color: #2c3e50;">$1</strong>`)
	if !strings.HasPrefix(formatted, "<p") {
		formatted = `<p style="margin: 15px 0; line-height: 1.6;">` + formatted + `</p>`
	}
	return formatted
}

func htmlPart(rec domain.Recommendation, sharedBy string, now time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Travel Recommendation</title>
</head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa;">
  <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px 20px; text-align: center; border-radius: 10px 10px 0 0;">
    <h1>✈️ Travel Recommendation</h1>
    <p>Shared by %s</p>
  </div>
  <div style="background: white; padding: 30px; border-radius: 0 0 10px 10px;">
    <h2>🌍 %s</h2>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3>📋 Trip Details</h3>
      <div>🏖️ Destination: %s</div>
      <div>📅 Travel Dates: %s</div>
      <div>💰 Budget: $%.0f</div>
    </div>
    <div style="background: #e3f2fd; padding: 20px; border-left: 4px solid #2196f3; margin: 20px 0; border-radius: 4px;">
      <h3>🤖 AI-Powered Recommendation</h3>
      <div>%s</div>
    </div>
    <div style="text-align: center; margin-top: 30px; color: #6c757d; font-size: 14px;">
      <p>This recommendation was generated using real-time data from:</p>
      <p><strong>Amadeus Flight API • Booking.com Hotels • Anthropic Claude AI</strong></p>
      <p>Generated on %s</p>
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(sharedBy),
		html.EscapeString(rec.Title),
		html.EscapeString(rec.Destination),
		html.EscapeString(rec.Dates),
		rec.Budget,
		formatBodyHTML(rec.Body),
		now.Format("January 2, 2006 at 3:04 PM"),
	)
}

func textPart(rec domain.Recommendation, sharedBy string, now time.Time) string {
	return fmt.Sprintf(`✈️ TRAVEL RECOMMENDATION

Shared by: %s

🌍 %s

📋 TRIP DETAILS:
🏖️ Destination: %s
📅 Travel Dates: %s
💰 Budget: $%.0f

🤖 AI-POWERED RECOMMENDATION:
%s

---
This recommendation was generated using real-time data from:
Amadeus Flight API • Booking.com Hotels • Anthropic Claude AI

Generated on %s
`,
		sharedBy,
		rec.Title,
		rec.Destination,
		rec.Dates,
		rec.Budget,
		rec.Body,
		now.Format("January 2, 2006 at 3:04 PM"),
	)
}
