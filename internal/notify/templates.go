package notify

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

const dateLayout = "2006-01-02"

// longDate renders "2025-06-01" as "Sunday, June 1, 2025".  Unparseable
// input is returned unchanged.
func longDate(s string) string {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("Monday, January 2, 2006")
}

// shortDate renders "2025-06-01" as "June 1".
func shortDate(s string) string {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("January 2")
}

// guestNoun is "Guest" when the party size reads as one and "Guests"
// otherwise.  Only the leading digits count, so "1 adult" is one guest and
// "10+" is ten.
func guestNoun(guests string) string {
	s := strings.TrimSpace(guests)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if n, err := strconv.Atoi(s[:end]); err == nil && n == 1 {
		return "Guest"
	}
	return "Guests"
}

type reservationView struct {
	Name       string
	Email      string
	Phone      string
	Date       string
	Time       string
	Guests     string
	Message    string
	Restaurant Restaurant
}

func newReservationView(r model.Reservation, rest Restaurant) reservationView {
	v := reservationView{
		Name: r.Name, Email: r.Email, Phone: r.Phone,
		Date: longDate(r.Date), Time: r.Time, Guests: r.Guests,
		Restaurant: rest,
	}
	if r.Message != nil {
		v.Message = strings.TrimSpace(*r.Message)
	}
	return v
}

type statusUpdateView struct {
	Name             string
	Date             string
	Time             string
	Guests           string
	GuestNoun        string
	Accepted         bool
	StatusText       string
	StatusColor      template.CSS
	StatusEmoji      string
	AlternativeTimes []string
	Restaurant       Restaurant
}

func statusView(r model.Reservation, status model.ReservationStatus, alts []string, rest Restaurant) statusUpdateView {
	v := statusUpdateView{
		Name: r.Name, Date: longDate(r.Date), Time: r.Time,
		Guests: r.Guests, GuestNoun: guestNoun(r.Guests),
		AlternativeTimes: alts, Restaurant: rest,
	}
	if status == model.StatusAccepted {
		v.Accepted, v.StatusText, v.StatusColor, v.StatusEmoji = true, "CONFIRMED", "#22C55E", "✅"
	} else {
		v.StatusText, v.StatusColor, v.StatusEmoji = "CANCELLED", "#EF4444", "❌"
	}
	return v
}

var (
	newReservationTmpl = template.Must(template.New("new_reservation").Parse(newReservationHTML))
	statusUpdateTmpl   = template.Must(template.New("status_update").Parse(statusUpdateHTML))
)

func renderNewReservation(v reservationView) (string, error) {
	var buf bytes.Buffer
	if err := newReservationTmpl.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderStatusUpdate(v statusUpdateView) (string, error) {
	var buf bytes.Buffer
	if err := statusUpdateTmpl.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const newReservationHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #5E3023 0%, #895737 50%, #C08552 100%); color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0; }
  .content { background: #FAF6F0; padding: 30px; border-radius: 0 0 8px 8px; }
  .detail-box { background: white; padding: 20px; margin: 20px 0; border-radius: 8px; border-left: 4px solid #C08552; }
  .detail-row { padding: 10px 0; border-bottom: 1px solid #E8DCC8; }
  .label { font-weight: bold; color: #5E3023; }
  .value { color: #895737; }
  .footer { text-align: center; margin-top: 20px; color: #895737; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1 style="margin: 0;">🍽️ New Reservation Request</h1>
    <p style="margin: 10px 0 0 0; opacity: 0.9;">{{.Restaurant.Name}}</p>
  </div>
  <div class="content">
    <h2 style="color: #5E3023; margin-top: 0;">Reservation Details</h2>
    <div class="detail-box">
      <div class="detail-row"><span class="label">Guest Name:</span> <span class="value">{{.Name}}</span></div>
      <div class="detail-row"><span class="label">Email:</span> <span class="value">{{.Email}}</span></div>
      <div class="detail-row"><span class="label">Phone:</span> <span class="value">{{.Phone}}</span></div>
      <div class="detail-row"><span class="label">Date:</span> <span class="value">{{.Date}}</span></div>
      <div class="detail-row"><span class="label">Time:</span> <span class="value">{{.Time}}</span></div>
      <div class="detail-row"><span class="label">Number of Guests:</span> <span class="value">{{.Guests}}</span></div>
    </div>
    {{- if .Message}}
    <div class="detail-box">
      <div class="label" style="margin-bottom: 10px;">Special Requests:</div>
      <p style="margin: 0; color: #895737;">{{.Message}}</p>
    </div>
    {{- end}}
    <div class="footer">
      <p>Please contact the guest to confirm their reservation.</p>
      <p style="margin-top: 20px; font-size: 12px; color: #C08552;">This email was sent from {{.Restaurant.Name}} reservation system</p>
    </div>
  </div>
</div>
</body>
</html>
`

const statusUpdateHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: 'Georgia', serif; line-height: 1.8; color: #2C2C2C; }
  .container { max-width: 650px; margin: 0 auto; padding: 20px; background: #FFFFFF; }
  .header { background: linear-gradient(135deg, #5E3023 0%, #895737 50%, #C08552 100%); color: white; padding: 40px 30px; text-align: center; border-radius: 8px 8px 0 0; }
  .content { background: #FAF6F0; padding: 40px 35px; border-radius: 0 0 8px 8px; }
  .status-badge { color: white; padding: 14px 28px; border-radius: 30px; display: inline-block; font-weight: bold; margin: 25px 0; letter-spacing: 1px; }
  .detail-box { background: white; padding: 25px; margin: 25px 0; border-radius: 10px; border-left: 5px solid #C08552; }
  .detail-row { padding: 12px 0; border-bottom: 1px solid #E8DCC8; }
  .label { font-weight: 600; color: #5E3023; }
  .value { color: #895737; }
  .alternative-times { background: #FFF9F0; border: 2px solid #C08552; padding: 25px; border-radius: 10px; margin: 25px 0; }
  .time-option { background: white; padding: 12px 20px; margin: 10px 0; border-radius: 8px; border-left: 4px solid #C08552; color: #5E3023; }
  .contact-info { background: #E8DCC8; padding: 25px; border-radius: 10px; margin-top: 25px; }
  .footer { text-align: center; margin-top: 30px; padding-top: 25px; border-top: 2px solid #E8DCC8; color: #895737; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1 style="margin: 0;">{{.StatusEmoji}} SIRI</h1>
    <p style="margin: 10px 0 0 0;">{{.Restaurant.Name}}</p>
  </div>
  <div class="content">
    <p>Dear {{.Name}},</p>
    {{- if .Accepted}}
    <p>It is our distinct pleasure to confirm your reservation at {{.Restaurant.Name}}. We are delighted to welcome you and your guests for an exceptional dining experience.</p>
    {{- else}}
    <p>We sincerely regret to inform you that {{if .AlternativeTimes}}your requested time slot is currently unavailable{{else}}we must cancel your reservation{{end}}. Please accept our sincere apologies for any inconvenience this may cause.</p>
    {{- end}}
    <div class="status-badge" style="background: {{.StatusColor}};">{{.StatusText}}</div>
    <div class="detail-box">
      <h3 style="color: #5E3023; margin-top: 0;">Reservation Details</h3>
      <div class="detail-row"><span class="label">Date:</span> <span class="value">{{.Date}}</span></div>
      <div class="detail-row"><span class="label">Requested Time:</span> <span class="value">{{.Time}}</span></div>
      <div class="detail-row"><span class="label">Party Size:</span> <span class="value">{{.Guests}} {{.GuestNoun}}</span></div>
    </div>
    {{- if .AlternativeTimes}}
    <div class="alternative-times">
      <h3>✨ Available Alternative Times</h3>
      <p>We would be honored to accommodate your party at one of the following available times on the same date:</p>
      {{- range .AlternativeTimes}}
      <div class="time-option">🕐 {{.}}</div>
      {{- end}}
      <p style="font-style: italic;">To confirm one of these alternative times, please contact us at your earliest convenience via phone or email.</p>
    </div>
    {{- end}}
    <div class="contact-info">
    {{- if .Accepted}}
      <h3>📍 Location &amp; Contact Information</h3>
      <p><strong>Address:</strong> {{.Restaurant.Address}}</p>
      <p><strong>Telephone:</strong> {{.Restaurant.Phone}}</p>
      <p><strong>Email:</strong> {{.Restaurant.Email}}</p>
      <p>We kindly request that you arrive approximately 10 minutes prior to your reservation time. Should you need to modify or cancel your reservation, we would appreciate advance notice of at least 24 hours.</p>
    {{- else}}
      <h3>📞 We're Here to Assist You</h3>
      <p>We would be delighted to accommodate you at another time that suits your schedule.</p>
      <p><strong>Telephone:</strong> {{.Restaurant.Phone}}</p>
      <p><strong>Email:</strong> {{.Restaurant.Email}}</p>
      <p><strong>Address:</strong> {{.Restaurant.Address}}</p>
      <p>{{if .AlternativeTimes}}Please do not hesitate to contact us to confirm one of the suggested alternative times or to discuss other arrangements.{{else}}Please feel free to contact us to arrange a new reservation at your convenience. We sincerely look forward to serving you.{{end}}</p>
    {{- end}}
    </div>
    <p style="font-style: italic;">{{if .Accepted}}We eagerly anticipate your visit and the opportunity to provide you with an unforgettable culinary experience.{{else}}We deeply appreciate your understanding and sincerely hope to have the pleasure of welcoming you soon.{{end}}</p>
    <p>Warm regards,<br>The SIRI Team<br>{{.Restaurant.Name}}</p>
    <div class="footer">
      <p>Thank you for choosing {{.Restaurant.Name}}</p>
      <p>This is an automated confirmation. Please do not reply to this email.</p>
    </div>
  </div>
</div>
</body>
</html>
`
