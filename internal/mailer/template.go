package mailer

import "fmt"

// Subject lines per verification flow.
var otpSubjects = map[string]string{
	"COMPANY_REG":    "Verify your company registration",
	"USER_REG":       "Verify your account",
	"LOGIN_2FA":      "Your login verification code",
	"PASSWORD_RESET": "Your password reset code",
}

// OTPMessage renders the verification code email for the given flow.
func OTPMessage(to, subject, code string, ttlMinutes int) Message {
	subj, ok := otpSubjects[subject]
	if !ok {
		subj = "Your verification code"
	}
	return Message{
		To:      to,
		Subject: subj,
		TextBody: fmt.Sprintf(
			"Your verification code is %s. It expires in %d minutes.\r\nIf you did not request this code, you can ignore this email.",
			code, ttlMinutes),
		HTMLBody: fmt.Sprintf(
			"<p>Your verification code is <b>%s</b>. It expires in %d minutes.</p><p>If you did not request this code, you can ignore this email.</p>",
			code, ttlMinutes),
	}
}

// ResetMessage renders the password reset link email.
func ResetMessage(to, resetURL string, ttlMinutes int) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		TextBody: fmt.Sprintf(
			"We received a request to reset your password. Open the link below within %d minutes:\r\n%s\r\nIf you did not request a reset, you can ignore this email.",
			ttlMinutes, resetURL),
		HTMLBody: fmt.Sprintf(
			"<p>We received a request to reset your password. Click the link below within %d minutes:</p><p><a href=\"%s\">Reset password</a></p><p>If you did not request a reset, you can ignore this email.</p>",
			ttlMinutes, resetURL),
	}
}
