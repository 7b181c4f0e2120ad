package services

import (
	"regexp"
	"strings"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/credentials"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`\d`)
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// Registration problem messages, reported to the client verbatim.
const (
	msgUsernameExists   = "Username already exists"
	msgEmailExists      = "Email already exists"
	msgInvalidEmail     = "Invalid email. Email must be in the format of 1Dlq9@example.com"
	msgUsernameIsEmail  = "Username cannot be an email address"
	msgInvalidUsername  = "Invalid username. Username must be between 3 and 20 characters and can only contain letters, numbers, and underscores."
	msgPasswordShort    = "Password must be at least 8 characters long."
	msgPasswordLong     = "Password must be at most 72 bytes long."
	msgPasswordNoUpper  = "Password must contain at least one uppercase letter."
	msgPasswordNoLower  = "Password must contain at least one lowercase letter."
	msgPasswordNoDigit  = "Password must contain at least one digit."
	msgPasswordNoSymbol = `Password must contain at least one special character (!@#$%^&*(),.?":{}|<>).`
)

// formatProblems checks username, email and password composition and returns
// every rule that failed, in a stable order.
func formatProblems(username, email, password string) []string {
	var problems []string

	if !emailPattern.MatchString(email) {
		problems = append(problems, msgInvalidEmail)
	}
	if emailPattern.MatchString(username) {
		problems = append(problems, msgUsernameIsEmail)
	}
	if !usernamePattern.MatchString(username) {
		problems = append(problems, msgInvalidUsername)
	}

	return append(problems, passwordProblems(password)...)
}

func passwordProblems(password string) []string {
	var problems []string

	if len([]rune(password)) < 8 {
		problems = append(problems, msgPasswordShort)
	}
	if len(password) > credentials.MaxPasswordBytes {
		problems = append(problems, msgPasswordLong)
	}
	if !upperPattern.MatchString(password) {
		problems = append(problems, msgPasswordNoUpper)
	}
	if !lowerPattern.MatchString(password) {
		problems = append(problems, msgPasswordNoLower)
	}
	if !digitPattern.MatchString(password) {
		problems = append(problems, msgPasswordNoDigit)
	}
	if !strings.ContainsAny(password, passwordSpecials) {
		problems = append(problems, msgPasswordNoSymbol)
	}

	return problems
}
