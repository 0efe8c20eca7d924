// responses.go -- User-facing HTML responses.
//
// The claim flow ends in the user's browser, so responses are small HTML
// pages rather than JSON. The username comes from Discord and is always
// escaped; role names come from our own registry.
package grant

import (
	"html"
	"net/http"
	"strings"
)

// Fixed user-facing messages for each failure class.
const (
	msgInvalidRole    = "Invalid or missing role parameter."
	msgInvalidSession = "This claim link is invalid or was already used. Please start again from the claim page."
	msgExpiredCode    = "This link has expired or was already used. Please go back and start from the claim page."
	msgGrantFailed    = "Something went wrong assigning the role. Please try again later."
)

// writePage writes a minimal HTML page with the given status and body markup.
func writePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte("<!doctype html><html><body>" + body + "</body></html>"))
}

// SuccessPage confirms the grant, naming the user and the role.
func SuccessPage(w http.ResponseWriter, username, role string) {
	writePage(w, http.StatusOK,
		"<h2>"+html.EscapeString(username)+" has been given the <strong>"+
			html.EscapeString(strings.ToUpper(role))+"</strong> role!</h2>")
}

// ErrorPage renders a failure message with the given status.
func ErrorPage(w http.ResponseWriter, status int, message string) {
	writePage(w, status, "<h2>"+html.EscapeString(message)+"</h2>")
}
