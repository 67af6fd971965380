package utils

import (
	"net/http"
	"strconv"
	"strings"
)

// ReasonPhrase returns the reason phrase of a response status line, falling
// back to the standard text for the code when the server sent none.
func ReasonPhrase(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code/100 == 2
}
