// Package batch runs many URLs through the pipeline sequentially, with
// per-item retry driven by error classification and a fixed backoff
// table.
package batch

import (
	"regexp"
	"strings"
)

// ErrorClass splits failures into the two retry-relevant kinds.
type ErrorClass string

const (
	// ClassPermanent errors terminate an item immediately without
	// consuming retry budget.
	ClassPermanent ErrorClass = "permanent"
	// ClassTransient errors retry up to the attempt cap.
	ClassTransient ErrorClass = "transient"
)

// permanentPatterns is the fixed pattern set. Anything unmatched is
// transient, so classification is total.
var permanentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)certificate`),
	regexp.MustCompile(`(?i)\bx509\b`),
	regexp.MustCompile(`(?i)ssl[ _]?(error|failure|handshake)`),
	regexp.MustCompile(`(?i)tls.*(handshake|verify)`),
	regexp.MustCompile(`(?i)malformed url`),
	regexp.MustCompile(`(?i)unsupported protocol scheme`),
	regexp.MustCompile(`(?i)no host in`),
	regexp.MustCompile(`(?i)empty url`),
	regexp.MustCompile(`(?i)no such host`),
	// 495-498 are the nginx SSL-certificate rejection statuses.
	regexp.MustCompile(`(?i)status (400|404|410|49[5-8])\b`),
	regexp.MustCompile(`(?i)\bnot found\b`),
	regexp.MustCompile(`(?i)\bbad request\b`),
	regexp.MustCompile(`(?i)\b410 gone\b`),
}

// Classify maps an error to exactly one class. nil errors classify as
// transient; callers never classify a success.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassTransient
	}
	msg := strings.ToLower(err.Error())
	for _, re := range permanentPatterns {
		if re.MatchString(msg) {
			return ClassPermanent
		}
	}
	return ClassTransient
}
