package domain

import "sort"

// RejectReasons is the constrained category set accepted on reject actions.
// The label feeds the author-facing notification subject.
var RejectReasons = map[string]string{
	"spam":          "Spam or self-promotion",
	"harassment":    "Harassment or personal attack",
	"off_topic":     "Unrelated to the community",
	"duplicate":     "Duplicate posting",
	"inappropriate": "Inappropriate content",
	"copyright":     "Copyright or ownership concern",
	"other":         "Other (see feedback)",
}

// EscalationReasons is the constrained category set accepted on escalate
// actions.
var EscalationReasons = map[string]string{
	"policy_unclear":       "Policy interpretation unclear",
	"repeat_offender":      "Author has prior removals",
	"legal_risk":           "Potential legal exposure",
	"sensitive_topic":      "Sensitive subject matter",
	"needs_second_opinion": "Second opinion requested",
}

// ValidRejectReason reports whether code is an accepted rejection category
func ValidRejectReason(code string) bool {
	_, ok := RejectReasons[code]
	return ok
}

// ValidEscalationReason reports whether code is an accepted escalation category
func ValidEscalationReason(code string) bool {
	_, ok := EscalationReasons[code]
	return ok
}

// RejectReasonCodes returns the accepted rejection categories in stable order
func RejectReasonCodes() []string {
	codes := make([]string, 0, len(RejectReasons))
	for code := range RejectReasons {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// EscalationReasonCodes returns the accepted escalation categories in stable order
func EscalationReasonCodes() []string {
	codes := make([]string, 0, len(EscalationReasons))
	for code := range EscalationReasons {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
