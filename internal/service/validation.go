package service

import (
	"strings"
	"unicode/utf8"

	"github.com/sgsgita/moderation-backend/internal/domain"
)

// maxFreeTextLen caps feedback and notes, counted in runes so multi-byte
// scripts are not penalized.
const maxFreeTextLen = 2000

// ValidateActionRequest checks an action payload before any storage access
// and collects every violation in one pass, so a client with three bad
// fields hears about all three at once. It is pure: the only lookups are
// the static category sets.
func ValidateActionRequest(req *domain.ActionRequest) *domain.ValidationError {
	var violations []domain.FieldViolation
	add := func(field, message string) {
		violations = append(violations, domain.FieldViolation{Field: field, Message: message})
	}

	if !req.Action.Valid() {
		add("action", "must be one of: approve, reject, escalate")
	}
	if req.ExpectedVersion == nil {
		add("expected_version", "is required")
	}

	switch req.Action {
	case domain.ActionReject:
		if req.Reason == "" {
			add("reason", "is required for reject")
		} else if !domain.ValidRejectReason(req.Reason) {
			add("reason", "must be one of: "+strings.Join(domain.RejectReasonCodes(), ", "))
		}
		if strings.TrimSpace(req.Feedback) == "" {
			add("feedback", "is required for reject")
		} else if utf8.RuneCountInString(req.Feedback) > maxFreeTextLen {
			add("feedback", "must be at most 2000 characters")
		}
	case domain.ActionEscalate:
		if req.Reason == "" {
			add("reason", "is required for escalate")
		} else if !domain.ValidEscalationReason(req.Reason) {
			add("reason", "must be one of: "+strings.Join(domain.EscalationReasonCodes(), ", "))
		}
		if strings.TrimSpace(req.Notes) == "" {
			add("notes", "is required for escalate")
		} else if utf8.RuneCountInString(req.Notes) > maxFreeTextLen {
			add("notes", "must be at most 2000 characters")
		}
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// ValidateEnqueueRequest checks a submission payload. Binding tags catch
// missing fields at the handler; this enforces the semantic rules.
func ValidateEnqueueRequest(req *domain.EnqueueRequest) *domain.ValidationError {
	var violations []domain.FieldViolation
	add := func(field, message string) {
		violations = append(violations, domain.FieldViolation{Field: field, Message: message})
	}

	if strings.TrimSpace(req.Title) == "" {
		add("title", "is required")
	} else if utf8.RuneCountInString(req.Title) > 255 {
		add("title", "must be at most 255 characters")
	}
	if strings.TrimSpace(req.AuthorID) == "" {
		add("author_id", "is required")
	}
	if req.PostingType == "" {
		add("posting_type", "is required")
	} else if !domain.ValidPostingType(req.PostingType) {
		add("posting_type", "must be one of: story, photo, event, comment")
	}
	if req.PostingUID != "" && utf8.RuneCountInString(req.PostingUID) > 36 {
		add("posting_uid", "must be at most 36 characters")
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}
