package service

import (
	"strings"
	"testing"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint64) *uint64 { return &v }

func TestValidateActionRequest_ApproveMinimal(t *testing.T) {
	req := &domain.ActionRequest{
		Action:          domain.ActionApprove,
		ExpectedVersion: uintPtr(0),
	}

	assert.Nil(t, ValidateActionRequest(req))
}

func TestValidateActionRequest_RejectRequiresReasonAndFeedback(t *testing.T) {
	req := &domain.ActionRequest{
		Action:          domain.ActionReject,
		ExpectedVersion: uintPtr(2),
	}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.ElementsMatch(t, []string{"reason", "feedback"}, verr.Fields())
}

func TestValidateActionRequest_RejectUnknownCategory(t *testing.T) {
	req := &domain.ActionRequest{
		Action:          domain.ActionReject,
		ExpectedVersion: uintPtr(0),
		Reason:          "because",
		Feedback:        "Please review the community guidelines.",
	}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"reason"}, verr.Fields())
	assert.Contains(t, verr.Violations[0].Message, "spam")
}

func TestValidateActionRequest_EscalateRequiresReasonAndNotes(t *testing.T) {
	req := &domain.ActionRequest{
		Action:          domain.ActionEscalate,
		ExpectedVersion: uintPtr(1),
		Reason:          "legal_risk",
	}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"notes"}, verr.Fields())
}

func TestValidateActionRequest_EscalateRejectCategoryNotAccepted(t *testing.T) {
	// Category sets do not cross over: a rejection code is not an
	// escalation code.
	req := &domain.ActionRequest{
		Action:          domain.ActionEscalate,
		ExpectedVersion: uintPtr(0),
		Reason:          "spam",
		Notes:           "Third strike for this author.",
	}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"reason"}, verr.Fields())
}

func TestValidateActionRequest_CollectsAllViolations(t *testing.T) {
	// One pass, every problem: bad action + missing expected_version.
	req := &domain.ActionRequest{Action: "publish"}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.ElementsMatch(t, []string{"action", "expected_version"}, verr.Fields())
}

func TestValidateActionRequest_MissingExpectedVersion(t *testing.T) {
	req := &domain.ActionRequest{Action: domain.ActionApprove}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"expected_version"}, verr.Fields())
}

func TestValidateActionRequest_FreeTextCap(t *testing.T) {
	long := strings.Repeat("अ", maxFreeTextLen+1) // rune count, not bytes

	reject := &domain.ActionRequest{
		Action:          domain.ActionReject,
		ExpectedVersion: uintPtr(0),
		Reason:          "spam",
		Feedback:        long,
	}
	verr := ValidateActionRequest(reject)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"feedback"}, verr.Fields())

	// Exactly at the cap passes.
	reject.Feedback = strings.Repeat("अ", maxFreeTextLen)
	assert.Nil(t, ValidateActionRequest(reject))

	escalate := &domain.ActionRequest{
		Action:          domain.ActionEscalate,
		ExpectedVersion: uintPtr(0),
		Reason:          "legal_risk",
		Notes:           long,
	}
	verr = ValidateActionRequest(escalate)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"notes"}, verr.Fields())
}

func TestValidateActionRequest_WhitespaceOnlyFeedback(t *testing.T) {
	req := &domain.ActionRequest{
		Action:          domain.ActionReject,
		ExpectedVersion: uintPtr(0),
		Reason:          "duplicate",
		Feedback:        "   \n\t ",
	}

	verr := ValidateActionRequest(req)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"feedback"}, verr.Fields())
}

func TestValidateEnqueueRequest(t *testing.T) {
	valid := &domain.EnqueueRequest{
		PostingType: domain.PostingTypeStory,
		Title:       "Weekly satsang schedule",
		AuthorID:    "author-1",
	}
	assert.Nil(t, ValidateEnqueueRequest(valid))

	bad := &domain.EnqueueRequest{PostingType: "video", Title: "", AuthorID: ""}
	verr := ValidateEnqueueRequest(bad)
	assert.NotNil(t, verr)
	assert.ElementsMatch(t, []string{"title", "author_id", "posting_type"}, verr.Fields())

	tooLong := &domain.EnqueueRequest{
		PostingType: domain.PostingTypePhoto,
		Title:       strings.Repeat("x", 256),
		AuthorID:    "author-1",
	}
	verr = ValidateEnqueueRequest(tooLong)
	assert.NotNil(t, verr)
	assert.Equal(t, []string{"title"}, verr.Fields())
}
