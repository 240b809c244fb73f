package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

const (
	// MinReasonLength applies to QC rejections and manual overrides.
	MinReasonLength = 10
	MaxReasonLength = 2000
)

// QCStage is the quality-control gate being uploaded or decided.
type QCStage string

const (
	SampleStage QCStage = "sample"
	BulkStage   QCStage = "bulk"
)

func ParseQCStage(s string) (QCStage, error) {
	stage := QCStage(strings.ToLower(strings.TrimSpace(s)))
	if err := stage.Validate(); err != nil {
		return "", err
	}
	return stage, nil
}

func (s QCStage) Validate() error {
	if s != SampleStage && s != BulkStage {
		return errs.NewValueIsInvalidErrorWithCause("qc stage", fmt.Errorf("%q is not sample or bulk", string(s)))
	}
	return nil
}

func (s QCStage) String() string {
	return string(s)
}

// ProductionState is where the manufacturer works before uploading QC evidence, and
// where a rejection sends the order back to.
func (s QCStage) ProductionState() State {
	if s == BulkStage {
		return BulkInProduction
	}
	return SampleInProgress
}

// UploadedState is the state entered when QC evidence is uploaded.
func (s QCStage) UploadedState() State {
	if s == BulkStage {
		return BulkQCUploaded
	}
	return SampleQCUploaded
}

// ApprovedState is the state entered when the QC upload is approved.
func (s QCStage) ApprovedState() State {
	if s == BulkStage {
		return ReadyForDispatch
	}
	return SampleApproved
}

// EvidencePrecondition names the precondition an upload of this stage must satisfy.
func (s QCStage) EvidencePrecondition() Precondition {
	if s == BulkStage {
		return PreBulkQCEvidence
	}
	return PreSampleQCEvidence
}

// FeedbackRequired reports whether a rejection must carry structured feedback.
// Sample rejections may omit it, but when given it must be complete.
func (s QCStage) FeedbackRequired() bool {
	return s == BulkStage
}

// QCDecision is the review outcome of a QC upload.
type QCDecision string

const (
	QCPending            QCDecision = "pending"
	QCPendingBuyerReview QCDecision = "pending_buyer_review"
	QCApproved           QCDecision = "approved"
	QCRejected           QCDecision = "rejected"
)

func ParseQCDecision(s string) (QCDecision, error) {
	d := QCDecision(s)
	switch d {
	case QCPending, QCPendingBuyerReview, QCApproved, QCRejected:
		return d, nil
	case "":
		return QCPending, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("qc decision", fmt.Errorf("%q is not a known decision", s))
	}
}

// QCFeedback is the structured defect report attached to a rejection and used by
// downstream quality analytics.
type QCFeedback struct {
	DefectType  string `json:"defect_type"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	RequiredFix string `json:"required_fix"`
}

// NewQCFeedback requires all four fields to be non-blank.
func NewQCFeedback(defectType, severity, location, requiredFix string) (QCFeedback, error) {
	f := QCFeedback{
		DefectType:  strings.TrimSpace(defectType),
		Severity:    strings.TrimSpace(severity),
		Location:    strings.TrimSpace(location),
		RequiredFix: strings.TrimSpace(requiredFix),
	}
	if err := f.Validate(); err != nil {
		return QCFeedback{}, err
	}
	return f, nil
}

func (f QCFeedback) Validate() error {
	var problems []error
	if strings.TrimSpace(f.DefectType) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("Defect Type"))
	}
	if strings.TrimSpace(f.Severity) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("Severity"))
	}
	if strings.TrimSpace(f.Location) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("Location"))
	}
	if strings.TrimSpace(f.RequiredFix) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("Required fix"))
	}
	return errors.Join(problems...)
}

// QCRecord is the per-stage QC artifact of an order.
type QCRecord struct {
	Decision   QCDecision
	VideoRef   string
	Reason     string
	Feedback   *QCFeedback
	Rounds     int
	UploadedAt *time.Time
	DecidedBy  *kernel.UUID
	DecidedAt  *time.Time
}

// NewQCRecord returns the record of a stage nothing has been uploaded for yet.
func NewQCRecord() QCRecord {
	return QCRecord{Decision: QCPending}
}

// Validate checks the record's own invariants: a rejected record carries a valid
// reason, and any feedback attached is complete.
func (r QCRecord) Validate() error {
	if _, err := ParseQCDecision(string(r.Decision)); err != nil {
		return err
	}
	if r.Decision == QCRejected {
		if err := ValidateReason("qc rejection reason", r.Reason); err != nil {
			return err
		}
	}
	if r.Feedback != nil {
		return r.Feedback.Validate()
	}
	return nil
}

// ValidateReason enforces the minimum length shared by QC rejections and manual
// overrides. Whitespace does not count.
func ValidateReason(paramName, reason string) error {
	n := len([]rune(strings.TrimSpace(reason)))
	if n < MinReasonLength || n > MaxReasonLength {
		return errs.NewValueIsOutOfRangeErrorWithCause(
			paramName+" length", n, MinReasonLength, MaxReasonLength,
			fmt.Errorf("reason must be between %d and %d characters", MinReasonLength, MaxReasonLength),
		)
	}
	return nil
}
