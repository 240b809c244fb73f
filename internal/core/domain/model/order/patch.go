package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Patch is the attribute change that accompanies a transition, or stands alone in an
// attribute-only update. Nil pointers and false flags leave the stored value untouched.
type Patch struct {
	ManufacturerID      *kernel.UUID
	PaymentLink         *string
	ConfirmPayment      bool
	DesignFileRef       *string
	PackagingVideoRef   *string
	CourierName         *string
	TrackingID          *string
	QCVideo             *QCVideo
	QCReview            *QCReview
	LockSpecs           bool
	RejectionNotes      *string
	ClearRejectionNotes bool
}

// QCVideo is the evidence a manufacturer uploads for a QC stage.
type QCVideo struct {
	Stage QCStage
	Ref   string
}

// QCReview carries the reason and structured feedback of a QC rejection.
type QCReview struct {
	Reason   string
	Feedback *QCFeedback
}

// Patch field names, as recorded in audit events and used for authorization.
const (
	FieldManufacturerID    = "manufacturer_id"
	FieldPaymentLink       = "payment_link"
	FieldPaymentReceived   = "payment_received"
	FieldDesignFileRef     = "design_file_ref"
	FieldPackagingVideoRef = "packaging_video_ref"
	FieldCourierName       = "courier_name"
	FieldTrackingID        = "tracking_id"
	FieldQCVideo           = "qc_video"
	FieldQCReview          = "qc_review"
	FieldSpecsLocked       = "specs_locked"
	FieldRejectionNotes    = "rejection_notes"
)

var fieldRoles = map[string][]kernel.Role{
	FieldManufacturerID:    {kernel.RoleAdmin},
	FieldPaymentLink:       {kernel.RoleAdmin},
	FieldPaymentReceived:   {kernel.RoleAdmin, kernel.RoleSystem},
	FieldDesignFileRef:     {kernel.RoleBuyer},
	FieldPackagingVideoRef: {kernel.RoleManufacturer},
	FieldCourierName:       {kernel.RoleAdmin, kernel.RoleSystem},
	FieldTrackingID:        {kernel.RoleAdmin, kernel.RoleSystem},
	FieldQCVideo:           {kernel.RoleManufacturer},
	FieldQCReview:          {kernel.RoleBuyer, kernel.RoleAdmin},
	FieldSpecsLocked:       {kernel.RoleAdmin},
	FieldRejectionNotes:    {kernel.RoleAdmin},
}

// FieldRoles returns the roles allowed to write a patch field.
func FieldRoles(field string) []kernel.Role {
	return fieldRoles[field]
}

// IsEmpty reports whether the patch touches nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields lists the patch fields that are set, in a stable order.
func (p Patch) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.ManufacturerID != nil, FieldManufacturerID)
	add(p.PaymentLink != nil, FieldPaymentLink)
	add(p.ConfirmPayment, FieldPaymentReceived)
	add(p.DesignFileRef != nil, FieldDesignFileRef)
	add(p.PackagingVideoRef != nil, FieldPackagingVideoRef)
	add(p.CourierName != nil, FieldCourierName)
	add(p.TrackingID != nil, FieldTrackingID)
	add(p.QCVideo != nil, FieldQCVideo)
	add(p.QCReview != nil, FieldQCReview)
	add(p.LockSpecs, FieldSpecsLocked)
	add(p.RejectionNotes != nil || p.ClearRejectionNotes, FieldRejectionNotes)
	return fields
}

// Validate checks the shape of each set field. Business preconditions, such as the
// minimum rejection reason length, are checked against the order separately.
func (p Patch) Validate() error {
	var problems []error
	if p.ManufacturerID != nil {
		problems = append(problems, p.ManufacturerID.Validate())
	}
	if p.PaymentLink != nil {
		problems = append(problems, ValidatePaymentLink(*p.PaymentLink))
	}
	problems = append(problems,
		requireText("design file reference", p.DesignFileRef),
		requireText("packaging video reference", p.PackagingVideoRef),
		requireText("courier name", p.CourierName),
		requireText("tracking id", p.TrackingID),
	)
	if p.QCVideo != nil {
		problems = append(problems, p.QCVideo.Stage.Validate())
		if strings.TrimSpace(p.QCVideo.Ref) == "" {
			problems = append(problems, errs.NewValueIsRequiredError("qc video reference"))
		}
	}
	if p.QCReview != nil && p.QCReview.Feedback != nil {
		problems = append(problems, p.QCReview.Feedback.Validate())
	}
	if p.RejectionNotes != nil && p.ClearRejectionNotes {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"rejection notes", errors.New("notes cannot be set and cleared at once")))
	}
	return errors.Join(problems...)
}

func requireText(paramName string, v *string) error {
	if v != nil && strings.TrimSpace(*v) == "" {
		return errs.NewValueIsRequiredError(paramName)
	}
	return nil
}

// ValidatePaymentLink accepts absolute http and https URLs with a host.
func ValidatePaymentLink(link string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payment link", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment link", fmt.Errorf("%q is not an absolute http(s) URL", link))
	}
	return nil
}
