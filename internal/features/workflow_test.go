package features

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/cucumber/godog"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type workflowContext struct {
	store        *memoryStore
	handler      commands.ApplyTransitionCommandHandler
	orderID      kernel.UUID
	buyer        kernel.UUID
	manufacturer kernel.UUID
	err          error
}

func (w *workflowContext) reset() {
	w.store = newMemoryStore()
	w.handler = commands.NewApplyTransitionCommandHandler(w.store, discardNotifier{}, discardMetrics{},
		slog.New(slog.DiscardHandler), func() time.Time { return t0.Add(time.Hour) })
	w.buyer = kernel.NewUUID()
	w.manufacturer = kernel.NewUUID()
	w.err = nil
}

func (w *workflowContext) actor(role kernel.Role) kernel.Actor {
	var id kernel.UUID
	switch role {
	case kernel.RoleBuyer:
		id = w.buyer
	case kernel.RoleManufacturer:
		id = w.manufacturer
	default:
		id = kernel.NewUUID()
	}
	a, _ := kernel.NewActor(role, &id)
	return a
}

// anOrderInState stores an order whose attributes are consistent with having
// reached state along the normal path.
func (w *workflowContext) anOrderInState(name string) error {
	state, err := order.ParseState(name)
	if err != nil {
		return err
	}
	o, err := order.NewOrder(kernel.NewUUID(), w.buyer, "Denim jackets", 50, "s3://designs/jacket.pdf", t0)
	if err != nil {
		return err
	}

	s := o.Snapshot()
	s.State = state
	if state >= order.ManufacturerAssigned {
		s.ManufacturerID = &w.manufacturer
	}
	if state >= order.PaymentRequested {
		s.PaymentLink = "https://pay.example.com/inv/1001"
	}
	if state >= order.PaymentConfirmed {
		s.PaymentReceived = true
		s.SpecsLocked = true
	}
	if state >= order.BulkQCUploaded {
		uploaded := t0
		s.BulkQC = order.QCRecord{Decision: order.QCPendingBuyerReview, VideoRef: "s3://qc/bulk.mp4", Rounds: 1, UploadedAt: &uploaded}
	}
	s.Version = 1

	restored, err := order.RestoreOrder(s)
	if err != nil {
		return err
	}
	w.store.orders[restored.ID()] = restored.Snapshot()
	w.orderID = restored.ID()
	return nil
}

func (w *workflowContext) handle(build func() (commands.ApplyTransitionCommand, error)) error {
	cmd, err := build()
	if err != nil {
		w.err = err
		return nil
	}
	_, w.err = w.handler.Handle(context.Background(), cmd)
	return nil
}

func (w *workflowContext) theManufacturerRequestsTheOrderState(name string) error {
	return w.handle(func() (commands.ApplyTransitionCommand, error) {
		target, err := order.ParseState(name)
		if err != nil {
			return commands.ApplyTransitionCommand{}, err
		}
		return commands.NewApplyTransitionCommand(w.orderID, w.actor(kernel.RoleManufacturer), &target, nil, order.Patch{})
	})
}

func (w *workflowContext) theAdminApprovesTheOrderWithPaymentLink(link string) error {
	return w.handle(func() (commands.ApplyTransitionCommand, error) {
		cmd, err := commands.NewApproveOrderCommand(w.orderID, w.actor(kernel.RoleAdmin), link)
		if err != nil {
			return commands.ApplyTransitionCommand{}, err
		}
		return cmd.Transition()
	})
}

func (w *workflowContext) theAdminMarksPaymentReceived() error {
	return w.handle(func() (commands.ApplyTransitionCommand, error) {
		cmd, err := commands.NewMarkPaymentReceivedCommand(w.orderID, w.actor(kernel.RoleAdmin))
		if err != nil {
			return commands.ApplyTransitionCommand{}, err
		}
		return cmd.Transition()
	})
}

func (w *workflowContext) theManufacturerMarksTheOrderPackedWithoutAPackagingVideo() error {
	return w.handle(func() (commands.ApplyTransitionCommand, error) {
		cmd, err := commands.NewMarkPackedCommand(w.orderID, w.actor(kernel.RoleManufacturer), "")
		if err != nil {
			return commands.ApplyTransitionCommand{}, err
		}
		return cmd.Transition()
	})
}

func (w *workflowContext) theBuyerRejectsBulkQCWithReason(reason string) error {
	return w.handle(func() (commands.ApplyTransitionCommand, error) {
		feedback, err := order.NewQCFeedback("stitching", "major", "side seams", "restitch with double thread")
		if err != nil {
			return commands.ApplyTransitionCommand{}, err
		}
		cmd, err := commands.NewRejectQCCommand(w.orderID, w.actor(kernel.RoleBuyer), order.BulkStage, reason, &feedback)
		if err != nil {
			return commands.ApplyTransitionCommand{}, err
		}
		return cmd.Transition()
	})
}

func (w *workflowContext) theAttemptIsDeniedWith(kind string) error {
	if w.err == nil {
		return fmt.Errorf("expected %s, the attempt succeeded", kind)
	}
	if got := errs.KindOf(w.err); string(got) != kind {
		return fmt.Errorf("expected %s, got %s: %w", kind, got, w.err)
	}
	w.err = nil
	return nil
}

func (w *workflowContext) stored() (*order.Order, error) {
	if w.err != nil {
		return nil, fmt.Errorf("unexpected error: %w", w.err)
	}
	return w.store.order(w.orderID)
}

func (w *workflowContext) theOrderStateIs(name string) error {
	o, err := w.stored()
	if err != nil {
		return err
	}
	if o.State().String() != name {
		return fmt.Errorf("expected order state %s, got %s", name, o.State())
	}
	return nil
}

func (w *workflowContext) theDeliveryStateIs(name string) error {
	o, err := w.stored()
	if err != nil {
		return err
	}
	if o.DeliveryState().String() != name {
		return fmt.Errorf("expected delivery state %s, got %s", name, o.DeliveryState())
	}
	return nil
}

func (w *workflowContext) paymentIsRecordedAsReceived() error {
	o, err := w.stored()
	if err != nil {
		return err
	}
	if !o.PaymentReceived() {
		return fmt.Errorf("payment is not recorded as received")
	}
	return nil
}

func (w *workflowContext) aDeniedAuditRecordIsWritten() error {
	for _, e := range w.store.events {
		if e.Outcome == audit.OutcomeDenied && e.OrderID.IsEqual(w.orderID) {
			return nil
		}
	}
	return fmt.Errorf("no denied audit record among %d events", len(w.store.events))
}

func (w *workflowContext) noAuditRecordIsWritten() error {
	if n := len(w.store.events); n != 0 {
		return fmt.Errorf("expected no audit records, got %d", n)
	}
	return nil
}

func (w *workflowContext) exactlyOneAuditRecordMovesTheOrderTo(name string) error {
	n := 0
	for _, e := range w.store.events {
		if e.Machine == order.OrderMachine && e.To == name {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("expected one audit record to %s, got %d", name, n)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	w := &workflowContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		w.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an order in state "([^"]*)"$`, w.anOrderInState)

	// When steps
	ctx.Step(`^the manufacturer requests the order state "([^"]*)"$`, w.theManufacturerRequestsTheOrderState)
	ctx.Step(`^the admin approves the order with payment link "([^"]*)"$`, w.theAdminApprovesTheOrderWithPaymentLink)
	ctx.Step(`^the admin marks payment received$`, w.theAdminMarksPaymentReceived)
	ctx.Step(`^the manufacturer marks the order packed without a packaging video$`, w.theManufacturerMarksTheOrderPackedWithoutAPackagingVideo)
	ctx.Step(`^the buyer rejects bulk QC with reason "([^"]*)"$`, w.theBuyerRejectsBulkQCWithReason)

	// Then steps
	ctx.Step(`^the attempt is denied with "([^"]*)"$`, w.theAttemptIsDeniedWith)
	ctx.Step(`^the order state is "([^"]*)"$`, w.theOrderStateIs)
	ctx.Step(`^the delivery state is "([^"]*)"$`, w.theDeliveryStateIs)
	ctx.Step(`^payment is recorded as received$`, w.paymentIsRecordedAsReceived)
	ctx.Step(`^a denied audit record is written$`, w.aDeniedAuditRecordIsWritten)
	ctx.Step(`^no audit record is written$`, w.noAuditRecordIsWritten)
	ctx.Step(`^exactly one audit record moves the order to "([^"]*)"$`, w.exactlyOneAuditRecordMovesTheOrderTo)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"workflow.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
