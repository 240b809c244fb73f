package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"orderflow/cmd"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/audit"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errUnreachable = errors.New("database must not be opened")

func failingConnector(t *testing.T) connector {
	return func(cmd.Config) (*gorm.DB, error) {
		t.Error("connector called")
		return nil, errUnreachable
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp(failingConnector(t))
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"orderctl"}, args...))
	return out.String(), err
}

func TestOverride_RejectsBadInputBeforeConnecting(t *testing.T) {
	orderID := kernel.NewUUID().String()
	adminID := kernel.NewUUID().String()

	tests := []struct {
		name string
		args []string
	}{
		{"bad order id", []string{"override", "--order", "nope", "--admin", adminID, "--state", "DISPATCHED", "--reason", "courier confirmed by phone"}},
		{"unknown state", []string{"override", "--order", orderID, "--admin", adminID, "--state", "SHIPPED", "--reason", "courier confirmed by phone"}},
		{"unknown delivery state", []string{"override", "--order", orderID, "--admin", adminID, "--delivery-state", "LOST", "--reason", "courier confirmed by phone"}},
		{"no target", []string{"override", "--order", orderID, "--admin", adminID, "--reason", "courier confirmed by phone"}},
		{"missing reason flag", []string{"override", "--order", orderID, "--admin", adminID, "--state", "DISPATCHED"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When
			_, err := runApp(t, tt.args...)

			// Then
			require.Error(t, err)
			assert.NotErrorIs(t, err, errUnreachable)
		})
	}
}

func TestTrail_RejectsBadOrderIDBeforeConnecting(t *testing.T) {
	// When
	_, err := runApp(t, "trail", "not-a-uuid")

	// Then
	require.ErrorContains(t, err, "order id")
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	// When
	_, err := runApp(t, "migrate", "down", "--steps", "0")

	// Then
	require.ErrorContains(t, err, "--steps")
}

func TestPrintTrail(t *testing.T) {
	// Given
	orderID := kernel.NewUUID()
	adminID := kernel.NewUUID()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	trail := queries.GetAuditTrailQueryResponse{
		Events: []audit.Event{
			{Seq: 1, OrderID: orderID, ActorRole: kernel.RoleBuyer, Outcome: audit.OutcomeTransition,
				Machine: order.OrderMachine, To: "DRAFT", CreatedAt: at},
			{Seq: 2, OrderID: orderID, ActorRole: kernel.RoleAdmin, ActorID: &adminID, Outcome: audit.OutcomeManualOverride,
				Machine: order.OrderMachine, From: "DRAFT", To: "SUBMITTED", Reason: "buyer emailed the design", CreatedAt: at},
		},
		Replay: &audit.ReplayResult{State: order.Submitted, DeliveryState: order.NotStarted, Transitions: 1, Overrides: 1},
	}
	var out bytes.Buffer

	// When
	err := printTrail(&out, trail)

	// Then
	require.NoError(t, err)
	assert.Contains(t, out.String(), "admin:"+adminID.String())
	assert.Contains(t, out.String(), "buyer emailed the design")
	assert.Contains(t, out.String(), "replays to SUBMITTED / NOT_STARTED (1 transitions, 1 overrides, 0 denied)")
}

func TestPrintTrail_ReplayFailure(t *testing.T) {
	// Given
	trail := queries.GetAuditTrailQueryResponse{ReplayErr: errors.New("gap at seq 3")}
	var out bytes.Buffer

	// When
	err := printTrail(&out, trail)

	// Then
	require.NoError(t, err)
	assert.Contains(t, out.String(), "replay failed: gap at seq 3")
}
