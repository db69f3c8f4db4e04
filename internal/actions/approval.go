package actions

import (
	"context"
	"fmt"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// ApprovalName is the action name the engine sets when waiting for a decision.
const ApprovalName = "approval"

// ApprovedKey is the extra_data key the decision is recorded under.
const ApprovedKey = "approved"

// Saver persists a workflow object.
type Saver interface {
	Save(ctx context.Context, obj *domain.WorkflowObject) error
}

// Resumer enqueues continuation of a workflow object and returns the task id.
type Resumer interface {
	Resume(ctx context.Context, objectID int64, restartPoint domain.RestartPoint) (string, error)
}

// Approval resolves "approval" actions with an accept or reject decision.
type Approval struct {
	store Saver
	queue Resumer
}

func NewApproval(store Saver, queue Resumer) *Approval {
	return &Approval{store: store, queue: queue}
}

// Resolve records the decision in args["value"] ("accept" or "reject"),
// clears the pending action and resumes the object.
func (a *Approval) Resolve(ctx context.Context, obj *domain.WorkflowObject, args map[string]any) (any, error) {
	value, _ := args["value"].(string)
	var approved bool
	switch value {
	case "accept":
		approved = true
	case "reject":
		approved = false
	default:
		return nil, fmt.Errorf("%w: value must be accept or reject, got %q", ErrInvalidArgument, value)
	}

	if obj.ExtraData == nil {
		obj.ExtraData = map[string]any{}
	}
	obj.ExtraData[ApprovedKey] = approved
	obj.ClearAction()
	obj.Status = domain.StatusRunning
	if err := a.store.Save(ctx, obj); err != nil {
		return nil, fmt.Errorf("approval: save object %d: %w", obj.ID, err)
	}

	taskID, err := a.queue.Resume(ctx, obj.ID, domain.ContinueNext)
	if err != nil {
		return nil, fmt.Errorf("approval: resume object %d: %w", obj.ID, err)
	}
	return map[string]any{"approved": approved, "task_id": taskID}, nil
}

func (a *Approval) Render(obj *domain.WorkflowObject) map[string]any {
	msg := obj.Message()
	if msg == "" {
		msg = "Approve this record?"
	}
	return map[string]any{
		"name":    ApprovalName,
		"message": msg,
		"buttons": []map[string]any{
			{"label": "Accept", "value": "accept", "style": "primary"},
			{"label": "Reject", "value": "reject", "style": "danger"},
		},
	}
}

func (a *Approval) RenderMini(*domain.WorkflowObject) string {
	return "Awaiting approval"
}
