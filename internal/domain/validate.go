package domain

import "fmt"

// ValidateWorkflowObject checks required fields on a WorkflowObject.
func ValidateWorkflowObject(o WorkflowObject) error {
	if !o.Status.Valid() {
		return fmt.Errorf("invalid status: %q", o.Status)
	}
	if o.IDUser < 0 {
		return fmt.Errorf("id_user must not be negative, got %d", o.IDUser)
	}
	for i, p := range o.CallbackPos {
		if p < 0 {
			return fmt.Errorf("callback_pos[%d] must not be negative, got %d", i, p)
		}
	}
	return nil
}
