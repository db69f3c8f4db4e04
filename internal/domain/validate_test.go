package domain

import "testing"

func TestValidateWorkflowObject(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		obj     WorkflowObject
		wantErr bool
	}{
		{name: "valid", obj: WorkflowObject{Status: StatusHalted, CallbackPos: []int{0, 1}}},
		{name: "bad status", obj: WorkflowObject{Status: "PAUSED"}, wantErr: true},
		{name: "negative user", obj: WorkflowObject{Status: StatusRunning, IDUser: -1}, wantErr: true},
		{name: "negative position", obj: WorkflowObject{Status: StatusRunning, CallbackPos: []int{0, -1}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateWorkflowObject(tt.obj)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorkflowObject() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
