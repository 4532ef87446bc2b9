package intake

import (
	"testing"

	"github.com/skupfast/skupbot/core/telegram/state"
)

func TestStagesOrder(t *testing.T) {
	want := []state.State{StageName, StageQuantity, StageURL, StageUnpacked, StageCity}
	got := Stages()
	if len(got) != len(want) {
		t.Fatalf("Stages() returned %d stages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAdvanceChain(t *testing.T) {
	stage := StageName
	fields := map[string]bool{}
	for steps := 0; ; steps++ {
		if steps > len(transitions) {
			t.Fatal("transition chain does not terminate")
		}
		tr, ok := Advance(stage)
		if !ok {
			t.Fatalf("no transition for stage %q", stage)
		}
		if tr.Final {
			if stage != StageCity {
				t.Errorf("final stage = %q, want %q", stage, StageCity)
			}
			break
		}
		if tr.Field == "" {
			t.Errorf("stage %q has no field", stage)
		}
		if fields[tr.Field] {
			t.Errorf("field %q assigned twice", tr.Field)
		}
		fields[tr.Field] = true
		if tr.Prompt.Text == "" {
			t.Errorf("stage %q advances without a prompt", stage)
		}
		stage = tr.Next
	}
	if len(fields) != 4 {
		t.Errorf("collected %d fields, want 4", len(fields))
	}
}

func TestAdvanceUnknownStage(t *testing.T) {
	if _, ok := Advance(state.State("form_unknown")); ok {
		t.Error("Advance accepted an unknown stage")
	}
}

func TestKeyboardHints(t *testing.T) {
	tr, _ := Advance(StageURL)
	if tr.Prompt.Keyboard != KeyboardYesNo {
		t.Errorf("unpacked prompt keyboard = %v, want yes/no", tr.Prompt.Keyboard)
	}
	tr, _ = Advance(StageUnpacked)
	if tr.Prompt.Keyboard != KeyboardRemove {
		t.Errorf("city prompt keyboard = %v, want remove", tr.Prompt.Keyboard)
	}
}
