package node

import "testing"

func TestModeString(t *testing.T) {
	cases := map[DataStoreMode]string{
		ModeCreateOrAppend:  "create-or-append",
		ModeMustCreate:      "must-create",
		ModeMustReplace:     "must-replace",
		ModeCreateOrReplace: "create-or-replace",
	}
	for mode, want := range cases {
		if got := modeString(mode); got != want {
			t.Errorf("modeString(%d) = %q, want %q", mode, got, want)
		}
	}
}
