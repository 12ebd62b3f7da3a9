package testparser

import "testing"

func TestVerdict_String(t *testing.T) {
	t.Parallel()
	if got := Pass.String(); got != "pass" {
		t.Errorf("Pass.String() = %q", got)
	}
	if got := Fail.String(); got != "fail" {
		t.Errorf("Fail.String() = %q", got)
	}
	text, err := Fail.MarshalText()
	if err != nil || string(text) != "fail" {
		t.Errorf("Fail.MarshalText() = %q, %v", text, err)
	}
}

func TestOutcome_Failed(t *testing.T) {
	t.Parallel()
	if (Outcome{Verdict: Pass}).Failed() {
		t.Error("Pass outcome reported as failed")
	}
	if !(Outcome{Verdict: Fail}).Failed() {
		t.Error("Fail outcome not reported as failed")
	}
}
