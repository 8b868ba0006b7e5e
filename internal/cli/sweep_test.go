package cli

import "testing"

func TestRunSweepRequiresInput(t *testing.T) {
	c := New(nil, LogInfo)
	if err := c.runSweep(""); err == nil {
		t.Error("runSweep with no input path should error")
	}
}

func TestRunSweepOnSimpleProblem(t *testing.T) {
	path := writeCSV(t, "id,lower,upper,size\na,0,10,4\nb,5,15,4\n")
	c := New(nil, LogInfo)
	if err := c.runSweep(path); err != nil {
		t.Fatalf("runSweep error: %v", err)
	}
}
