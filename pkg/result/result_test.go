package result

import "testing"

func TestOptionPresence(t *testing.T) {
	some := Some(7)
	if v, ok := some.Get(); !ok || v != 7 {
		t.Fatalf("Some(7).Get() = (%d, %t), want (7, true)", v, ok)
	}

	none := None[int]()
	if _, ok := none.Get(); ok {
		t.Fatal("None().Get() reported a present value")
	}

	var zero Option[string]
	if zero.Present() {
		t.Fatal("zero-value Option must be absent")
	}
}

func TestResult2Constructors(t *testing.T) {
	both := Both2("x", 1)
	if !both.A.Present() || !both.B.Present() {
		t.Fatal("Both2 must mark both fields present")
	}

	first := First2[string, int]("x")
	if !first.A.Present() || first.B.Present() {
		t.Fatal("First2 must mark only the first field present")
	}

	second := Second2[string, int](1)
	if second.A.Present() || !second.B.Present() {
		t.Fatal("Second2 must mark only the second field present")
	}

	// All-absent is legal and means "emit nothing this round".
	none := None2[string, int]()
	if none.A.Present() || none.B.Present() {
		t.Fatal("None2 must mark no fields present")
	}
}

func TestResult3Constructors(t *testing.T) {
	all := All3("x", 1, true)
	if !all.A.Present() || !all.B.Present() || !all.C.Present() {
		t.Fatal("All3 must mark all fields present")
	}

	third := Third3[string, int](true)
	if third.A.Present() || third.B.Present() || !third.C.Present() {
		t.Fatal("Third3 must mark only the third field present")
	}

	none := None3[string, int, bool]()
	if none.A.Present() || none.B.Present() || none.C.Present() {
		t.Fatal("None3 must mark no fields present")
	}
}
