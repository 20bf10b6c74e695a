package scoring

import "testing"

func TestMCQGrading(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "mcq", CorrectIndex: 2}

	idx := 2
	res, err := g.Grade(q, Answer{SelectedIndex: &idx})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !res.Correct {
		t.Fatalf("expected index 2 to be correct")
	}

	wrong := 0
	res, _ = g.Grade(q, Answer{SelectedIndex: &wrong})
	if res.Correct {
		t.Fatalf("expected index 0 to be incorrect")
	}

	res, _ = g.Grade(q, Answer{})
	if res.Correct {
		t.Fatalf("expected missing selection to be incorrect")
	}
}

func TestFillBlankGrading(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "fillblank", CorrectAnswer1: "2", CorrectAnswer2: "255"}

	cases := []struct {
		name    string
		a1, a2  string
		correct bool
	}{
		{"exact match", "2", "255", true},
		{"trimmed match", " 2 ", "255 ", true},
		{"first wrong", "3", "255", false},
		{"second wrong", "2", "254", false},
		{"no numeric coercion", "02", "255", false},
		{"both empty", "", "", false},
	}
	for _, tc := range cases {
		res, err := g.Grade(q, Answer{Answer1: tc.a1, Answer2: tc.a2})
		if err != nil {
			t.Fatalf("%s: grade: %v", tc.name, err)
		}
		if res.Correct != tc.correct {
			t.Errorf("%s: got correct=%v, want %v", tc.name, res.Correct, tc.correct)
		}
	}
}

func TestUnknownQuestionType(t *testing.T) {
	g := NewDefaultGrader()
	if _, err := g.Grade(Q{Type: "essay"}, Answer{}); err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}
