package types

import "testing"

func TestSupportsProficiency(t *testing.T) {
	cases := []struct {
		ctype CompetencyType
		want  bool
	}{
		{CompetencyTypeKnowledge, true},
		{CompetencyTypeSkill, true},
		{CompetencyTypeTechTool, true},
		{CompetencyTypeAbility, true},
		{CompetencyTypeValue, false},
		{CompetencyTypeBehaviour, false},
		{CompetencyTypeEnabler, false},
	}
	for _, tc := range cases {
		if got := tc.ctype.SupportsProficiency(); got != tc.want {
			t.Fatalf("%s.SupportsProficiency(): want=%v got=%v", tc.ctype, tc.want, got)
		}
	}
}

func TestParseCompetencyType(t *testing.T) {
	for _, known := range AllCompetencyTypes {
		got, err := ParseCompetencyType(string(known))
		if err != nil || got != known {
			t.Fatalf("ParseCompetencyType(%s): got=%s err=%v", known, got, err)
		}
	}
	if _, err := ParseCompetencyType("skill"); err == nil {
		t.Fatalf("lowercase type accepted; the enum is case sensitive")
	}
	if _, err := ParseCompetencyType("WIZARDRY"); err == nil {
		t.Fatalf("unknown type accepted")
	}
}

func TestParseProficiency(t *testing.T) {
	for _, known := range AllProficiencies {
		got, err := ParseProficiency(string(known))
		if err != nil || got != known {
			t.Fatalf("ParseProficiency(%s): got=%s err=%v", known, got, err)
		}
	}
	if _, err := ParseProficiency("GRANDMASTER"); err == nil {
		t.Fatalf("unknown proficiency accepted")
	}
}

func TestParseEntityKind(t *testing.T) {
	if kind, err := ParseEntityKind("person"); err != nil || kind != EntityKindPerson {
		t.Fatalf("ParseEntityKind(person): got=%s err=%v", kind, err)
	}
	if kind, err := ParseEntityKind("course"); err != nil || kind != EntityKindCourse {
		t.Fatalf("ParseEntityKind(course): got=%s err=%v", kind, err)
	}
	if _, err := ParseEntityKind("team"); err == nil {
		t.Fatalf("unknown entity kind accepted")
	}
}
