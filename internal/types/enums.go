package types

import "fmt"

// CompetencyType is the closed set of competency categories.
type CompetencyType string

const (
  CompetencyTypeKnowledge CompetencyType = "KNOWLEDGE"
  CompetencyTypeSkill     CompetencyType = "SKILL"
  CompetencyTypeTechTool  CompetencyType = "TECH_TOOL"
  CompetencyTypeAbility   CompetencyType = "ABILITY"
  CompetencyTypeValue     CompetencyType = "VALUE"
  CompetencyTypeBehaviour CompetencyType = "BEHAVIOUR"
  CompetencyTypeEnabler   CompetencyType = "ENABLER"
)

var AllCompetencyTypes = []CompetencyType{
  CompetencyTypeKnowledge,
  CompetencyTypeSkill,
  CompetencyTypeTechTool,
  CompetencyTypeAbility,
  CompetencyTypeValue,
  CompetencyTypeBehaviour,
  CompetencyTypeEnabler,
}

func (t CompetencyType) Valid() bool {
  for _, known := range AllCompetencyTypes {
    if t == known {
      return true
    }
  }
  return false
}

// SupportsProficiency reports whether a proficiency level is meaningful for
// this competency type. Values, behaviours and enablers are held or not held;
// they have no skill ladder.
func (t CompetencyType) SupportsProficiency() bool {
  switch t {
  case CompetencyTypeKnowledge, CompetencyTypeSkill, CompetencyTypeTechTool, CompetencyTypeAbility:
    return true
  }
  return false
}

func ParseCompetencyType(s string) (CompetencyType, error) {
  t := CompetencyType(s)
  if !t.Valid() {
    return "", fmt.Errorf("unknown competency type %q", s)
  }
  return t, nil
}

// Proficiency is the closed set of proficiency levels on an entity link.
type Proficiency string

const (
  ProficiencyBeginner     Proficiency = "BEGINNER"
  ProficiencyIntermediate Proficiency = "INTERMEDIATE"
  ProficiencyAdvanced     Proficiency = "ADVANCED"
  ProficiencyExpert       Proficiency = "EXPERT"
)

var AllProficiencies = []Proficiency{
  ProficiencyBeginner,
  ProficiencyIntermediate,
  ProficiencyAdvanced,
  ProficiencyExpert,
}

func (p Proficiency) Valid() bool {
  for _, known := range AllProficiencies {
    if p == known {
      return true
    }
  }
  return false
}

func ParseProficiency(s string) (Proficiency, error) {
  p := Proficiency(s)
  if !p.Valid() {
    return "", fmt.Errorf("unknown proficiency %q", s)
  }
  return p, nil
}
