package enums

import "fmt"

// Occasion is the reason a collect is raising money.
type Occasion string

const (
	OccasionBirthday Occasion = "birthday"
	OccasionWedding  Occasion = "wedding"
	OccasionCharity  Occasion = "charity"
	OccasionTravel   Occasion = "travel"
	OccasionProject  Occasion = "project"
	OccasionOther    Occasion = "other"
)

var occasionLabels = map[Occasion]string{
	OccasionBirthday: "Birthday",
	OccasionWedding:  "Wedding",
	OccasionCharity:  "Charity",
	OccasionTravel:   "Travel",
	OccasionProject:  "Project",
	OccasionOther:    "Other",
}

func (o Occasion) String() string {
	return string(o)
}

func (o Occasion) IsValid() bool {
	_, ok := occasionLabels[o]
	return ok
}

// Label returns the display name of the occasion.
func (o Occasion) Label() string {
	if label, ok := occasionLabels[o]; ok {
		return label
	}
	return string(o)
}

func ParseOccasion(value string) (Occasion, error) {
	o := Occasion(value)
	if !o.IsValid() {
		return "", fmt.Errorf("invalid occasion %q", value)
	}
	return o, nil
}
