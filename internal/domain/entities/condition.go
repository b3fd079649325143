package entities

// ConditionProfile is a static catalog entry describing one condition
// category: the keywords that detect it, the specializations and
// facility flags it requires, and its baseline severity. Profiles are
// defined once at process start and never mutated.
type ConditionProfile struct {
	Name            string
	Keywords        []string
	Specializations []string
	Facilities      []string
	BaseSeverity    Severity
}

// PrimarySpecialization returns the most important required
// specialization, the first entry of the list.
func (c *ConditionProfile) PrimarySpecialization() string {
	if len(c.Specializations) == 0 {
		return ""
	}
	return c.Specializations[0]
}
