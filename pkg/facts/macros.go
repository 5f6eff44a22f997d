package facts

import "strings"

// ExpandMacros substitutes the {{char}} and {{user}} macros in a plain
// fact with the entity's name and the triggering user's name.
func ExpandMacros(fact, charName, userName string) string {
	if !strings.Contains(fact, "{{") {
		return fact
	}
	r := strings.NewReplacer(
		"{{char}}", charName,
		"{{user}}", userName,
	)
	return r.Replace(fact)
}
