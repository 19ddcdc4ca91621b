package skeleton

import (
	"fmt"
	"strings"

	"eq-wld-decoder/internal/wld"
)

const (
	// RootName names the bone whose generic name strips to nothing.
	RootName = "ROOT"

	skeletonSuffix = "_HS_DEF"
	dagSuffix      = "_DAG"
)

// Naming is a rule for deriving a generic bone name from a DAG name by
// stripping the skeleton's actor tag.
type Naming int

const (
	// PrefixNaming removes the tag from the front of the name and the DAG
	// marker from its end.
	PrefixNaming Naming = iota
	// ReplaceNaming removes every occurrence of the tag and of the DAG
	// marker.
	ReplaceNaming
)

// NamingFor returns the naming rule used by files of version v.
func NamingFor(v wld.Version) Naming {
	if v == wld.VersionOld {
		return ReplaceNaming
	}
	return PrefixNaming
}

// ParseNaming parses the String form of a Naming.
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(s) {
	case "prefix":
		return PrefixNaming, nil
	case "replace":
		return ReplaceNaming, nil
	}
	return 0, fmt.Errorf("skeleton: unknown naming %q", s)
}

func (n Naming) String() string {
	switch n {
	case PrefixNaming:
		return "prefix"
	case ReplaceNaming:
		return "replace"
	}
	return fmt.Sprintf("Naming(%d)", int(n))
}

// BoneName derives the generic name of dag under actor tag.
func (n Naming) BoneName(tag, dag string) string {
	var name string
	switch n {
	case ReplaceNaming:
		if tag != "" {
			dag = strings.ReplaceAll(dag, tag, "")
		}
		name = strings.ReplaceAll(dag, dagSuffix, "")
	default:
		name = strings.TrimSuffix(strings.TrimPrefix(dag, tag), dagSuffix)
	}
	if name == "" {
		return RootName
	}
	return name
}

// Tag returns the actor tag of a skeleton named name.
func Tag(name string) string {
	return strings.TrimSuffix(name, skeletonSuffix)
}
