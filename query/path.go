package query

import (
	"strconv"
	"strings"
)

// Paths locate nodes for error reporting: dot-joined keys from the
// root, numeric segments for list indices. "goals.$.where.todos" is the
// "todos" condition inside the where block of the "goals" namespace.

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return childPath(parent, strconv.Itoa(i))
}

// reservedNamespaces are the $-prefixed system namespaces callers may
// query directly.
var reservedNamespaces = map[string]bool{
	"$users": true,
	"$files": true,
}

// checkNamespaceName validates a namespace or association key. Only
// top-level keys may name reserved system namespaces.
func checkNamespaceName(name string, topLevel bool) string {
	switch {
	case name == "":
		return "namespace name must not be empty"
	case strings.Contains(name, "."):
		return "namespace name must not contain dots"
	case strings.HasPrefix(name, "$") && (!topLevel || !reservedNamespaces[name]):
		return "names starting with $ are reserved for system namespaces"
	default:
		return ""
	}
}

// checkConditionKey validates a where-clause field key: a plain field
// name or a dotted association path with non-empty segments.
func checkConditionKey(key string) string {
	if key == "" {
		return "condition key must not be empty"
	}
	if strings.HasPrefix(key, "$") {
		return "operators belong inside a condition value, not in key position"
	}
	for _, seg := range strings.Split(key, ".") {
		if seg == "" {
			return "dotted path must not have empty segments"
		}
	}
	return ""
}
