package bench

import "strings"

// SanitizeName makes a model or judge name safe for use as a
// directory name.
func SanitizeName(name string) string {
	return strings.NewReplacer("/", "__", ":", "_", " ", "_").Replace(name)
}
