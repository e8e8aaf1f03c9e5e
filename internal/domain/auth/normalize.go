package auth

import "strings"

// normalizePhone strips the separators people type into phone fields.
func normalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}
