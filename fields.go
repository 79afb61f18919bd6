package linkedintoken

import "strings"

// scopeFields maps each known permission scope to the ordered list of profile
// fields it unlocks. Scopes the table does not know are ignored rather than
// rejected: LinkedIn grows its scope vocabulary independently of this library,
// and failing on an unrecognized scope would break callers for no benefit.
var scopeFields = map[string][]string{
	"r_basicprofile": {
		"id",
		"first-name",
		"last-name",
		"picture-url",
		"picture-urls::(original)",
		"formatted-name",
		"maiden-name",
		"phonetic-first-name",
		"phonetic-last-name",
		"headline",
		"location:(name,country:(code))",
		"industry",
		"distance",
		"relation-to-viewer:(distance,connections)",
		"current-share",
		"num-connections",
		"num-connections-capped",
		"summary",
		"specialties",
		"positions",
		"site-standard-profile-request",
		"api-standard-profile-request",
		"public-profile-url",
	},
	"r_emailaddress": {
		"email-address",
	},
}

// MapScopesToFields translates requested permission scopes into the
// comma-joined field selector used in the profile request URL. Explicit
// fields, when given, come before any scope-derived fields. Duplicates are
// removed preserving first occurrence. The function is pure and safe to call
// without a constructed Strategy.
func MapScopesToFields(scopes, explicitFields []string) string {
	fields := make([]string, 0, len(explicitFields)+len(scopeFields["r_basicprofile"]))
	seen := make(map[string]struct{}, cap(fields))

	add := func(field string) {
		if _, ok := seen[field]; ok {
			return
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}

	for _, field := range explicitFields {
		add(field)
	}
	for _, scope := range scopes {
		for _, field := range scopeFields[scope] {
			add(field)
		}
	}

	return strings.Join(fields, ",")
}
