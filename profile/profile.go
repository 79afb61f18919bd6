// Package profile normalizes raw LinkedIn profile documents into a stable,
// provider-independent record.
//
// Every field of Profile is always populated: absent or non-string source
// values fall back to empty strings and empty lists, so consumers never have
// to branch on field existence. The verbatim response body and the parsed
// document are carried alongside the normalized fields for applications that
// need provider-specific data.
package profile

import (
	"encoding/json"
	"fmt"
)

// ProviderName identifies the issuing provider in normalized profiles.
const ProviderName = "linkedin"

// Entry holds a single email address or photo URL.
type Entry struct {
	Value string `json:"value"`
}

// Name holds the decomposed user name.
type Name struct {
	FamilyName string `json:"familyName"`
	GivenName  string `json:"givenName"`
}

// Profile is the normalized cross-provider user record.
type Profile struct {
	Provider    string  `json:"provider"`
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Name        Name    `json:"name"`
	Emails      []Entry `json:"emails"`
	Photos      []Entry `json:"photos"`

	// Raw is the untouched response body; JSON is the parsed document.
	Raw  []byte         `json:"-"`
	JSON map[string]any `json:"-"`
}

// ParseError indicates the provider returned a body that is not valid JSON.
// The fetch itself succeeded at the transport level; only normalization
// failed.
type ParseError struct {
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed profile payload: %v", e.Err)
}

// Unwrap returns the underlying JSON decoding error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Normalize parses raw as JSON and builds the normalized profile. A body that
// fails to parse returns a *ParseError and no partial profile.
func Normalize(raw []byte) (*Profile, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	p := &Profile{
		Provider:    ProviderName,
		ID:          stringField(doc, "id"),
		DisplayName: stringField(doc, "formattedName"),
		Name: Name{
			FamilyName: stringField(doc, "lastName"),
			GivenName:  stringField(doc, "firstName"),
		},
		Emails: []Entry{},
		// Photos always carries one entry; the value may be empty.
		Photos: []Entry{{Value: stringField(doc, "pictureUrl")}},
		Raw:    raw,
		JSON:   doc,
	}

	if email := stringField(doc, "emailAddress"); email != "" {
		p.Emails = append(p.Emails, Entry{Value: email})
	}

	return p, nil
}

// stringField returns the string value for key, or "" when the key is absent
// or holds a non-string value.
func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
