package internal

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

const (
	// Coordinate bounds
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0

	// User agent constraints
	maxUserAgentLength = 256

	// Path segment constraints
	maxPathSegmentLength = 256
)

// Scopes lists the permissions an application may request on the login URL.
var Scopes = []string{"basic", "likes", "comments", "relationships", "public_content", "follower_list"}

// RelationshipActions lists the actions accepted by the relationship endpoint.
var RelationshipActions = []string{"follow", "unfollow", "approve", "ignore"}

// Validator provides validation operations for Instagram API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateScopes checks that every requested scope is one Instagram knows.
func (v *Validator) ValidateScopes(scopes []string) error {
	if len(scopes) == 0 {
		return &pkgerrs.ArgumentError{Argument: "scopes", Message: "at least one scope is required"}
	}
	for _, scope := range scopes {
		if !slices.Contains(Scopes, scope) {
			return &pkgerrs.ArgumentError{
				Argument: "scope",
				Value:    scope,
				Message:  "must be one of " + strings.Join(Scopes, ", "),
			}
		}
	}
	return nil
}

// ValidateAction checks a relationship action.
func (v *Validator) ValidateAction(action string) error {
	if !slices.Contains(RelationshipActions, action) {
		return &pkgerrs.ArgumentError{
			Argument: "action",
			Value:    action,
			Message:  "must be one of " + strings.Join(RelationshipActions, ", "),
		}
	}
	return nil
}

// ValidatePathSegment checks a value that is interpolated into a resource path,
// such as a user ID, media ID, tag name or shortcode.
func (v *Validator) ValidatePathSegment(name, value string) error {
	if value == "" {
		return &pkgerrs.ArgumentError{Argument: name, Message: "cannot be empty"}
	}
	if len(value) > maxPathSegmentLength {
		return &pkgerrs.ArgumentError{Argument: name, Message: fmt.Sprintf("cannot exceed %d characters", maxPathSegmentLength)}
	}
	if value == "." || value == ".." {
		return &pkgerrs.ArgumentError{Argument: name, Value: value, Message: "is not a valid path segment"}
	}
	if strings.ContainsAny(value, "/?#%\\ ") || strings.ContainsFunc(value, unicode.IsControl) {
		return &pkgerrs.ArgumentError{Argument: name, Value: value, Message: "contains characters not allowed in a resource path"}
	}
	return nil
}

// ValidateCoordinates checks a latitude/longitude pair.
func (v *Validator) ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < minLatitude || lat > maxLatitude {
		return &pkgerrs.ArgumentError{Argument: "lat", Value: FormatFloat(lat), Message: "must be between -90 and 90"}
	}
	if math.IsNaN(lng) || lng < minLongitude || lng > maxLongitude {
		return &pkgerrs.ArgumentError{Argument: "lng", Value: FormatFloat(lng), Message: "must be between -180 and 180"}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	// User-Agent cannot be empty (should have been set to default before this check)
	if len(ua) == 0 {
		return fmt.Errorf("user agent cannot be empty")
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return fmt.Errorf("user agent cannot contain newline characters")
	}
	if strings.ContainsFunc(ua, unicode.IsControl) {
		return fmt.Errorf("user agent cannot contain control characters")
	}

	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}

// FormatFloat renders a float the way it is sent on the wire.
func FormatFloat(f float64) string {
	s, _ := FormatValue(f)
	return s
}
