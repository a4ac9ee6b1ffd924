// Package validation checks decoded Instagram objects for well-formed fields.
// It is meant for tests and for callers that want to reject suspicious data
// before storing it; the client itself never rejects a response on these rules.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// Regular expressions for validating Instagram data formats
var (
	// numericIDRegex matches user, comment and location IDs
	numericIDRegex = regexp.MustCompile(`^[0-9]+$`)

	// mediaIDRegex matches media IDs, optionally suffixed with the owner ID
	// Format: {media_id}_{user_id}
	mediaIDRegex = regexp.MustCompile(`^[0-9]+(_[0-9]+)?$`)

	// usernameRegex matches usernames (1-30 chars, letters, digits, period, underscore)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)

	// shortcodeRegex matches the code in a media permalink
	shortcodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{5,40}$`)

	// permalinkRegex matches media permalinks
	// Format: https://www.instagram.com/p/{shortcode}/
	permalinkRegex = regexp.MustCompile(`^https?://(www\.)?instagram\.com/(p|tv|reel)/[A-Za-z0-9_-]{5,40}/?$`)

	// tagRegex matches hashtag names without the leading '#'
	tagRegex = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)
)

// instagramLaunch is the earliest plausible created_time.
var instagramLaunch = time.Date(2010, 10, 6, 0, 0, 0, 0, time.UTC)

var mediaTypes = map[string]bool{"image": true, "video": true, "carousel": true}

// IsValidNumericID checks if a string is a numeric ID
func IsValidNumericID(s string) bool {
	return numericIDRegex.MatchString(s)
}

// IsValidMediaID checks if a string is a media ID
func IsValidMediaID(s string) bool {
	return mediaIDRegex.MatchString(s)
}

// IsValidUsername checks if a string is a valid username
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s) && !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".")
}

// IsValidShortcode checks if a string is a valid permalink shortcode
func IsValidShortcode(s string) bool {
	return shortcodeRegex.MatchString(s)
}

// IsValidPermalink checks if a string is a media permalink
func IsValidPermalink(s string) bool {
	return permalinkRegex.MatchString(s)
}

// IsValidTagName checks if a string is a hashtag name
func IsValidTagName(s string) bool {
	return tagRegex.MatchString(s)
}

// ValidateCreatedTime checks that a created_time holds unix seconds between
// the launch of Instagram and an hour from now.
func ValidateCreatedTime(created types.FlexString) error {
	secs, err := strconv.ParseInt(created.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("created_time is not unix seconds: %q", created)
	}

	ts := time.Unix(secs, 0)
	// 1 hour grace period for clock skew
	if ts.After(time.Now().Add(time.Hour)) {
		return fmt.Errorf("created_time is in the future: %d", secs)
	}
	if ts.Before(instagramLaunch) {
		return fmt.Errorf("created_time is before Instagram existed: %d", secs)
	}
	return nil
}

// ValidateUser validates a User struct's fields
func ValidateUser(u *types.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	var errs []error

	if u.ID == "" {
		errs = append(errs, fmt.Errorf("ID is required"))
	} else if !IsValidNumericID(u.ID) {
		errs = append(errs, fmt.Errorf("ID has invalid format: %s", u.ID))
	}

	if !IsValidUsername(u.Username) {
		errs = append(errs, fmt.Errorf("Username has invalid format: %q", u.Username))
	}

	if c := u.Counts; c != nil {
		if c.Media < 0 || c.Follows < 0 || c.FollowedBy < 0 {
			errs = append(errs, fmt.Errorf("counts cannot be negative: %+v", *c))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("user validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateComment validates a Comment struct's fields. Captions share the shape.
func ValidateComment(c *types.Comment) error {
	if c == nil {
		return fmt.Errorf("comment is nil")
	}

	var errs []error

	if !IsValidNumericID(c.ID) {
		errs = append(errs, fmt.Errorf("ID has invalid format: %q", c.ID))
	}
	if err := ValidateCreatedTime(c.CreatedTime); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateUser(&c.From); err != nil {
		errs = append(errs, fmt.Errorf("from: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("comment validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateLocation validates a Location struct's fields
func ValidateLocation(l *types.Location) error {
	if l == nil {
		return fmt.Errorf("location is nil")
	}

	var errs []error

	if l.ID != "" && !IsValidNumericID(l.ID.String()) {
		errs = append(errs, fmt.Errorf("ID has invalid format: %q", l.ID))
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		errs = append(errs, fmt.Errorf("Latitude out of range: %f", l.Latitude))
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		errs = append(errs, fmt.Errorf("Longitude out of range: %f", l.Longitude))
	}

	if len(errs) > 0 {
		return fmt.Errorf("location validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateTag validates a Tag struct's fields
func ValidateTag(t *types.Tag) error {
	if t == nil {
		return fmt.Errorf("tag is nil")
	}

	var errs []error

	if !IsValidTagName(t.Name) {
		errs = append(errs, fmt.Errorf("Name has invalid format: %q", t.Name))
	}
	if t.MediaCount < 0 {
		errs = append(errs, fmt.Errorf("MediaCount cannot be negative: %d", t.MediaCount))
	}

	if len(errs) > 0 {
		return fmt.Errorf("tag validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// ValidateMedia validates a Media struct's fields, including its owner,
// caption and location
func ValidateMedia(m *types.Media) error {
	if m == nil {
		return fmt.Errorf("media is nil")
	}

	var errs []error

	if m.ID == "" {
		errs = append(errs, fmt.Errorf("ID is required"))
	} else if !IsValidMediaID(m.ID) {
		errs = append(errs, fmt.Errorf("ID has invalid format: %s", m.ID))
	}

	if !mediaTypes[m.Type] {
		errs = append(errs, fmt.Errorf("Type must be image, video or carousel, got %q", m.Type))
	}

	if m.Link != "" && !IsValidPermalink(m.Link) {
		errs = append(errs, fmt.Errorf("Link has invalid permalink format: %s", m.Link))
	}

	if err := ValidateCreatedTime(m.CreatedTime); err != nil {
		errs = append(errs, err)
	}

	if err := ValidateUser(&m.User); err != nil {
		errs = append(errs, fmt.Errorf("user: %w", err))
	}

	if m.Likes.Count < 0 {
		errs = append(errs, fmt.Errorf("Likes cannot be negative: %d", m.Likes.Count))
	}
	if m.Comments.Count < 0 {
		errs = append(errs, fmt.Errorf("Comments cannot be negative: %d", m.Comments.Count))
	}

	for _, tag := range m.Tags {
		if !IsValidTagName(tag) {
			errs = append(errs, fmt.Errorf("tag has invalid format: %q", tag))
		}
	}

	if m.Caption != nil {
		if err := ValidateComment(m.Caption); err != nil {
			errs = append(errs, fmt.Errorf("caption: %w", err))
		} else if m.Caption.From.ID != m.User.ID {
			errs = append(errs, fmt.Errorf("caption author %s is not the owner %s", m.Caption.From.ID, m.User.ID))
		}
	}

	if m.Location != nil {
		if err := ValidateLocation(m.Location); err != nil {
			errs = append(errs, err)
		}
	}

	if m.Type == "carousel" && len(m.CarouselMedia) == 0 {
		errs = append(errs, fmt.Errorf("carousel has no items"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("media validation failed: %w", joinValidationErrors(errs))
	}

	return nil
}

// joinValidationErrors combines multiple errors into a single error message
func joinValidationErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
