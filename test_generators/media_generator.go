package test_generators

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// MediaGenerator generates realistic Instagram users, media and comments for testing
type MediaGenerator struct {
	rand      *rand.Rand
	usernames []string
	captions  []string
	tags      []string
	filters   []string
	places    []string
	nextID    int64
}

// NewMediaGenerator creates a new generator. A zero seed uses the current time.
func NewMediaGenerator(seed int64) *MediaGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &MediaGenerator{
		rand: rand.New(rand.NewSource(seed)),
		usernames: []string{
			"sunset_chaser", "coffee_and_code", "urban_lens", "trail_runner",
			"daily_bread", "film_grain", "plant_parent", "street_eats",
			"night_owl", "salt_water", "mountain_mornings", "city_lights",
		},
		captions: []string{
			"Golden hour never disappoints",
			"Weekend plans: this",
			"Found a new favourite spot",
			"Throwback to last summer",
			"Can't get enough of this view",
			"Monday mood",
			"Made it to the top",
			"Little things",
		},
		tags: []string{
			"travel", "photography", "food", "nature", "sunset",
			"coffee", "architecture", "streetphotography", "hiking", "art",
		},
		filters: []string{"Normal", "Clarendon", "Juno", "Lark", "Valencia", "X-Pro II"},
		places:  []string{"Dogpatch Labs", "Golden Gate Park", "Tour Eiffel", "Shibuya Crossing", "Bondi Beach"},
		nextID:  1000000,
	}
}

// GenerateUser creates a user with profile counters
func (g *MediaGenerator) GenerateUser() types.User {
	username := g.randElement(g.usernames)
	id := g.generateID()

	return types.User{
		ID:             id,
		Username:       username,
		FullName:       strings.ReplaceAll(username, "_", " "),
		ProfilePicture: "https://scontent.cdninstagram.com/t51.2885-19/" + id + ".jpg",
		Counts: &types.UserCounts{
			Media:      g.rand.Intn(2000),
			Follows:    g.rand.Intn(1000),
			FollowedBy: g.rand.Intn(100000),
		},
	}
}

// GenerateUsers creates multiple users
func (g *MediaGenerator) GenerateUsers(count int) []types.User {
	users := make([]types.User, count)
	for i := 0; i < count; i++ {
		users[i] = g.GenerateUser()
	}
	return users
}

// GenerateMedia creates an image post owned by a generated user
func (g *MediaGenerator) GenerateMedia() types.Media {
	owner := g.GenerateUser()
	owner.Counts = nil

	mediaID := g.generateID() + "_" + owner.ID
	created := time.Now().Add(-time.Duration(g.rand.Intn(86400*30)) * time.Second)

	media := types.Media{
		ID:          mediaID,
		Type:        "image",
		Link:        "https://www.instagram.com/p/" + g.generateShortcode() + "/",
		Filter:      g.randElement(g.filters),
		Tags:        g.pickTags(),
		CreatedTime: types.FlexString(strconv.FormatInt(created.Unix(), 10)),
		User:        owner,
		Images: map[string]types.Image{
			"thumbnail":           {URL: "https://scontent.cdninstagram.com/" + mediaID + "_s.jpg", Width: 150, Height: 150},
			"low_resolution":      {URL: "https://scontent.cdninstagram.com/" + mediaID + "_a.jpg", Width: 320, Height: 320},
			"standard_resolution": {URL: "https://scontent.cdninstagram.com/" + mediaID + "_n.jpg", Width: 640, Height: 640},
		},
		Likes:    types.Count{Count: g.rand.Intn(5000)},
		Comments: types.Count{Count: g.rand.Intn(200)},
	}

	caption := g.GenerateComment()
	caption.From = owner
	media.Caption = &caption

	if g.rand.Float32() < 0.3 { // 30% chance
		media.Location = &types.Location{
			ID:        types.FlexString(g.generateID()),
			Name:      g.randElement(g.places),
			Latitude:  -90 + g.rand.Float64()*180,
			Longitude: -180 + g.rand.Float64()*360,
		}
	}

	return media
}

// GenerateMediaList creates multiple media items
func (g *MediaGenerator) GenerateMediaList(count int) []types.Media {
	media := make([]types.Media, count)
	for i := 0; i < count; i++ {
		media[i] = g.GenerateMedia()
	}
	return media
}

// GenerateComment creates a comment from a generated user
func (g *MediaGenerator) GenerateComment() types.Comment {
	author := g.GenerateUser()
	author.Counts = nil

	return types.Comment{
		ID:          g.generateID(),
		Text:        g.randElement(g.captions),
		CreatedTime: types.FlexString(strconv.FormatInt(time.Now().Unix(), 10)),
		From:        author,
	}
}

// GenerateComments creates multiple comments
func (g *MediaGenerator) GenerateComments(count int) []types.Comment {
	comments := make([]types.Comment, count)
	for i := 0; i < count; i++ {
		comments[i] = g.GenerateComment()
	}
	return comments
}

func (g *MediaGenerator) pickTags() []string {
	n := g.rand.Intn(4)
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tags = append(tags, g.randElement(g.tags))
	}
	return tags
}

// generateID returns a unique numeric ID as Instagram formats them
func (g *MediaGenerator) generateID() string {
	g.nextID += int64(g.rand.Intn(1000) + 1)
	return strconv.FormatInt(g.nextID, 10)
}

func (g *MediaGenerator) generateShortcode() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	var b strings.Builder
	for i := 0; i < 11; i++ {
		b.WriteByte(alphabet[g.rand.Intn(len(alphabet))])
	}
	return b.String()
}

func (g *MediaGenerator) randElement(slice []string) string {
	return slice[g.rand.Intn(len(slice))]
}

// Pages splits items into pages of size perPage for paginated mock responses
func Pages[T any](items []T, perPage int) [][]T {
	if perPage <= 0 {
		panic(fmt.Sprintf("perPage must be positive, got %d", perPage))
	}
	var pages [][]T
	for start := 0; start < len(items); start += perPage {
		end := min(start+perPage, len(items))
		pages = append(pages, items[start:end])
	}
	return pages
}
