package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      FlexString
		wantError bool
	}{
		{name: "quoted string", input: `"1234567890"`, want: "1234567890"},
		{name: "integer", input: `1234567890`, want: "1234567890"},
		{name: "large integer keeps precision", input: `1395784362155285845`, want: "1395784362155285845"},
		{name: "null", input: `null`, want: ""},
		{name: "empty string", input: `""`, want: ""},
		{name: "boolean rejected", input: `true`, wantError: true},
		{name: "object rejected", input: `{"id":1}`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestPagination_DecodesMixedIDTypes(t *testing.T) {
	raw := `{
		"next_url": "https://api.instagram.com/v1/tags/go/media/recent?max_tag_id=99",
		"next_max_id": 1395784362155285845,
		"next_max_tag_id": "99",
		"next_cursor": "abc"
	}`

	var p Pagination
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.True(t, p.HasNext())
	assert.Equal(t, "1395784362155285845", p.NextMaxID.String())
	assert.Equal(t, FlexString("99"), p.NextMaxTagID)
	assert.Equal(t, FlexString("abc"), p.NextCursor)
}

func TestPagination_HasNext(t *testing.T) {
	var nilPage *Pagination
	assert.False(t, nilPage.HasNext())
	assert.False(t, (&Pagination{NextCursor: "abc"}).HasNext())
	assert.True(t, (&Pagination{NextURL: "https://api.instagram.com/v1/users/self/follows?cursor=abc"}).HasNext())
}

func TestMedia_Decode(t *testing.T) {
	raw := `{
		"id": "22699663_17",
		"type": "image",
		"link": "https://instagram.com/p/abc/",
		"tags": ["go"],
		"created_time": "1296710327",
		"caption": {"id": "26621408", "text": "Hello", "created_time": 1279340983, "from": {"id": "17", "username": "mike"}},
		"user": {"id": "17", "username": "mike", "full_name": "Mike"},
		"images": {"standard_resolution": {"url": "https://cdn/x.jpg", "width": 612, "height": 612}},
		"likes": {"count": 15},
		"comments": {"count": 2},
		"location": {"id": 833, "name": "Dogpatch", "latitude": 37.7, "longitude": -122.3},
		"user_has_liked": true
	}`

	var m Media
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, "22699663_17", m.ID)
	assert.Equal(t, FlexString("1279340983"), m.Caption.CreatedTime)
	assert.Equal(t, 612, m.Images["standard_resolution"].Width)
	assert.Equal(t, 15, m.Likes.Count)
	require.NotNil(t, m.Location)
	assert.Equal(t, FlexString("833"), m.Location.ID)
	assert.True(t, m.UserHasLiked)
}

func TestResult_DataDecodesIntoTypeParameter(t *testing.T) {
	raw := `{"meta":{"code":200},"data":[{"id":"1","username":"a"},{"id":"2","username":"b"}],"pagination":{"next_url":"x?cursor=c","next_cursor":"c"}}`

	var r Result[[]User]
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, 200, r.Meta.Code)
	require.Len(t, r.Data, 2)
	assert.Equal(t, "b", r.Data[1].Username)
	require.NotNil(t, r.Pagination)
	assert.Equal(t, FlexString("c"), r.Pagination.NextCursor)
}
