package mapdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *Coordinates
	}{
		{
			name:  "share link",
			value: "https://www.google.com/maps/@25.197200,55.274400,15z",
			want:  &Coordinates{Lat: 25.1972, Lng: 55.2744},
		},
		{
			name:  "place data params",
			value: "https://www.google.com/maps/place/Burj/data=!3m1!4b1!4m6!3m5!3d25.1972!4d55.2744",
			want:  &Coordinates{Lat: 25.1972, Lng: 55.2744},
		},
		{
			name:  "query param",
			value: "https://maps.google.com/?q=-33.8688,151.2093",
			want:  &Coordinates{Lat: -33.8688, Lng: 151.2093},
		},
		{
			name:  "url encoded at sign",
			value: "https://www.google.com/maps/%4025.1972%2C55.2744",
			want:  &Coordinates{Lat: 25.1972, Lng: 55.2744},
		},
		{
			name:  "double encoded at sign",
			value: "https://example.com/?u=%2540-1.5%252C36.8",
			want:  &Coordinates{Lat: -1.5, Lng: 36.8},
		},
		{
			name:  "embed iframe",
			value: `<iframe src="https://www.google.com/maps/embed?pb=!1m18!3d25.1!4d55.2"></iframe>`,
			want:  &Coordinates{Lat: 25.1, Lng: 55.2},
		},
		{
			name:  "plain pair",
			value: " 25.2048 , 55.2708 ",
			want:  &Coordinates{Lat: 25.2048, Lng: 55.2708},
		},
		{
			name:  "plain integers",
			value: "25,55",
			want:  &Coordinates{Lat: 25, Lng: 55},
		},
		{name: "empty", value: "   "},
		{name: "free text", value: "Downtown Dubai"},
		{name: "three parts", value: "1.0, 2.0, 3.0"},
		{name: "address with comma", value: "Marina, Dubai"},
		{name: "not finite", value: "NaN, Inf"},
		{name: "hex latitude", value: "0x1p4,55"},
		{name: "hex longitude", value: "25.2,0X1.8p3"},
		{name: "digit separators", value: "25_000,55"},
		{
			name:  "signed exponent",
			value: "+2.5e1,-5.5E1",
			want:  &Coordinates{Lat: 25, Lng: -55},
		},
		{
			name:  "leading dot",
			value: ".5,55.",
			want:  &Coordinates{Lat: 0.5, Lng: 55},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCoordinates(tt.value)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want.Lat, got.Lat, 1e-9)
			assert.InDelta(t, tt.want.Lng, got.Lng, 1e-9)
		})
	}
}

func TestEmbedURL(t *testing.T) {
	coords := &Coordinates{Lat: 25.1972, Lng: 55.2744}

	tests := []struct {
		name     string
		mapValue string
		location string
		coords   *Coordinates
		want     string
	}{
		{
			name:     "embed link kept",
			mapValue: "https://www.google.com/maps/embed?pb=abc",
			want:     "https://www.google.com/maps/embed?pb=abc",
		},
		{
			name:     "iframe unwrapped",
			mapValue: `<iframe src="https://www.google.com/maps/embed?pb=1&amp;x=2" width="600"></iframe>`,
			want:     "https://www.google.com/maps/embed?pb=1&x=2",
		},
		{
			name:     "entity encoded iframe",
			mapValue: `&lt;iframe src=&quot;https://www.google.ae/maps/embed?pb=1&quot;&gt;&lt;/iframe&gt;`,
			want:     "https://www.google.ae/maps/embed?pb=1",
		},
		{
			name:     "http upgraded",
			mapValue: "http://maps.google.com/maps?q=x&output=embed",
			want:     "https://maps.google.com/maps?q=x&output=embed",
		},
		{
			name:     "protocol relative",
			mapValue: "//www.google.co.uk/maps/embed?pb=2",
			want:     "https://www.google.co.uk/maps/embed?pb=2",
		},
		{
			name:     "non google host falls back to coordinates",
			mapValue: "https://evil.example/maps/embed?pb=1",
			coords:   coords,
			want:     "https://www.google.com/maps?q=25.197200,55.274400&z=15&output=embed",
		},
		{
			name:     "lookalike host rejected",
			mapValue: "https://notgoogle.com/maps/embed",
			location: "Dubai",
			want:     "https://www.google.com/maps?q=Dubai&output=embed",
		},
		{
			name:     "share link synthesizes from coordinates",
			mapValue: "https://www.google.com/maps/@25.197200,55.274400,15z",
			coords:   coords,
			want:     "https://www.google.com/maps?q=25.197200,55.274400&z=15&output=embed",
		},
		{
			name:     "location text",
			location: "Dubai Marina, Tower 2",
			want:     "https://www.google.com/maps?q=Dubai%20Marina%2C%20Tower%202&output=embed",
		},
		{
			name:     "iframe without src",
			mapValue: "<iframe></iframe>",
			location: "JLT",
			want:     "https://www.google.com/maps?q=JLT&output=embed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmbedURL(tt.mapValue, tt.location, tt.coords)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, EmbedURL("not a url", "", nil))
	assert.Nil(t, EmbedURL("", "", nil))
}
