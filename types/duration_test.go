package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewDuration(t *testing.T) {
	t.Parallel()

	d, err := time.ParseDuration("1h")
	require.NoError(t, err)

	assert.Equal(t, Duration{Duration: d}, NewDuration(d))
}

func Test_ParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		want    Duration
		wantErr string
	}{
		{
			name: "success",
			give: "2h30m",
			want: MustParseDuration("2h30m"),
		},
		{
			name:    "invalid duration string",
			give:    "a",
			wantErr: "time: invalid duration \"a\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDuration(tt.give)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_MustParseDuration(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		got := MustParseDuration("1h")
		assert.Equal(t, NewDuration(time.Hour), got)
	})

	assert.Panics(t, func() {
		MustParseDuration("a")
	})
}

func Test_Duration_MarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(MustParseDuration("1h30m"))
	require.NoError(t, err)
	assert.JSONEq(t, `"1h30m0s"`, string(b))
}

func Test_Duration_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		want    Duration
		wantErr string
	}{
		{
			name: "success: string form",
			give: `"45m"`,
			want: MustParseDuration("45m"),
		},
		{
			name:    "failure: numeric form rejected",
			give:    `2700000000000`,
			wantErr: "invalid duration type: float64",
		},
		{
			name:    "failure: malformed string",
			give:    `"nope"`,
			wantErr: "time: invalid duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got Duration
			err := json.Unmarshal([]byte(tt.give), &got)

			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
