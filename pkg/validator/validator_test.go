package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewBody struct {
	Author string   `json:"author" validate:"required,max=20"`
	Text   string   `json:"text" validate:"required,min=3"`
	Rating int      `json:"rating" validate:"required,min=1,max=5"`
	Tags   []string `json:"tags" validate:"max=2"`
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body reviewBody
		want map[string]string
	}{
		{
			name: "valid",
			body: reviewBody{Author: "Jane", Text: "Quiet floor", Rating: 4},
		},
		{
			name: "missing required",
			body: reviewBody{Text: "Quiet floor", Rating: 4},
			want: map[string]string{"author": "is required"},
		},
		{
			name: "numeric bound",
			body: reviewBody{Author: "Jane", Text: "Quiet floor", Rating: 9},
			want: map[string]string{"rating": "must be at most 5"},
		},
		{
			name: "string and slice bounds",
			body: reviewBody{
				Author: strings.Repeat("a", 21),
				Text:   "ok",
				Rating: 3,
				Tags:   []string{"quiet", "bright", "outlets"},
			},
			want: map[string]string{
				"author": "must be at most 20 characters",
				"text":   "must be at least 3 characters",
				"tags":   "must be at most 2 items",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.body)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, fieldErrors(t, err))
		})
	}
}

func TestFieldNamesFollowTags(t *testing.T) {
	type query struct {
		Sort  string `query:"sort" validate:"oneof=newest oldest"`
		Plain string `validate:"required"`
	}

	fields := fieldErrors(t, Validate(query{Sort: "random"}))
	assert.Equal(t, map[string]string{
		"sort":  "must be one of: newest oldest",
		"Plain": "is required",
	}, fields)
}

func TestValidationErrorString(t *testing.T) {
	err := Validate(reviewBody{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'author' is required")
	assert.Contains(t, err.Error(), "; ")
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register("even_seats", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}, "must be an even number"))

	type room struct {
		Seats int `json:"seats" validate:"even_seats"`
	}
	assert.NoError(t, Validate(room{Seats: 12}))
	assert.Equal(t, map[string]string{"seats": "must be an even number"}, fieldErrors(t, Validate(room{Seats: 13})))
}

func TestDecodeAndValidate(t *testing.T) {
	decode := func(body string) (reviewBody, error) {
		var dst reviewBody
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeAndValidate(httptest.NewRecorder(), req, &dst)
		return dst, err
	}

	t.Run("valid", func(t *testing.T) {
		got, err := decode(`{"author":"Jane","text":"Quiet floor","rating":5,"tags":["quiet"]}`)
		require.NoError(t, err)
		assert.Equal(t, reviewBody{Author: "Jane", Text: "Quiet floor", Rating: 5, Tags: []string{"quiet"}}, got)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decode("{invalid")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid request body")
		var valErr *ValidationError
		assert.NotErrorAs(t, err, &valErr)
	})

	t.Run("fails validation", func(t *testing.T) {
		_, err := decode(`{"author":"","text":"Quiet floor","rating":0}`)
		assert.Contains(t, fieldErrors(t, err), "author")
	})

	t.Run("body too large", func(t *testing.T) {
		_, err := decode(`{"author":"` + strings.Repeat("a", MaxBodyBytes) + `"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid request body")
	})
}
