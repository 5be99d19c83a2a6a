package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoredThing struct {
	Name      string  `validate:"required"`
	Score     float64 `validate:"fraction"`
	Threshold float64 `validate:"fraction"`
}

func TestValidateStruct(t *testing.T) {
	testCases := []struct {
		name    string
		input   scoredThing
		wantErr bool
	}{
		{
			name:    "Success: everything in range",
			input:   scoredThing{Name: "ok", Score: 0.8, Threshold: 0.3},
			wantErr: false,
		},
		{
			name:    "Success: boundary values",
			input:   scoredThing{Name: "ok", Score: 0.0, Threshold: 1.0},
			wantErr: false,
		},
		{
			name:    "Failure: negative score",
			input:   scoredThing{Name: "bad", Score: -0.1, Threshold: 0.3},
			wantErr: true,
		},
		{
			name:    "Failure: score above one",
			input:   scoredThing{Name: "bad", Score: 1.1, Threshold: 0.3},
			wantErr: true,
		},
		{
			name:    "Failure: missing required field",
			input:   scoredThing{Score: 0.5, Threshold: 0.5},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.input)

			if tc.wantErr {
				require.Error(t, err)

				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
				assert.NotEmpty(t, vErr.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
