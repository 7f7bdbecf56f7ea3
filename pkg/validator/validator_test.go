package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Address string `validate:"required"`
	Qty     int    `validate:"gte=1"`
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, Validate(form{Address: "12 Galle Road", Qty: 1}))
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	err := Validate(form{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := verr.Fields()
	assert.Equal(t, "is required", fields["Address"])
	assert.Equal(t, "must be greater than or equal to 1", fields["Qty"])
	assert.Contains(t, err.Error(), "Address")
}
