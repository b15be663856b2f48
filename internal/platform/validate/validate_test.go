package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

type signupRequest struct {
	CustomerID int64   `json:"customerId" validate:"required,gt=0"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Status     string  `json:"status" validate:"omitempty,oneof=active inactive"`
	Phone      *string `json:"phone" label:"Phone number" validate:"omitempty,max=5"`
}

func TestStructReportsFieldMessages(t *testing.T) {
	phone := "+62 812 0000"
	err := Struct(signupRequest{Email: "nope", Password: "short", Status: "gone", Phone: &phone})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	var verr *httpx.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Customer ID is required", verr.Fields["customerId"])
	assert.Equal(t, "Email must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "Password must be at least 8 characters", verr.Fields["password"])
	assert.Equal(t, "Status must be one of: active, inactive", verr.Fields["status"])
	assert.Equal(t, "Phone number must be at most 5 characters", verr.Fields["phone"])
	assert.Equal(t, "Customer ID is required", err.Error())
}

func TestStructShortPasswordOnly(t *testing.T) {
	err := Struct(signupRequest{CustomerID: 1, Email: "c@x.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 8 characters", err.Error())
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(signupRequest{CustomerID: 1, Email: "c@x.com", Password: "longenough"}))
}

func TestVar(t *testing.T) {
	err := Var("reason", "Reason", "", "required")
	require.Error(t, err)
	assert.Equal(t, "Reason is required", err.Error())
	assert.NoError(t, Var("reason", "Reason", "duplicate", "required"))
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
}

func TestStructCountsPasswordBytes(t *testing.T) {
	err := Struct(passwordRequest{Password: strings.Repeat("é", 40)})
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes", err.Error())

	err = Struct(passwordRequest{Password: strings.Repeat("a", 73)})
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 characters", err.Error())

	assert.NoError(t, Struct(passwordRequest{Password: strings.Repeat("é", 36)}))
	assert.NoError(t, Struct(passwordRequest{Password: strings.Repeat("a", 72)}))
}
