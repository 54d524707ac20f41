package api

import (
	"testing"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func Test_ResponseErr(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		name            string
		statusCode      int
		body            string
		expectedMessage string
	}{
		{name: "message key", statusCode: fiber.StatusBadRequest,
			body: `{"message":"coupon expired"}`, expectedMessage: "coupon expired"},
		{name: "error_message key", statusCode: fiber.StatusConflict,
			body: `{"error_message":"duplicate code"}`, expectedMessage: "duplicate code"},
		{name: "message preferred", statusCode: fiber.StatusBadRequest,
			body:            `{"message":"first","error_message":"second"}`,
			expectedMessage: "first"},
		{name: "unreadable body", statusCode: fiber.StatusInternalServerError,
			body: `<html>nope</html>`, expectedMessage: GenericErrorMessage},
		{name: "empty body", statusCode: fiber.StatusInternalServerError,
			body: `{}`, expectedMessage: GenericErrorMessage},
	}

	for _, tc := range cases {
		resp := Response{StatusCode: tc.statusCode, Body: []byte(tc.body)}
		err := resp.Err()
		if assert.Error(err, tc.name) {
			statusErr, ok := err.(*StatusError)
			if assert.True(ok, tc.name) {
				assert.Equal(tc.expectedMessage, statusErr.Message, tc.name)
				assert.Equal(tc.statusCode, statusErr.StatusCode, tc.name)
			}
		}
	}
}

func Test_ResponseErrUnauthorized(t *testing.T) {
	assert := assert.New(t)

	resp := Response{StatusCode: fiber.StatusUnauthorized, Body: []byte(`{}`)}
	assert.ErrorIs(resp.Err(), yozie.ErrUnauthorized)
}

func Test_ResponseOk(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Response{StatusCode: fiber.StatusOK}.Err())
	assert.NoError(Response{StatusCode: fiber.StatusCreated}.Err())
	assert.Error(Response{StatusCode: fiber.StatusNotFound}.Err())
}
