package rbacmiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scaffoldkit/go-rbac-middleware/core"
)

func TestDefaultErrorHandler(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing token",
			err:            core.ErrTokenMissing,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Credentials are missing."}`,
		},
		{
			name:           "insufficient role",
			err:            core.ErrInsufficientRole,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"message":"Access denied."}`,
		},
		{
			name:           "access denied",
			err:            core.ErrAccessDenied,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"message":"Access denied."}`,
		},
		{
			name:           "wrapped errors match their sentinel",
			err:            fmt.Errorf("%w: token expired", core.ErrAccessDenied),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"message":"Access denied."}`,
		},
		{
			name:           "unknown errors are a server fault",
			err:            errors.New("jwks unreachable"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Something went wrong while checking credentials."}`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			DefaultErrorHandler(recorder, request, testCase.err)

			assert.Equal(t, testCase.expectedStatus, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.JSONEq(t, testCase.expectedBody, recorder.Body.String())
		})
	}
}
