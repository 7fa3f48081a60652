package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{fmt.Errorf("inquiry: company is required: %w", ErrValidation), http.StatusBadRequest, "inquiry: company is required: validation failed"},
		{fmt.Errorf("accounting: parent: %w", ErrNotFound), http.StatusNotFound, "accounting: parent: resource not found"},
		{fmt.Errorf("accounting: account: %w", ErrDuplicate), http.StatusConflict, "accounting: account: duplicate entry"},
		{fmt.Errorf("ledger down: %w", ErrUnavailable), http.StatusServiceUnavailable, ""},
		{fmt.Errorf("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		require.Equal(t, tc.status, rr.Code)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.status, body.Status)
		assert.Equal(t, tc.detail, body.Detail)
	}
}
