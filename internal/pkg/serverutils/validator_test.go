package serverutils

import (
	"strings"
	"testing"

	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest_ListSessions(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.ListSessionsRequest
		wantField string
	}{
		{name: "defaults pass", req: func() dto.ListSessionsRequest {
			r := dto.ListSessionsRequest{}
			r.ApplyDefaults()
			return r
		}()},
		{name: "page zero rejected", req: dto.ListSessionsRequest{Page: 0, PageSize: 20}, wantField: "page"},
		{name: "negative page rejected", req: dto.ListSessionsRequest{Page: -1, PageSize: 20}, wantField: "page"},
		{name: "page size zero rejected", req: dto.ListSessionsRequest{Page: 1, PageSize: 0}, wantField: "pagesize"},
		{name: "page size over cap rejected", req: dto.ListSessionsRequest{Page: 1, PageSize: 101}, wantField: "pagesize"},
		{name: "page size at cap passes", req: dto.ListSessionsRequest{Page: 1, PageSize: 100}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(tc.req)
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidationFailed, appErr.Code)
			assert.Contains(t, appErr.Fields, tc.wantField)
		})
	}
}

func TestValidateRequest_Titles(t *testing.T) {
	t.Run("empty title on update rejected", func(t *testing.T) {
		err := ValidateRequest(dto.UpdateSessionTitleRequest{Title: ""})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "title")
	})

	t.Run("oversized title rejected", func(t *testing.T) {
		err := ValidateRequest(dto.UpdateSessionTitleRequest{Title: strings.Repeat("x", 256)})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Fields, "title")
	})

	t.Run("create without title passes", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(dto.CreateSessionRequest{}))
	})
}

func TestValidateRequest_SendChat(t *testing.T) {
	err := ValidateRequest(dto.SendChatRequest{Prompt: ""})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidationFailed, appErr.Code)
	assert.Contains(t, appErr.Fields, "prompt")
}
